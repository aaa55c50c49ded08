package services

import (
	"context"
	"errors"

	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/repositories"
)

// TournamentService serves the read-only JSON API over async tournaments.
// Every result has its relations resolved by the Loader.
type TournamentService struct {
	tournamentRepo repositories.TournamentRepository
	poolRepo       repositories.PoolRepository
	permalinkRepo  repositories.PermalinkRepository
	raceRepo       repositories.RaceRepository
	whitelistRepo  repositories.WhitelistRepository
	loader         *Loader
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	poolRepo repositories.PoolRepository,
	permalinkRepo repositories.PermalinkRepository,
	raceRepo repositories.RaceRepository,
	whitelistRepo repositories.WhitelistRepository,
	loader *Loader,
) *TournamentService {
	return &TournamentService{
		tournamentRepo: tournamentRepo,
		poolRepo:       poolRepo,
		permalinkRepo:  permalinkRepo,
		raceRepo:       raceRepo,
		whitelistRepo:  whitelistRepo,
		loader:         loader,
	}
}

func (s *TournamentService) ListTournaments(ctx context.Context, active *bool) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{Active: active})
}

func (s *TournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TournamentService) ListRaces(ctx context.Context, filter repositories.RaceFilter) ([]models.Race, error) {
	races, err := s.raceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.loader.LoadRaces(ctx, races, AllRaceRelations); err != nil {
		return nil, err
	}
	return races, nil
}

func (s *TournamentService) ListPools(ctx context.Context, tournamentID int) ([]models.PermalinkPool, error) {
	pools, err := s.poolRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.loader.LoadPools(ctx, pools); err != nil {
		return nil, err
	}
	return pools, nil
}

func (s *TournamentService) GetPool(ctx context.Context, tournamentID, poolID int) (*models.PermalinkPool, error) {
	pool, err := s.poolRepo.GetByID(ctx, tournamentID, poolID)
	if err != nil {
		if errors.Is(err, repositories.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}
	pools := []models.PermalinkPool{*pool}
	if err := s.loader.LoadPools(ctx, pools); err != nil {
		return nil, err
	}
	return &pools[0], nil
}

func (s *TournamentService) ListPermalinks(ctx context.Context, filter repositories.ListPermalinksFilter) ([]models.Permalink, error) {
	permalinks, err := s.permalinkRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.loader.LoadPermalinks(ctx, permalinks, true); err != nil {
		return nil, err
	}
	return permalinks, nil
}

func (s *TournamentService) GetPermalink(ctx context.Context, tournamentID, permalinkID int) (*models.Permalink, error) {
	permalink, err := s.permalinkRepo.GetByID(ctx, tournamentID, permalinkID)
	if err != nil {
		if errors.Is(err, repositories.ErrPermalinkNotFound) {
			return nil, ErrPermalinkNotFound
		}
		return nil, err
	}
	permalinks := []models.Permalink{*permalink}
	if err := s.loader.LoadPermalinks(ctx, permalinks, true); err != nil {
		return nil, err
	}
	return &permalinks[0], nil
}

func (s *TournamentService) ListWhitelist(ctx context.Context, tournamentID int) ([]models.WhitelistEntry, error) {
	entries, err := s.whitelistRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := s.loader.LoadWhitelist(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}
