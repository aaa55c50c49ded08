package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/repositories"
	"golang.org/x/sync/errgroup"
)

// RaceRelation selects which relations Loader.LoadRaces resolves.
type RaceRelation uint8

const (
	RelTournament RaceRelation = 1 << iota
	RelPermalink               // permalink and its pool
	RelUser
	RelReviewer

	AllRaceRelations = RelTournament | RelPermalink | RelUser | RelReviewer
)

// Loader resolves relations in batches before serialization.
// Every requested relation ends up loaded, holding nil when the row is absent.
type Loader struct {
	tournamentRepo repositories.TournamentRepository
	poolRepo       repositories.PoolRepository
	permalinkRepo  repositories.PermalinkRepository
	userRepo       repositories.UserRepository
}

func NewLoader(
	tournamentRepo repositories.TournamentRepository,
	poolRepo repositories.PoolRepository,
	permalinkRepo repositories.PermalinkRepository,
	userRepo repositories.UserRepository,
) *Loader {
	return &Loader{
		tournamentRepo: tournamentRepo,
		poolRepo:       poolRepo,
		permalinkRepo:  permalinkRepo,
		userRepo:       userRepo,
	}
}

func (l *Loader) LoadRaces(ctx context.Context, races []models.Race, rels RaceRelation) error {
	if len(races) == 0 {
		return nil
	}

	var (
		tournaments map[int]*models.Tournament
		permalinks  map[int]*models.Permalink
		users       map[int]*models.User
	)

	g, gCtx := errgroup.WithContext(ctx)

	if rels&RelTournament != 0 {
		ids := uniqueIDs(len(races), func(i int) (int, bool) { return races[i].TournamentID, true })
		g.Go(func() error {
			var err error
			tournaments, err = l.tournamentRepo.GetByIDs(gCtx, ids)
			if err != nil {
				return fmt.Errorf("failed to load race tournaments: %w", err)
			}
			return nil
		})
	}

	if rels&RelPermalink != 0 {
		ids := uniqueIDs(len(races), func(i int) (int, bool) { return races[i].PermalinkID, true })
		g.Go(func() error {
			var err error
			permalinks, err = l.permalinkRepo.GetByIDs(gCtx, ids)
			if err != nil {
				return fmt.Errorf("failed to load race permalinks: %w", err)
			}
			list := make([]*models.Permalink, 0, len(permalinks))
			for _, p := range permalinks {
				list = append(list, p)
			}
			return l.attachPools(gCtx, list)
		})
	}

	if rels&(RelUser|RelReviewer) != 0 {
		ids := uniqueIDs(2*len(races), func(i int) (int, bool) {
			race := races[i/2]
			if i%2 == 0 {
				return race.UserID, rels&RelUser != 0
			}
			if race.ReviewedByID == nil || rels&RelReviewer == 0 {
				return 0, false
			}
			return *race.ReviewedByID, true
		})
		g.Go(func() error {
			var err error
			users, err = l.userRepo.GetByIDs(gCtx, ids)
			if err != nil {
				return fmt.Errorf("failed to load race users: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i := range races {
		race := &races[i]
		if rels&RelTournament != 0 {
			race.Tournament.Set(tournaments[race.TournamentID])
		}
		if rels&RelPermalink != 0 {
			permalink := permalinks[race.PermalinkID]
			if permalink != nil {
				// Copy so races sharing a permalink do not alias each other's pool tournament.
				cp := *permalink
				if pool, ok := cp.Pool.Get(); ok && rels&RelTournament != 0 {
					poolCp := *pool
					if t := tournaments[poolCp.TournamentID]; t != nil {
						poolCp.Tournament.Set(t)
					}
					cp.Pool.Set(&poolCp)
				}
				permalink = &cp
			}
			race.Permalink.Set(permalink)
		}
		if rels&RelUser != 0 {
			race.User.Set(users[race.UserID])
		}
		if rels&RelReviewer != 0 {
			if race.ReviewedByID == nil {
				race.ReviewedBy.Set(nil)
			} else {
				race.ReviewedBy.Set(users[*race.ReviewedByID])
			}
		}
	}
	return nil
}

// LoadRace is LoadRaces for a single race.
func (l *Loader) LoadRace(ctx context.Context, race *models.Race, rels RaceRelation) error {
	races := []models.Race{*race}
	if err := l.LoadRaces(ctx, races, rels); err != nil {
		return err
	}
	*race = races[0]
	return nil
}

// LoadPermalinks attaches each permalink's pool and, when withTournament is
// set, the pool's tournament.
func (l *Loader) LoadPermalinks(ctx context.Context, permalinks []models.Permalink, withTournament bool) error {
	list := make([]*models.Permalink, len(permalinks))
	for i := range permalinks {
		list[i] = &permalinks[i]
	}
	if err := l.attachPools(ctx, list); err != nil {
		return err
	}
	if !withTournament {
		return nil
	}

	pools := make([]*models.PermalinkPool, 0, len(list))
	for _, p := range list {
		if pool, ok := p.Pool.Get(); ok {
			pools = append(pools, pool)
		}
	}
	return l.attachTournaments(ctx, pools)
}

// LoadPools attaches each pool's tournament.
func (l *Loader) LoadPools(ctx context.Context, pools []models.PermalinkPool) error {
	list := make([]*models.PermalinkPool, len(pools))
	for i := range pools {
		list[i] = &pools[i]
	}
	return l.attachTournaments(ctx, list)
}

// LoadWhitelist attaches each entry's tournament and user.
func (l *Loader) LoadWhitelist(ctx context.Context, entries []models.WhitelistEntry) error {
	if len(entries) == 0 {
		return nil
	}

	var (
		tournaments map[int]*models.Tournament
		users       map[int]*models.User
	)
	g, gCtx := errgroup.WithContext(ctx)

	tournamentIDs := uniqueIDs(len(entries), func(i int) (int, bool) { return entries[i].TournamentID, true })
	g.Go(func() error {
		var err error
		tournaments, err = l.tournamentRepo.GetByIDs(gCtx, tournamentIDs)
		if err != nil {
			return fmt.Errorf("failed to load whitelist tournaments: %w", err)
		}
		return nil
	})

	userIDs := uniqueIDs(len(entries), func(i int) (int, bool) { return entries[i].UserID, true })
	g.Go(func() error {
		var err error
		users, err = l.userRepo.GetByIDs(gCtx, userIDs)
		if err != nil {
			return fmt.Errorf("failed to load whitelist users: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	for i := range entries {
		entries[i].Tournament.Set(tournaments[entries[i].TournamentID])
		entries[i].User.Set(users[entries[i].UserID])
	}
	return nil
}

func (l *Loader) attachPools(ctx context.Context, permalinks []*models.Permalink) error {
	if len(permalinks) == 0 {
		return nil
	}
	ids := uniqueIDs(len(permalinks), func(i int) (int, bool) { return permalinks[i].PoolID, true })
	pools, err := l.poolRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load permalink pools: %w", err)
	}
	for _, p := range permalinks {
		p.Pool.Set(pools[p.PoolID])
	}
	return nil
}

func (l *Loader) attachTournaments(ctx context.Context, pools []*models.PermalinkPool) error {
	if len(pools) == 0 {
		return nil
	}
	ids := uniqueIDs(len(pools), func(i int) (int, bool) { return pools[i].TournamentID, true })
	tournaments, err := l.tournamentRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load pool tournaments: %w", err)
	}
	for _, p := range pools {
		p.Tournament.Set(tournaments[p.TournamentID])
	}
	return nil
}

func uniqueIDs(n int, at func(i int) (int, bool)) []int {
	seen := make(map[int]struct{}, n)
	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		id, ok := at(i)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
