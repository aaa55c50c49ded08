package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/repositories"
)

// QueueResult is the review queue of one tournament.
type QueueResult struct {
	Tournament *models.Tournament
	Races      []models.Race
	Params     QueueParams
}

// ReviewView is a race opened for review by the requesting user.
type ReviewView struct {
	Tournament     *models.Tournament
	Race           *models.Race
	AlreadyClaimed bool
}

// ReviewDecision is the reviewer's submitted verdict. Nil fields were absent.
type ReviewDecision struct {
	ReviewStatus  *string
	ReviewerNotes *string
}

type ReviewService struct {
	tournamentRepo repositories.TournamentRepository
	raceRepo       repositories.RaceRepository
	policy         *AccessPolicy
	loader         *Loader
	filters        QueueFilterParser
	notifier       ReviewNotifier
	logger         *slog.Logger
}

// NewReviewService wires the review workflow. A nil notifier disables
// live feed events.
func NewReviewService(
	tournamentRepo repositories.TournamentRepository,
	raceRepo repositories.RaceRepository,
	policy *AccessPolicy,
	loader *Loader,
	filters QueueFilterParser,
	notifier ReviewNotifier,
	logger *slog.Logger,
) *ReviewService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &ReviewService{
		tournamentRepo: tournamentRepo,
		raceRepo:       raceRepo,
		policy:         policy,
		loader:         loader,
		filters:        filters,
		notifier:       notifier,
		logger:         logger,
	}
}

// Queue lists the races awaiting review that match params.
func (s *ReviewService) Queue(ctx context.Context, tournamentID int, user *models.User, params url.Values) (*QueueResult, error) {
	tournament, err := s.authorizedTournament(ctx, tournamentID, user)
	if err != nil {
		return nil, err
	}

	filter, err := s.filters.Parse(tournamentID, params, user)
	if err != nil {
		return nil, err
	}

	races, err := s.raceRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list review queue: %w", err)
	}
	if err := s.loader.LoadRaces(ctx, races, RelPermalink|RelUser|RelReviewer); err != nil {
		return nil, err
	}
	for i := range races {
		races[i].Tournament.Set(tournament)
	}

	return &QueueResult{
		Tournament: tournament,
		Races:      races,
		Params:     s.filters.Params(params),
	}, nil
}

// Claim opens a race for review, taking it if nobody holds it yet.
// Repeated calls by the holder change nothing.
func (s *ReviewService) Claim(ctx context.Context, tournamentID, raceID int, user *models.User) (*ReviewView, error) {
	tournament, race, err := s.reviewableRace(ctx, tournamentID, raceID, user)
	if err != nil {
		return nil, err
	}

	if race.ReviewedByID == nil {
		claimed, err := s.raceRepo.ClaimForReview(ctx, race.ID, user.ID)
		if err != nil {
			return nil, err
		}
		if claimed {
			race.ReviewedByID = &user.ID
			s.logger.Info("race claimed for review",
				slog.Int("tournament_id", tournamentID),
				slog.Int("race_id", race.ID),
				slog.Int("reviewer_id", user.ID),
			)
		} else {
			// Someone else claimed it between our read and write.
			race, err = s.raceRepo.GetByID(ctx, tournamentID, raceID)
			if err != nil {
				return nil, s.translateRaceErr(err)
			}
		}

		if claimed {
			defer s.notifier.NotifyReview(ctx, ReviewEvent{
				Type:         EventRaceClaimed,
				TournamentID: tournamentID,
				Race:         race,
				Reviewer:     user,
			})
		}
	}

	if err := s.loader.LoadRace(ctx, race, RelPermalink|RelUser|RelReviewer); err != nil {
		return nil, err
	}
	race.Tournament.Set(tournament)

	return &ReviewView{
		Tournament:     tournament,
		Race:           race,
		AlreadyClaimed: !race.IsReviewedBy(user),
	}, nil
}

// Decide records the reviewer's verdict. The last decision wins: it
// replaces any reviewer that held the race before.
func (s *ReviewService) Decide(ctx context.Context, tournamentID, raceID int, user *models.User, decision ReviewDecision) (*models.Race, error) {
	_, race, err := s.reviewableRace(ctx, tournamentID, raceID, user)
	if err != nil {
		return nil, err
	}

	status := models.ReviewStatusPending
	if decision.ReviewStatus != nil && *decision.ReviewStatus != "" {
		status = models.ReviewStatus(*decision.ReviewStatus)
	}
	if !validReviewStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReviewState, status)
	}

	update := repositories.ReviewUpdate{
		ReviewStatus:  status,
		ReviewerNotes: decision.ReviewerNotes,
		ReviewedAt:    time.Now(),
		ReviewedByID:  user.ID,
	}
	if err := s.raceRepo.SaveReview(ctx, race.ID, update); err != nil {
		return nil, fmt.Errorf("failed to save review for race %d: %w", race.ID, s.translateRaceErr(err))
	}

	if race.ReviewedByID != nil && *race.ReviewedByID != user.ID {
		s.logger.Warn("review overrides another reviewer's claim",
			slog.Int("race_id", race.ID),
			slog.Int("previous_reviewer_id", *race.ReviewedByID),
			slog.Int("reviewer_id", user.ID),
		)
	}

	race.ReviewStatus = update.ReviewStatus
	race.ReviewerNotes = update.ReviewerNotes
	race.ReviewedAt = &update.ReviewedAt
	race.ReviewedByID = &user.ID
	race.ReviewedBy.Set(user)

	s.logger.Info("race reviewed",
		slog.Int("tournament_id", tournamentID),
		slog.Int("race_id", race.ID),
		slog.Int("reviewer_id", user.ID),
		slog.String("review_status", string(status)),
	)
	s.notifier.NotifyReview(ctx, ReviewEvent{
		Type:         EventRaceReviewed,
		TournamentID: tournamentID,
		Race:         race,
		Reviewer:     user,
	})

	return race, nil
}

func (s *ReviewService) authorizedTournament(ctx context.Context, tournamentID int, user *models.User) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if err := s.policy.Require(ctx, tournamentID, user, CapabilityReviewRaces); err != nil {
		return nil, err
	}
	return tournament, nil
}

// reviewableRace re-validates authorization and the review preconditions.
func (s *ReviewService) reviewableRace(ctx context.Context, tournamentID, raceID int, user *models.User) (*models.Tournament, *models.Race, error) {
	tournament, err := s.authorizedTournament(ctx, tournamentID, user)
	if err != nil {
		return nil, nil, err
	}

	race, err := s.raceRepo.GetByID(ctx, tournamentID, raceID)
	if err != nil {
		return nil, nil, s.translateRaceErr(err)
	}

	if err := CheckReviewable(race, user); err != nil {
		return nil, nil, err
	}
	return tournament, race, nil
}

// CheckReviewable reports why user may not review race, if anything.
func CheckReviewable(race *models.Race, user *models.User) error {
	switch {
	case race.Status != models.RaceStatusFinished:
		return ErrRaceNotReviewable
	case race.Reattempted:
		return ErrRaceReattempted
	case user == nil:
		return ErrNotAuthorized
	case race.IsRunner(user):
		return ErrSelfReview
	}
	return nil
}

func (s *ReviewService) translateRaceErr(err error) error {
	if errors.Is(err, repositories.ErrRaceNotFound) {
		return ErrRaceNotFound
	}
	return err
}

func validReviewStatus(status models.ReviewStatus) bool {
	switch status {
	case models.ReviewStatusPending, models.ReviewStatusApproved, models.ReviewStatusRejected:
		return true
	}
	return false
}
