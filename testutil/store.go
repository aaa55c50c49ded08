// Package testutil provides an in-memory stand-in for the Postgres
// repositories plus fixtures shared by the service and handler tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/async-tournament/models"
	"github.com/Dosada05/async-tournament/repositories"
)

// Store keeps every table in memory. Reads hand out copies, like rows
// scanned from a database, so relations always start unloaded.
type Store struct {
	mu          sync.Mutex
	tournaments map[int]models.Tournament
	pools       map[int]models.PermalinkPool
	permalinks  map[int]models.Permalink
	races       map[int]models.Race
	users       map[int]models.User
	whitelist   []models.WhitelistEntry
	permissions []models.Permission
	apiKeys     map[int]models.APIKey
	nextID      int

	// BeforeClaim runs inside ClaimForReview before the row is checked,
	// letting tests interleave a competing reviewer.
	BeforeClaim func(raceID int)

	// Calls counts repository calls by name.
	Calls map[string]int
}

func NewStore() *Store {
	return &Store{
		tournaments: make(map[int]models.Tournament),
		pools:       make(map[int]models.PermalinkPool),
		permalinks:  make(map[int]models.Permalink),
		races:       make(map[int]models.Race),
		users:       make(map[int]models.User),
		apiKeys:     make(map[int]models.APIKey),
		Calls:       make(map[string]int),
	}
}

func (s *Store) id(current int) int {
	if current != 0 {
		if current > s.nextID {
			s.nextID = current
		}
		return current
	}
	s.nextID++
	return s.nextID
}

func (s *Store) called(name string) {
	s.Calls[name]++
}

func (s *Store) AddTournament(t models.Tournament) models.Tournament {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id(t.ID)
	s.tournaments[t.ID] = t
	return t
}

func (s *Store) AddPool(p models.PermalinkPool) models.PermalinkPool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id(p.ID)
	p.Tournament.Reset()
	s.pools[p.ID] = p
	return p
}

func (s *Store) AddPermalink(p models.Permalink) models.Permalink {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id(p.ID)
	p.Pool.Reset()
	s.permalinks[p.ID] = p
	return p
}

func (s *Store) AddUser(u models.User) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id(u.ID)
	s.users[u.ID] = u
	return u
}

func (s *Store) AddRace(r models.Race) models.Race {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id(r.ID)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.ID) * time.Minute)
	}
	if r.ReviewStatus == "" {
		r.ReviewStatus = models.ReviewStatusPending
	}
	r.Tournament.Reset()
	r.Permalink.Reset()
	r.User.Reset()
	r.ReviewedBy.Reset()
	s.races[r.ID] = r
	return r
}

// Grant gives user a role on a tournament.
func (s *Store) Grant(tournamentID, userID int, role models.PermissionRole) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions = append(s.permissions, models.Permission{
		ID:           s.id(0),
		TournamentID: tournamentID,
		UserID:       userID,
		Role:         role,
	})
}

func (s *Store) AddWhitelist(tournamentID, userID int) models.WhitelistEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := models.WhitelistEntry{ID: s.id(0), TournamentID: tournamentID, UserID: userID}
	s.whitelist = append(s.whitelist, e)
	return e
}

func (s *Store) AddAPIKey(k models.APIKey) models.APIKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	k.ID = s.id(k.ID)
	s.apiKeys[k.ID] = k
	return k
}

// Race returns the stored row, bypassing the repository.
func (s *Store) Race(id int) models.Race {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.races[id]
}

// SetReviewer overwrites a race's reviewer, bypassing the repository.
func (s *Store) SetReviewer(raceID, userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.races[raceID]
	r.ReviewedByID = &userID
	s.races[raceID] = r
}

func (s *Store) Tournaments() repositories.TournamentRepository { return tournamentRepo{s} }
func (s *Store) Pools() repositories.PoolRepository             { return poolRepo{s} }
func (s *Store) Permalinks() repositories.PermalinkRepository   { return permalinkRepo{s} }
func (s *Store) Races() repositories.RaceRepository             { return raceRepo{s} }
func (s *Store) Users() repositories.UserRepository             { return userRepo{s} }
func (s *Store) Whitelist() repositories.WhitelistRepository    { return whitelistRepo{s} }
func (s *Store) Permissions() repositories.PermissionRepository { return permissionRepo{s} }
func (s *Store) APIKeys() repositories.APIKeyRepository         { return apiKeyRepo{s} }

type tournamentRepo struct{ s *Store }

func (r tournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.called("tournaments.GetByID")
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r tournamentRepo) GetByIDs(_ context.Context, ids []int) (map[int]*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.called("tournaments.GetByIDs")
	out := make(map[int]*models.Tournament, len(ids))
	for _, id := range ids {
		if t, ok := r.s.tournaments[id]; ok {
			out[id] = &t
		}
	}
	return out, nil
}

func (r tournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Tournament, 0)
	for _, t := range r.s.tournaments {
		if filter.Active != nil && t.Active != *filter.Active {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type poolRepo struct{ s *Store }

func (r poolRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.PermalinkPool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.PermalinkPool, 0)
	for _, p := range r.s.pools {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r poolRepo) GetByID(_ context.Context, tournamentID, poolID int) (*models.PermalinkPool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pools[poolID]
	if !ok || p.TournamentID != tournamentID {
		return nil, repositories.ErrPoolNotFound
	}
	return &p, nil
}

func (r poolRepo) GetByIDs(_ context.Context, ids []int) (map[int]*models.PermalinkPool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.called("pools.GetByIDs")
	out := make(map[int]*models.PermalinkPool, len(ids))
	for _, id := range ids {
		if p, ok := r.s.pools[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

type permalinkRepo struct{ s *Store }

// tournamentOf resolves a permalink's tournament through its pool. Callers hold mu.
func (s *Store) tournamentOf(p models.Permalink) int {
	return s.pools[p.PoolID].TournamentID
}

func (r permalinkRepo) List(_ context.Context, filter repositories.ListPermalinksFilter) ([]models.Permalink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Permalink, 0)
	for _, p := range r.s.permalinks {
		if _, ok := r.s.pools[p.PoolID]; !ok || r.s.tournamentOf(p) != filter.TournamentID {
			continue
		}
		if filter.ID != nil && p.ID != *filter.ID {
			continue
		}
		if filter.URL != nil && p.URL != *filter.URL {
			continue
		}
		if filter.PoolID != nil && p.PoolID != *filter.PoolID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r permalinkRepo) GetByID(_ context.Context, tournamentID, permalinkID int) (*models.Permalink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.permalinks[permalinkID]
	if !ok || r.s.tournamentOf(p) != tournamentID {
		return nil, repositories.ErrPermalinkNotFound
	}
	return &p, nil
}

func (r permalinkRepo) GetByIDs(_ context.Context, ids []int) (map[int]*models.Permalink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.called("permalinks.GetByIDs")
	out := make(map[int]*models.Permalink, len(ids))
	for _, id := range ids {
		if p, ok := r.s.permalinks[id]; ok {
			out[id] = &p
		}
	}
	return out, nil
}

type raceRepo struct{ s *Store }

func (r raceRepo) matches(race models.Race, f repositories.RaceFilter) bool {
	if race.TournamentID != f.TournamentID {
		return false
	}
	if f.ExcludeReattempted && race.Reattempted {
		return false
	}
	if f.ID != nil && race.ID != *f.ID {
		return false
	}
	if f.DiscordUserID != nil {
		u, ok := r.s.users[race.UserID]
		if !ok || u.DiscordUserID == nil || *u.DiscordUserID != *f.DiscordUserID {
			return false
		}
	}
	if f.PermalinkID != nil && race.PermalinkID != *f.PermalinkID {
		return false
	}
	permalink, hasPermalink := r.s.permalinks[race.PermalinkID]
	if f.PoolID != nil && (!hasPermalink || permalink.PoolID != *f.PoolID) {
		return false
	}
	if f.PoolName != nil {
		pool, ok := r.s.pools[permalink.PoolID]
		if !hasPermalink || !ok || pool.Name != *f.PoolName {
			return false
		}
	}
	if f.Status != nil && race.Status != *f.Status {
		return false
	}
	if f.ReviewStatus != nil && race.ReviewStatus != *f.ReviewStatus {
		return false
	}
	switch f.Reviewer {
	case repositories.ReviewerNone:
		if race.ReviewedByID != nil {
			return false
		}
	case repositories.ReviewerIs:
		if race.ReviewedByID == nil || *race.ReviewedByID != f.ReviewerID {
			return false
		}
	}
	if f.ThreadIsNull != nil && (race.ThreadID == nil) != *f.ThreadIsNull {
		return false
	}
	return true
}

func (r raceRepo) List(_ context.Context, filter repositories.RaceFilter) ([]models.Race, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.called("races.List")
	out := make([]models.Race, 0)
	for _, race := range r.s.races {
		if r.matches(race, filter) {
			out = append(out, race)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r raceRepo) GetByID(_ context.Context, tournamentID, raceID int) (*models.Race, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	race, ok := r.s.races[raceID]
	if !ok || race.TournamentID != tournamentID {
		return nil, repositories.ErrRaceNotFound
	}
	return &race, nil
}

func (r raceRepo) ClaimForReview(_ context.Context, raceID, reviewerID int) (bool, error) {
	if hook := r.s.BeforeClaim; hook != nil {
		hook(raceID)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.called("races.ClaimForReview")
	race, ok := r.s.races[raceID]
	if !ok || race.ReviewedByID != nil {
		return false, nil
	}
	race.ReviewedByID = &reviewerID
	r.s.races[raceID] = race
	return true, nil
}

func (r raceRepo) SaveReview(_ context.Context, raceID int, update repositories.ReviewUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.called("races.SaveReview")
	race, ok := r.s.races[raceID]
	if !ok {
		return repositories.ErrRaceNotFound
	}
	reviewer := update.ReviewedByID
	reviewedAt := update.ReviewedAt
	race.ReviewStatus = update.ReviewStatus
	race.ReviewerNotes = update.ReviewerNotes
	race.ReviewedAt = &reviewedAt
	race.ReviewedByID = &reviewer
	r.s.races[raceID] = race
	return nil
}

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r userRepo) GetByDiscordID(_ context.Context, discordUserID int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.DiscordUserID != nil && *u.DiscordUserID == discordUserID {
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r userRepo) GetByIDs(_ context.Context, ids []int) (map[int]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.called("users.GetByIDs")
	out := make(map[int]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out[id] = &u
		}
	}
	return out, nil
}

type whitelistRepo struct{ s *Store }

func (r whitelistRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.WhitelistEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.WhitelistEntry, 0)
	for _, e := range r.s.whitelist {
		if e.TournamentID == tournamentID {
			out = append(out, e)
		}
	}
	return out, nil
}

type permissionRepo struct{ s *Store }

func (r permissionRepo) HasRole(_ context.Context, tournamentID, userID int, roles []models.PermissionRole) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.called("permissions.HasRole")
	for _, p := range r.s.permissions {
		if p.TournamentID != tournamentID || p.UserID != userID {
			continue
		}
		for _, role := range roles {
			if p.Role == role {
				return true, nil
			}
		}
	}
	return false, nil
}

type apiKeyRepo struct{ s *Store }

func (r apiKeyRepo) Create(_ context.Context, key *models.APIKey) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, k := range r.s.apiKeys {
		if k.Name == key.Name {
			return repositories.ErrAPIKeyNameConflict
		}
	}
	key.ID = r.s.id(0)
	key.CreatedAt = time.Now()
	r.s.apiKeys[key.ID] = *key
	return nil
}

func (r apiKeyRepo) GetByID(_ context.Context, id int) (*models.APIKey, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k, ok := r.s.apiKeys[id]
	if !ok {
		return nil, repositories.ErrAPIKeyNotFound
	}
	return &k, nil
}
