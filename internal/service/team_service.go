package service

import (
	"context"
	"sync"
	"time"

	"teambot/internal/domain"
	"teambot/internal/repository"
	"teambot/pkg/logger"
)

// teamService enforces roster invariants on top of the repository
type teamService struct {
	repo   repository.TeamRepository
	cache  *CacheService
	logger *logger.Logger

	// locks serializes validate-then-mutate sequences per team id so two
	// concurrent joins cannot both take the last slot. Entries are dropped
	// on team removal; ids are never reused, so a late goroutine holding a
	// stale mutex only races towards a not-found result.
	locks sync.Map
}

// NewTeamService creates a new team service. cache may be nil to disable
// read caching.
func NewTeamService(repo repository.TeamRepository, cache *CacheService, log *logger.Logger) TeamService {
	return &teamService{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (s *teamService) lockTeam(teamID int64) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(teamID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu
}

// Create validates the server region and persists the new team
func (s *teamService) Create(ctx context.Context, creatorID, creatorName string, startTime time.Time, groupID, server string) (*domain.Team, error) {
	srv, err := domain.ParseServer(server)
	if err != nil {
		return nil, err
	}

	team := &domain.Team{
		CreatorID:   creatorID,
		CreatorName: creatorName,
		StartTime:   startTime,
		GroupID:     groupID,
		Server:      srv,
	}

	id, err := s.repo.CreateTeam(ctx, team)
	if err != nil {
		return nil, err
	}

	s.invalidateList(ctx)

	s.logger.WithFields(map[string]interface{}{
		"team_id":    id,
		"creator_id": creatorID,
		"server":     string(srv),
		"start_time": startTime.Format(domain.TimeLayout),
	}).Info("Team created")

	return team, nil
}

// Join adds a member after the ordered existence, duplicate and capacity checks
func (s *teamService) Join(ctx context.Context, teamID int64, member domain.TeamMember) error {
	mu := s.lockTeam(teamID)
	defer mu.Unlock()

	team, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.HasMember(member.UserID) {
		return domain.ErrAlreadyJoined
	}
	if team.IsFull() {
		return domain.ErrTeamFull
	}

	if err := s.repo.AddMember(ctx, teamID, member); err != nil {
		return err
	}

	s.invalidateTeam(ctx, teamID)
	return nil
}

// Leave removes a non-creator member from the roster
func (s *teamService) Leave(ctx context.Context, teamID int64, userID string) error {
	mu := s.lockTeam(teamID)
	defer mu.Unlock()

	team, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if !team.HasMember(userID) {
		return domain.ErrNotAMember
	}
	if team.CreatorID == userID {
		return domain.ErrCreatorCannotLeave
	}

	if err := s.repo.RemoveMember(ctx, teamID, userID); err != nil {
		return err
	}

	s.invalidateTeam(ctx, teamID)
	return nil
}

// Delete removes the team with its members after the ownership check
func (s *teamService) Delete(ctx context.Context, teamID int64, requesterID string) error {
	mu := s.lockTeam(teamID)
	defer mu.Unlock()

	team, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if team.CreatorID != requesterID {
		return domain.ErrNotOwner
	}

	if err := s.repo.DeleteTeam(ctx, teamID); err != nil {
		return err
	}

	s.locks.Delete(teamID)
	s.invalidateTeam(ctx, teamID)

	s.logger.WithFields(map[string]interface{}{
		"team_id":      teamID,
		"requester_id": requesterID,
	}).Info("Team deleted by creator")

	return nil
}

// Remove unconditionally deletes a team, for the scheduler's fire-once path
func (s *teamService) Remove(ctx context.Context, teamID int64) error {
	mu := s.lockTeam(teamID)
	defer mu.Unlock()

	if err := s.repo.DeleteTeam(ctx, teamID); err != nil {
		return err
	}

	s.locks.Delete(teamID)
	s.invalidateTeam(ctx, teamID)
	return nil
}

// ListAll returns every team by ascending id, cache-aside
func (s *teamService) ListAll(ctx context.Context) ([]*domain.Team, error) {
	if s.cache != nil {
		if teams, ok := s.cache.GetTeams(ctx); ok {
			return teams, nil
		}
	}

	teams, err := s.repo.ListTeams(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetTeams(ctx, teams)
	}
	return teams, nil
}

// Describe returns one team with its full roster, cache-aside
func (s *teamService) Describe(ctx context.Context, teamID int64) (*domain.Team, error) {
	if s.cache != nil {
		if team, ok := s.cache.GetTeam(ctx, teamID); ok {
			return team, nil
		}
	}

	team, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.SetTeam(ctx, team)
	}
	return team, nil
}

// SweepExpired deletes every team whose start time lies before now
func (s *teamService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.invalidateList(ctx)
	}
	return removed, nil
}

// DueForNotification returns teams starting within [now-window, now+window].
// The window reaches backwards so a team whose start slipped past between
// sweeps is still picked up once.
func (s *teamService) DueForNotification(ctx context.Context, now time.Time, window time.Duration) ([]*domain.Team, error) {
	return s.repo.ListTeamsInWindow(ctx, now.Add(-window), now.Add(window))
}

func (s *teamService) invalidateTeam(ctx context.Context, teamID int64) {
	if s.cache != nil {
		s.cache.InvalidateTeam(ctx, teamID)
	}
}

func (s *teamService) invalidateList(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateList(ctx)
	}
}
