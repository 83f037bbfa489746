package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"teambot/internal/domain"
	"teambot/internal/repository"
)

// memTeamRepo is an in-memory TeamRepository for service tests. Ids are
// assigned sequentially and never reused, matching the real store.
type memTeamRepo struct {
	mu     sync.Mutex
	nextID int64
	teams  map[int64]*domain.Team
}

func newMemTeamRepo() *memTeamRepo {
	return &memTeamRepo{
		nextID: 1,
		teams:  make(map[int64]*domain.Team),
	}
}

var _ repository.TeamRepository = (*memTeamRepo)(nil)

func (r *memTeamRepo) CreateTeam(_ context.Context, team *domain.Team) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	team.ID = r.nextID
	r.nextID++
	team.CreatedAt = time.Now()
	team.Members = []domain.TeamMember{{UserID: team.CreatorID, Nickname: team.CreatorName}}

	r.teams[team.ID] = copyTeam(team)
	return team.ID, nil
}

func (r *memTeamRepo) GetTeam(_ context.Context, id int64) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[id]
	if !ok {
		return nil, domain.ErrTeamNotFound
	}
	return copyTeam(team), nil
}

func (r *memTeamRepo) ListTeams(_ context.Context) ([]*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(*domain.Team) bool { return true }), nil
}

func (r *memTeamRepo) AddMember(_ context.Context, teamID int64, member domain.TeamMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[teamID]
	if !ok {
		return domain.ErrTeamNotFound
	}
	team.Members = append(team.Members, member)
	return nil
}

func (r *memTeamRepo) RemoveMember(_ context.Context, teamID int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[teamID]
	if !ok {
		return domain.ErrTeamNotFound
	}
	members := team.Members[:0]
	for _, m := range team.Members {
		if m.UserID != userID {
			members = append(members, m)
		}
	}
	team.Members = members
	return nil
}

func (r *memTeamRepo) DeleteTeam(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.teams, id)
	return nil
}

func (r *memTeamRepo) ListTeamsInWindow(_ context.Context, from, to time.Time) ([]*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(t *domain.Team) bool {
		return !t.StartTime.Before(from) && !t.StartTime.After(to)
	}), nil
}

func (r *memTeamRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, team := range r.teams {
		if team.StartTime.Before(before) {
			delete(r.teams, id)
			removed++
		}
	}
	return removed, nil
}

func (r *memTeamRepo) collect(keep func(*domain.Team) bool) []*domain.Team {
	var teams []*domain.Team
	for _, team := range r.teams {
		if keep(team) {
			teams = append(teams, copyTeam(team))
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	return teams
}

func copyTeam(t *domain.Team) *domain.Team {
	clone := *t
	clone.Members = append([]domain.TeamMember(nil), t.Members...)
	return &clone
}
