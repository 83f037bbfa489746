package repository

import (
	"context"
	"time"

	"teambot/internal/domain"
)

// TeamRepository defines the interface for team data operations. Capacity,
// duplicate-membership and ownership rules live in the service layer; the
// repository only guarantees atomicity of the composite writes.
type TeamRepository interface {
	// CreateTeam persists a team and its creator as the first member in one
	// atomic unit and returns the generated id
	CreateTeam(ctx context.Context, team *domain.Team) (int64, error)

	// GetTeam retrieves a team with its ordered member list
	GetTeam(ctx context.Context, id int64) (*domain.Team, error)

	// ListTeams retrieves all teams by ascending id, members populated
	ListTeams(ctx context.Context) ([]*domain.Team, error)

	// AddMember appends a member to a team's roster
	AddMember(ctx context.Context, teamID int64, member domain.TeamMember) error

	// RemoveMember removes a member from a team's roster
	RemoveMember(ctx context.Context, teamID int64, userID string) error

	// DeleteTeam removes a team and all its members
	DeleteTeam(ctx context.Context, id int64) error

	// ListTeamsInWindow retrieves teams whose start time falls in [from, to]
	ListTeamsInWindow(ctx context.Context, from, to time.Time) ([]*domain.Team, error)

	// DeleteExpired removes all teams whose start time lies before the cutoff
	// and reports how many were removed
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
