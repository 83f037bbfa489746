package service

import (
	"context"
	"time"

	"teambot/internal/domain"
)

// TeamService is the single authority for team roster invariants. All
// command handling and scheduling goes through it, never straight to the
// repository.
type TeamService interface {
	// Create validates the server region and persists a new team with the
	// creator as its first member. A past start time is legal, the expiry
	// sweep collects it later.
	Create(ctx context.Context, creatorID, creatorName string, startTime time.Time, groupID, server string) (*domain.Team, error)

	// Join adds a member to a team. Ordered checks: team exists, member not
	// already present, roster below capacity.
	Join(ctx context.Context, teamID int64, member domain.TeamMember) error

	// Leave removes a member from a team. The creator can never leave, only
	// delete.
	Leave(ctx context.Context, teamID int64, userID string) error

	// Delete removes a team and its members; only the creator may do this
	Delete(ctx context.Context, teamID int64, requesterID string) error

	// ListAll returns every team by ascending id
	ListAll(ctx context.Context) ([]*domain.Team, error)

	// Describe returns a single team with its full roster
	Describe(ctx context.Context, teamID int64) (*domain.Team, error)

	// Remove unconditionally deletes a team. Used by the scheduler after a
	// due-notification pass; never exposed to chat commands.
	Remove(ctx context.Context, teamID int64) error

	// SweepExpired deletes every team whose start time lies before now
	SweepExpired(ctx context.Context, now time.Time) (int64, error)

	// DueForNotification returns teams whose start time falls within
	// [now-window, now+window]
	DueForNotification(ctx context.Context, now time.Time, window time.Duration) ([]*domain.Team, error)
}

// Notifier delivers a text message to a chat destination. Implemented by the
// OneBot HTTP client; a nil error means the platform accepted the message.
type Notifier interface {
	Send(ctx context.Context, groupID, message string) error
}
