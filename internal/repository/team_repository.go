package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"teambot/internal/domain"
	"teambot/pkg/database"
)

// teamRepository handles team persistence with PostgreSQL
type teamRepository struct {
	db *database.PostgresDB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *database.PostgresDB) TeamRepository {
	return &teamRepository{
		db: db,
	}
}

// CreateTeam persists a team row plus its creator member in one transaction
func (r *teamRepository) CreateTeam(ctx context.Context, team *domain.Team) (int64, error) {
	createdAt := time.Now()

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO teams (creator_id, creator_name, start_time, created_at, group_id, server)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`
		if err := tx.QueryRow(ctx, query,
			team.CreatorID,
			team.CreatorName,
			team.StartTime,
			createdAt,
			team.GroupID,
			string(team.Server),
		).Scan(&team.ID); err != nil {
			return fmt.Errorf("failed to insert team: %w", err)
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO team_members (team_id, user_id, nickname) VALUES ($1, $2, $3)`,
			team.ID, team.CreatorID, team.CreatorName,
		)
		if err != nil {
			return fmt.Errorf("failed to insert creator member: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	team.CreatedAt = createdAt
	team.Members = []domain.TeamMember{{UserID: team.CreatorID, Nickname: team.CreatorName}}
	return team.ID, nil
}

// GetTeam retrieves a team with its member list in join order
func (r *teamRepository) GetTeam(ctx context.Context, id int64) (*domain.Team, error) {
	query := `
		SELECT id, creator_id, creator_name, start_time, created_at, group_id, server
		FROM teams
		WHERE id = $1
	`

	team := &domain.Team{}
	var server string
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.CreatorID,
		&team.CreatorName,
		&team.StartTime,
		&team.CreatedAt,
		&team.GroupID,
		&server,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	team.Server = domain.Server(server)

	members, err := r.loadMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Members = members

	return team, nil
}

// ListTeams retrieves all teams by ascending id with members populated
func (r *teamRepository) ListTeams(ctx context.Context) ([]*domain.Team, error) {
	return r.listTeams(ctx, `
		SELECT id, creator_id, creator_name, start_time, created_at, group_id, server
		FROM teams
		ORDER BY id
	`)
}

// ListTeamsInWindow retrieves teams whose start time falls in [from, to]
func (r *teamRepository) ListTeamsInWindow(ctx context.Context, from, to time.Time) ([]*domain.Team, error) {
	return r.listTeams(ctx, `
		SELECT id, creator_id, creator_name, start_time, created_at, group_id, server
		FROM teams
		WHERE start_time BETWEEN $1 AND $2
		ORDER BY id
	`, from, to)
}

// AddMember appends a member row; invariant checks belong to the service
func (r *teamRepository) AddMember(ctx context.Context, teamID int64, member domain.TeamMember) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO team_members (team_id, user_id, nickname) VALUES ($1, $2, $3)`,
		teamID, member.UserID, member.Nickname,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveMember removes a member row from a team's roster
func (r *teamRepository) RemoveMember(ctx context.Context, teamID int64, userID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`,
		teamID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// DeleteTeam removes the team row and its members in one transaction. The
// schema also carries ON DELETE CASCADE, the explicit member delete keeps
// the operation correct against older schemas.
func (r *teamRepository) DeleteTeam(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM team_members WHERE team_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete team members: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete team: %w", err)
		}
		return nil
	})
}

// DeleteExpired removes all teams whose start time lies before the cutoff
func (r *teamRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var removed int64
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM team_members WHERE team_id IN (SELECT id FROM teams WHERE start_time < $1)`,
			before,
		); err != nil {
			return fmt.Errorf("failed to delete expired members: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM teams WHERE start_time < $1`, before)
		if err != nil {
			return fmt.Errorf("failed to delete expired teams: %w", err)
		}
		removed = tag.RowsAffected()
		return nil
	})
	return removed, err
}

// listTeams runs a team query and fills in member lists with one extra query
func (r *teamRepository) listTeams(ctx context.Context, query string, args ...interface{}) ([]*domain.Team, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []*domain.Team
	byID := make(map[int64]*domain.Team)
	for rows.Next() {
		team := &domain.Team{}
		var server string
		if err := rows.Scan(
			&team.ID,
			&team.CreatorID,
			&team.CreatorName,
			&team.StartTime,
			&team.CreatedAt,
			&team.GroupID,
			&server,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		team.Server = domain.Server(server)
		teams = append(teams, team)
		byID[team.ID] = team
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teams: %w", err)
	}
	if len(teams) == 0 {
		return teams, nil
	}

	ids := make([]int64, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}

	memberRows, err := r.db.Pool.Query(ctx,
		`SELECT team_id, user_id, nickname FROM team_members WHERE team_id = ANY($1) ORDER BY id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var teamID int64
		var member domain.TeamMember
		if err := memberRows.Scan(&teamID, &member.UserID, &member.Nickname); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		if team, ok := byID[teamID]; ok {
			team.Members = append(team.Members, member)
		}
	}
	if err := memberRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team members: %w", err)
	}

	return teams, nil
}

// loadMembers returns a team's members in join order
func (r *teamRepository) loadMembers(ctx context.Context, teamID int64) ([]domain.TeamMember, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT user_id, nickname FROM team_members WHERE team_id = $1 ORDER BY id`,
		teamID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load team members: %w", err)
	}
	defer rows.Close()

	var members []domain.TeamMember
	for rows.Next() {
		var member domain.TeamMember
		if err := rows.Scan(&member.UserID, &member.Nickname); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate team members: %w", err)
	}

	return members, nil
}
