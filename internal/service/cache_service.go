package service

import (
	"context"
	"encoding/json"

	"teambot/internal/domain"
	"teambot/pkg/logger"
	"teambot/pkg/redis"
)

// CacheService provides a cache-aside layer over the team read paths. Cache
// failures always degrade to the database and never fail an operation.
type CacheService struct {
	redis  *redis.Client
	logger *logger.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, log *logger.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: log,
	}
}

// GetTeams returns the cached team list, ok reports a usable hit
func (c *CacheService) GetTeams(ctx context.Context) ([]*domain.Team, bool) {
	data, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyTeamsAll())
	if err != nil {
		if !redis.IsNil(err) {
			c.logger.WithError(err).Warn("Team list cache error, falling back to database")
		}
		return nil, false
	}

	var teams []*domain.Team
	if err := json.Unmarshal([]byte(data), &teams); err != nil {
		c.logger.WithError(err).Warn("Team list cache corrupted, falling back to database")
		return nil, false
	}
	return teams, true
}

// SetTeams caches the full team list
func (c *CacheService) SetTeams(ctx context.Context, teams []*domain.Team) {
	data, err := json.Marshal(teams)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to marshal team list for cache")
		return
	}
	if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeyTeamsAll(), data, redis.TTLTeams); err != nil {
		c.logger.WithError(err).Warn("Failed to cache team list")
	}
}

// GetTeam returns a cached team, ok reports a usable hit
func (c *CacheService) GetTeam(ctx context.Context, teamID int64) (*domain.Team, bool) {
	data, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyTeamByID(teamID))
	if err != nil {
		if !redis.IsNil(err) {
			c.logger.WithError(err).WithField("team_id", teamID).Warn("Team cache error, falling back to database")
		}
		return nil, false
	}

	team := &domain.Team{}
	if err := json.Unmarshal([]byte(data), team); err != nil {
		c.logger.WithError(err).WithField("team_id", teamID).Warn("Team cache corrupted, falling back to database")
		return nil, false
	}
	return team, true
}

// SetTeam caches a single team
func (c *CacheService) SetTeam(ctx context.Context, team *domain.Team) {
	data, err := json.Marshal(team)
	if err != nil {
		c.logger.WithError(err).WithField("team_id", team.ID).Warn("Failed to marshal team for cache")
		return
	}
	if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeyTeamByID(team.ID), data, redis.TTLTeamByID); err != nil {
		c.logger.WithError(err).WithField("team_id", team.ID).Warn("Failed to cache team")
	}
}

// InvalidateTeam drops the cached team and the list it appears in
func (c *CacheService) InvalidateTeam(ctx context.Context, teamID int64) {
	if err := c.redis.Delete(ctx,
		c.redis.KeyBuilder.KeyTeamByID(teamID),
		c.redis.KeyBuilder.KeyTeamsAll(),
	); err != nil {
		c.logger.WithError(err).WithField("team_id", teamID).Warn("Failed to invalidate team cache")
	}
}

// InvalidateList drops the cached team list
func (c *CacheService) InvalidateList(ctx context.Context) {
	if err := c.redis.Delete(ctx, c.redis.KeyBuilder.KeyTeamsAll()); err != nil {
		c.logger.WithError(err).Warn("Failed to invalidate team list cache")
	}
}
