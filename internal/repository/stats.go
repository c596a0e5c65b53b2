package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cardgridgames/cardgrid-backend/internal/entity"
)

type StatsRepository interface {
	Get(ctx context.Context, participantID string) (*entity.PlayerStats, error)
	Save(ctx context.Context, participantID string, stats *entity.PlayerStats) error
}

type dbStats struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &dbStats{
		client: client,
	}
}

// Get returns the stored counters; a participant with no record yet gets
// zeroed stats rather than an error.
func (that *dbStats) Get(ctx context.Context, participantID string) (*entity.PlayerStats, error) {
	key := "stats:" + participantID

	response, err := that.client.Get(ctx, key).Result()

	if errors.Is(err, redis.Nil) {
		return &entity.PlayerStats{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	var stats entity.PlayerStats
	if err = json.Unmarshal([]byte(response), &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}

	return &stats, nil
}

func (that *dbStats) Save(ctx context.Context, participantID string, stats *entity.PlayerStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	key := "stats:" + participantID
	if err = that.client.Set(ctx, key, statsJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set stats: %w", err)
	}

	return nil
}
