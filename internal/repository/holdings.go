package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cardgridgames/cardgrid-backend/internal/entity"
)

type HoldingsRepository interface {
	Get(ctx context.Context, participantID string) (map[entity.CardKind]*entity.Holding, error)
	Save(ctx context.Context, participantID string, holdings map[entity.CardKind]*entity.Holding) error
}

type dbHoldings struct {
	client *redis.Client
}

func NewHoldingsRepository(client *redis.Client) HoldingsRepository {
	return &dbHoldings{
		client: client,
	}
}

// Get returns the stored holdings; a participant with no record yet gets
// an empty map rather than an error.
func (that *dbHoldings) Get(ctx context.Context, participantID string) (map[entity.CardKind]*entity.Holding, error) {
	key := "holdings:" + participantID

	response, err := that.client.Get(ctx, key).Result()

	if errors.Is(err, redis.Nil) {
		return map[entity.CardKind]*entity.Holding{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}

	holdings := map[entity.CardKind]*entity.Holding{}
	if err = json.Unmarshal([]byte(response), &holdings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal holdings: %w", err)
	}

	return holdings, nil
}

func (that *dbHoldings) Save(ctx context.Context, participantID string, holdings map[entity.CardKind]*entity.Holding) error {
	holdingsJSON, err := json.Marshal(holdings)
	if err != nil {
		return fmt.Errorf("failed to marshal holdings: %w", err)
	}

	key := "holdings:" + participantID
	if err = that.client.Set(ctx, key, holdingsJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set holdings: %w", err)
	}

	return nil
}
