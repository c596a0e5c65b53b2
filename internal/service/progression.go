package service

import (
	"context"
	"fmt"

	"github.com/cardgridgames/cardgrid-backend/internal/apperror"
	"github.com/cardgridgames/cardgrid-backend/internal/entity"
	"github.com/cardgridgames/cardgrid-backend/internal/repository"
)

// ProgressionService owns the durable per-player state: card holdings
// and win/loss/draw/streak counters. Rooms only ever hold a snapshot of
// this data, taken at room-entry time.
type ProgressionService interface {
	Holdings(ctx context.Context, participantID string) (map[entity.CardKind]*entity.Holding, error)
	ConsumeCard(ctx context.Context, participantID string, kind entity.CardKind) error
	GrantCard(ctx context.Context, participantID string, kind entity.CardKind) error

	Stats(ctx context.Context, participantID string) (*entity.PlayerStats, error)
	RecordOutcome(ctx context.Context, participantID string, outcome entity.Outcome) (*entity.PlayerStats, error)

	SetProtection(ctx context.Context, participantID string, armed bool) error
	SetGiant(ctx context.Context, participantID string, armed bool) error
}

type progressionService struct {
	holdingsRepo repository.HoldingsRepository
	statsRepo    repository.StatsRepository
}

func NewProgressionService(holdingsRepo repository.HoldingsRepository, statsRepo repository.StatsRepository) ProgressionService {
	return &progressionService{
		holdingsRepo: holdingsRepo,
		statsRepo:    statsRepo,
	}
}

func (that *progressionService) Holdings(ctx context.Context, participantID string) (map[entity.CardKind]*entity.Holding, error) {
	holdings, err := that.holdingsRepo.Get(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}

	return holdings, nil
}

// ConsumeCard decrements the available count and bumps the used count.
// The available count never goes negative.
func (that *progressionService) ConsumeCard(ctx context.Context, participantID string, kind entity.CardKind) error {
	holdings, err := that.holdingsRepo.Get(ctx, participantID)
	if err != nil {
		return fmt.Errorf("failed to get holdings: %w", err)
	}

	holding, ok := holdings[kind]
	if !ok || holding.Available <= 0 {
		return apperror.ErrCardUnavailable
	}

	holding.Available--
	holding.Used++

	if err = that.holdingsRepo.Save(ctx, participantID, holdings); err != nil {
		return fmt.Errorf("failed to save holdings: %w", err)
	}

	return nil
}

func (that *progressionService) GrantCard(ctx context.Context, participantID string, kind entity.CardKind) error {
	holdings, err := that.holdingsRepo.Get(ctx, participantID)
	if err != nil {
		return fmt.Errorf("failed to get holdings: %w", err)
	}

	holding, ok := holdings[kind]
	if !ok {
		holding = &entity.Holding{}
		holdings[kind] = holding
	}

	holding.Available++

	if err = that.holdingsRepo.Save(ctx, participantID, holdings); err != nil {
		return fmt.Errorf("failed to save holdings: %w", err)
	}

	return nil
}

func (that *progressionService) Stats(ctx context.Context, participantID string) (*entity.PlayerStats, error) {
	stats, err := that.statsRepo.Get(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return stats, nil
}

// RecordOutcome updates the counters and returns the refreshed stats. A
// win extends the streak; a loss or a draw resets it.
func (that *progressionService) RecordOutcome(ctx context.Context, participantID string, outcome entity.Outcome) (*entity.PlayerStats, error) {
	stats, err := that.statsRepo.Get(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	switch outcome {
	case entity.OutcomeWin:
		stats.Wins++
		stats.Streak++
	case entity.OutcomeLoss:
		stats.Losses++
		stats.Streak = 0
	case entity.OutcomeDraw:
		stats.Draws++
		stats.Streak = 0
	}

	if err = that.statsRepo.Save(ctx, participantID, stats); err != nil {
		return nil, fmt.Errorf("failed to save stats: %w", err)
	}

	return stats, nil
}

func (that *progressionService) SetProtection(ctx context.Context, participantID string, armed bool) error {
	return that.setFlag(ctx, participantID, func(stats *entity.PlayerStats) {
		stats.Protection = armed
	})
}

func (that *progressionService) SetGiant(ctx context.Context, participantID string, armed bool) error {
	return that.setFlag(ctx, participantID, func(stats *entity.PlayerStats) {
		stats.Giant = armed
	})
}

func (that *progressionService) setFlag(ctx context.Context, participantID string, apply func(*entity.PlayerStats)) error {
	stats, err := that.statsRepo.Get(ctx, participantID)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	apply(stats)

	if err = that.statsRepo.Save(ctx, participantID, stats); err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}

	return nil
}
