package service

import (
	"context"
	"sync"

	"github.com/cardgridgames/cardgrid-backend/internal/entity"
)

// fakeHoldingsRepo and fakeStatsRepo are in-memory stand-ins for the
// Redis-backed repositories, mirroring their missing-key behavior.
type fakeHoldingsRepo struct {
	mu   sync.Mutex
	data map[string]map[entity.CardKind]*entity.Holding
}

func newFakeHoldingsRepo() *fakeHoldingsRepo {
	return &fakeHoldingsRepo{data: make(map[string]map[entity.CardKind]*entity.Holding)}
}

func (that *fakeHoldingsRepo) Get(_ context.Context, participantID string) (map[entity.CardKind]*entity.Holding, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.data[participantID]
	if !ok {
		return make(map[entity.CardKind]*entity.Holding), nil
	}

	copied := make(map[entity.CardKind]*entity.Holding, len(stored))
	for kind, holding := range stored {
		copiedHolding := *holding
		copied[kind] = &copiedHolding
	}

	return copied, nil
}

func (that *fakeHoldingsRepo) Save(_ context.Context, participantID string, holdings map[entity.CardKind]*entity.Holding) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.data[participantID] = holdings

	return nil
}

type fakeStatsRepo struct {
	mu   sync.Mutex
	data map[string]*entity.PlayerStats
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{data: make(map[string]*entity.PlayerStats)}
}

func (that *fakeStatsRepo) Get(_ context.Context, participantID string) (*entity.PlayerStats, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.data[participantID]
	if !ok {
		return &entity.PlayerStats{}, nil
	}

	copied := *stored

	return &copied, nil
}

func (that *fakeStatsRepo) Save(_ context.Context, participantID string, stats *entity.PlayerStats) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.data[participantID] = stats

	return nil
}

// fakeBroadcaster records every emitted notification in order.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []string

	lastRoom  *entity.Room
	lastStats map[string]*entity.PlayerStats
	lastCard  entity.CardKind
}

func (that *fakeBroadcaster) record(event string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, event)
}

func (that *fakeBroadcaster) RoomState(room *entity.Room) {
	that.record("room_state")
	that.lastRoom = room
}

func (that *fakeBroadcaster) PlayerJoined(_ *entity.Room, _ *entity.Participant) {
	that.record("player_joined")
}

func (that *fakeBroadcaster) CardUsed(_ *entity.Room, _ string, kind entity.CardKind) {
	that.record("card_used")
	that.lastCard = kind
}

func (that *fakeBroadcaster) GameOver(room *entity.Room, stats map[string]*entity.PlayerStats) {
	that.record("game_over")
	that.lastRoom = room
	that.lastStats = stats
}

func (that *fakeBroadcaster) OpponentLeft(_ *entity.Room, _ string) {
	that.record("opponent_left")
}

func (that *fakeBroadcaster) seen(event string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, recorded := range that.events {
		if recorded == event {
			return true
		}
	}

	return false
}
