package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardgridgames/cardgrid-backend/internal/apperror"
	"github.com/cardgridgames/cardgrid-backend/internal/catalog"
	"github.com/cardgridgames/cardgrid-backend/internal/engine"
	"github.com/cardgridgames/cardgrid-backend/internal/entity"
	"github.com/cardgridgames/cardgrid-backend/internal/pkg"
	"github.com/cardgridgames/cardgrid-backend/internal/registry"
)

// Streak lengths at which cards are granted automatically.
const (
	protectionStreak = 3
	giantStreak      = 5
)

const botParticipantID = "bot"

// Broadcaster is the room-scoped outbound notification port. Delivery is
// the transport's problem; the service only emits.
type Broadcaster interface {
	RoomState(room *entity.Room)
	PlayerJoined(room *entity.Room, joined *entity.Participant)
	CardUsed(room *entity.Room, actorID string, kind entity.CardKind)
	GameOver(room *entity.Room, stats map[string]*entity.PlayerStats)
	OpponentLeft(room *entity.Room, remainingID string)
}

type GamePlayService interface {
	CreateRoom(ctx context.Context, roomID, participantID, name string, size int, roomType, botDifficulty string) (*entity.Room, error)
	JoinRoom(ctx context.Context, roomID, participantID, name string) (*entity.Room, error)
	LeaveRoom(ctx context.Context, roomID, participantID string) error
	MakeTurn(ctx context.Context, roomID, participantID string, cell int, card entity.CardKind) (*entity.Room, error)
	RoomState(roomID string) (*entity.Room, error)
}

type gamePlayService struct {
	logger *slog.Logger

	rooms       *registry.Registry
	cards       *catalog.Catalog
	progression ProgressionService
	bot         BotService
	broadcaster Broadcaster
}

func NewGamePlayService(logger *slog.Logger, rooms *registry.Registry, cards *catalog.Catalog, progression ProgressionService, bot BotService, broadcaster Broadcaster) GamePlayService {
	return &gamePlayService{
		logger:      logger,
		rooms:       rooms,
		cards:       cards,
		progression: progression,
		bot:         bot,
		broadcaster: broadcaster,
	}
}

// CreateRoom opens a room with the issuing participant seated as X. A
// bot room seats the opponent immediately and starts playing.
func (that *gamePlayService) CreateRoom(ctx context.Context, roomID, participantID, name string, size int, roomType, botDifficulty string) (*entity.Room, error) {
	if roomID == "" {
		generated, err := pkg.GenerateRoomID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate room id: %w", err)
		}
		roomID = generated
	}

	creator, err := that.seatParticipant(ctx, participantID, name)
	if err != nil {
		return nil, err
	}

	room, err := that.rooms.CreateRoom(roomID, size, roomType, creator)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	if room.IsWithBot() {
		botPlayer := entity.NewBotPlayer(botParticipantID+":"+roomID, botDifficulty)
		if room, err = that.rooms.JoinRoom(roomID, botPlayer); err != nil {
			return nil, fmt.Errorf("failed to seat bot: %w", err)
		}
	}

	snapshot, err := that.rooms.Get(roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot room: %w", err)
	}

	that.broadcaster.RoomState(snapshot)

	return snapshot, nil
}

// JoinRoom seats the second participant as O and starts the match.
func (that *gamePlayService) JoinRoom(ctx context.Context, roomID, participantID, name string) (*entity.Room, error) {
	joiner, err := that.seatParticipant(ctx, participantID, name)
	if err != nil {
		return nil, err
	}

	if _, err = that.rooms.JoinRoom(roomID, joiner); err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	snapshot, err := that.rooms.Get(roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot room: %w", err)
	}

	that.broadcaster.PlayerJoined(snapshot, joiner)
	that.broadcaster.RoomState(snapshot)

	return snapshot, nil
}

// LeaveRoom removes the participant; the room is destroyed when nobody
// meaningful remains, otherwise the survivor is told the match is over.
func (that *gamePlayService) LeaveRoom(_ context.Context, roomID, participantID string) error {
	remaining, err := that.rooms.LeaveRoom(roomID, participantID)
	if err != nil {
		return fmt.Errorf("failed to leave room: %w", err)
	}

	if remaining == nil {
		that.logger.Info("room destroyed", "roomID", roomID)
		return nil
	}

	snapshot, err := that.rooms.Get(roomID)
	if err != nil {
		return fmt.Errorf("failed to snapshot room: %w", err)
	}

	that.broadcaster.OpponentLeft(snapshot, remaining.ID)

	return nil
}

// MakeTurn resolves one action inside the room's critical section, plays
// any bot replies in the same transaction, then settles progression and
// broadcasts the result.
func (that *gamePlayService) MakeTurn(ctx context.Context, roomID, participantID string, cell int, card entity.CardKind) (*entity.Room, error) {
	if card != "" {
		if _, err := that.cards.Get(card); err != nil {
			return nil, apperror.ErrCardUnavailable
		}
	}

	var snapshot *entity.Room
	outcomes := make([]*engine.Outcome, 0, 2)

	err := that.rooms.WithRoom(roomID, func(room *entity.Room) error {
		outcome, applyErr := engine.ApplyAction(ctx, room, participantID, cell, card, that.progression)
		if outcome != nil {
			outcomes = append(outcomes, outcome)
		}
		if applyErr != nil {
			return applyErr
		}

		if botErr := that.playBotReplies(ctx, room, &outcomes); botErr != nil {
			return botErr
		}

		snapshot = room.Clone()

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	that.settleOutcomes(ctx, snapshot, participantID, outcomes)
	that.broadcastResult(ctx, snapshot, participantID, outcomes)

	return snapshot, nil
}

func (that *gamePlayService) RoomState(roomID string) (*entity.Room, error) {
	snapshot, err := that.rooms.Get(roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return snapshot, nil
}

// playBotReplies lets a seated bot answer while it holds the turn. Runs
// under the same room lock as the human's action, so the pair of moves
// lands as one consistent update.
func (that *gamePlayService) playBotReplies(ctx context.Context, room *entity.Room, outcomes *[]*engine.Outcome) error {
	for room.IsPlaying() {
		botPlayer := room.ParticipantByMark(room.Turn)
		if botPlayer == nil || !botPlayer.IsBot() {
			return nil
		}

		cell, err := that.bot.ChooseCell(room, botPlayer.Mark, botPlayer.BotDifficulty)
		if err != nil {
			return fmt.Errorf("bot failed to choose cell: %w", err)
		}

		outcome, err := engine.ApplyAction(ctx, room, botPlayer.ID, cell, "", that.progression)
		if err != nil {
			return fmt.Errorf("bot failed to make turn: %w", err)
		}

		*outcomes = append(*outcomes, outcome)
	}

	return nil
}

// settleOutcomes persists the durable consequences of the resolved
// actions: armed protection/giant flags and their redemptions. Only runs
// for successful actions; a card consumed by a rejected action is spent
// with no effect, so the durable flags stay untouched and in step with
// the rolled-back room state.
func (that *gamePlayService) settleOutcomes(ctx context.Context, room *entity.Room, actorID string, outcomes []*engine.Outcome) {
	log := that.logger.With("method", "settleOutcomes")

	for _, outcome := range outcomes {
		switch outcome.CardUsed {
		case entity.CardProtection:
			if err := that.progression.SetProtection(ctx, actorID, true); err != nil {
				log.Error("failed to arm protection", "error", err)
			}
		case entity.CardGiant:
			if err := that.progression.SetGiant(ctx, actorID, true); err != nil {
				log.Error("failed to arm giant", "error", err)
			}
		}

		if outcome.ProtectionRedeemedBy != "" && !isBotID(room, outcome.ProtectionRedeemedBy) {
			if err := that.progression.SetProtection(ctx, outcome.ProtectionRedeemedBy, false); err != nil {
				log.Error("failed to clear protection", "error", err)
			}
		}

		if outcome.GiantRedeemedBy != "" && !isBotID(room, outcome.GiantRedeemedBy) {
			if err := that.progression.SetGiant(ctx, outcome.GiantRedeemedBy, false); err != nil {
				log.Error("failed to clear giant", "error", err)
			}
		}
	}
}

// broadcastResult pushes card-used and state or game-over notifications
// for a successfully resolved action. Only the submitting participant can
// have used a card; bots play plain moves.
func (that *gamePlayService) broadcastResult(ctx context.Context, room *entity.Room, actorID string, outcomes []*engine.Outcome) {
	finished := false

	for _, outcome := range outcomes {
		if outcome.CardUsed != "" {
			that.broadcaster.CardUsed(room, actorID, outcome.CardUsed)
		}
		if outcome.Finished {
			finished = true
		}
	}

	if !finished {
		that.broadcaster.RoomState(room)
		return
	}

	stats := that.recordMatchResult(ctx, room)
	that.broadcaster.GameOver(room, stats)
}

// recordMatchResult books win/loss/draw for both human participants and
// hands out streak rewards: protection at three wins in a row, giant at
// five.
func (that *gamePlayService) recordMatchResult(ctx context.Context, room *entity.Room) map[string]*entity.PlayerStats {
	log := that.logger.With("method", "recordMatchResult", "roomID", room.ID)

	refreshed := make(map[string]*entity.PlayerStats, len(room.Participants))

	for _, participant := range room.Participants {
		if participant.IsBot() {
			continue
		}

		outcome := entity.OutcomeDraw
		switch room.Winner {
		case participant.Mark:
			outcome = entity.OutcomeWin
		case entity.PlayerTie, "":
		default:
			outcome = entity.OutcomeLoss
		}

		stats, err := that.progression.RecordOutcome(ctx, participant.ID, outcome)
		if err != nil {
			log.Error("failed to record outcome", "participant", participant.ID, "error", err)
			continue
		}

		switch stats.Streak {
		case protectionStreak:
			if err = that.progression.GrantCard(ctx, participant.ID, entity.CardProtection); err != nil {
				log.Error("failed to grant protection card", "error", err)
			}
		case giantStreak:
			if err = that.progression.GrantCard(ctx, participant.ID, entity.CardGiant); err != nil {
				log.Error("failed to grant giant card", "error", err)
			}
		}

		refreshed[participant.ID] = stats
	}

	return refreshed
}

// seatParticipant builds a room-entry snapshot of a player: identity,
// current holdings and armed flags from the progression store.
func (that *gamePlayService) seatParticipant(ctx context.Context, participantID, name string) (*entity.Participant, error) {
	if participantID == "" {
		participantID = pkg.GenerateParticipantID()
	}

	holdings, err := that.progression.Holdings(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}

	stats, err := that.progression.Stats(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	return &entity.Participant{
		ID:         participantID,
		Name:       name,
		Holdings:   holdings,
		Protection: stats.Protection,
		Giant:      stats.Giant,
	}, nil
}

func isBotID(room *entity.Room, participantID string) bool {
	if room == nil {
		return false
	}

	participant := room.ParticipantByID(participantID)

	return participant != nil && participant.IsBot()
}
