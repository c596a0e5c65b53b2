package entity

const (
	BotDifficultyRandom    = "random"
	BotDifficultyHeuristic = "heuristic"
	BotDifficultyOptimal   = "optimal"
)

// Participant is one seat in a room. Holdings and the armed flags are a
// snapshot taken from the progression store at room-entry time; the store
// stays canonical.
type Participant struct {
	ID         string                `json:"id"`
	Name       string                `json:"name,omitempty"`
	Mark       string                `json:"mark,omitempty"`
	Holdings   map[CardKind]*Holding `json:"holdings,omitempty"`
	Protection bool                  `json:"protection,omitempty"`
	Giant      bool                  `json:"giant,omitempty"`

	Bot           bool   `json:"bot,omitempty"`
	BotDifficulty string `json:"bot_difficulty,omitempty"`
}

func (that *Participant) IsBot() bool {
	return that.Bot
}

// Holds reports whether the participant has at least one unused card of
// the given kind in its room-entry snapshot.
func (that *Participant) Holds(kind CardKind) bool {
	holding, ok := that.Holdings[kind]
	return ok && holding.Available > 0
}

func NewBotPlayer(id, difficulty string) *Participant {
	if difficulty == "" {
		difficulty = BotDifficultyHeuristic
	}

	return &Participant{
		ID:            id,
		Name:          "bot",
		Bot:           true,
		BotDifficulty: difficulty,
	}
}

// PlayerStats is the durable per-player progression record.
type PlayerStats struct {
	Wins       int  `json:"wins"`
	Losses     int  `json:"losses"`
	Draws      int  `json:"draws"`
	Streak     int  `json:"streak"`
	Protection bool `json:"protection,omitempty"`
	Giant      bool `json:"giant,omitempty"`
}

// Outcome of one finished match for one player.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeDraw Outcome = "draw"
)

// User is an account stored in the relational user store.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
