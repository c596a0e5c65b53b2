package entity

// CardKind identifies one of the fixed power-up cards.
type CardKind string

const (
	CardBlock      CardKind = "block"
	CardDoubleMove CardKind = "double_move"
	CardSwapCell   CardKind = "swap_cell"
	CardProtection CardKind = "protection"
	CardGiant      CardKind = "giant"
	CardShield     CardKind = "shield"
	CardWildcard   CardKind = "wildcard"
	CardTeleport   CardKind = "teleport"
	CardTimeFreeze CardKind = "time_freeze"
	CardMirror     CardKind = "mirror"
	CardReset      CardKind = "reset"
)

const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// CardDefinition is the static description of one card kind.
// Definitions are read-only after the catalog is loaded.
type CardDefinition struct {
	Kind        CardKind `yaml:"kind" json:"kind"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Rarity      string   `yaml:"rarity" json:"rarity"`
	Effect      string   `yaml:"effect" json:"effect"`
}

// Holding is one participant's counters for a single card kind.
// Available is decremented on use and never goes negative.
type Holding struct {
	Available int `json:"available"`
	Used      int `json:"used"`
}
