package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cardgridgames/cardgrid-backend/internal/entity"
)

//go:embed catalog.yml
var catalogYAML []byte

// cardCount is the fixed number of card kinds the engine dispatches on.
const cardCount = 11

var (
	ErrUnknownCard = errors.New("unknown card kind")
	ErrBadCatalog  = errors.New("malformed card catalog")
)

type catalogFile struct {
	Cards []entity.CardDefinition `yaml:"cards"`
}

// Catalog is the static registry of card definitions. Read-only after Load.
type Catalog struct {
	byKind map[entity.CardKind]entity.CardDefinition
	kinds  []entity.CardKind
}

// Load parses the embedded catalog and verifies it covers every card kind
// exactly once.
func Load() (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(catalogYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	if len(file.Cards) != cardCount {
		return nil, fmt.Errorf("%w: expected %d cards, got %d", ErrBadCatalog, cardCount, len(file.Cards))
	}

	byKind := make(map[entity.CardKind]entity.CardDefinition, len(file.Cards))
	kinds := make([]entity.CardKind, 0, len(file.Cards))

	for _, card := range file.Cards {
		if _, dup := byKind[card.Kind]; dup {
			return nil, fmt.Errorf("%w: duplicate kind %q", ErrBadCatalog, card.Kind)
		}

		byKind[card.Kind] = card
		kinds = append(kinds, card.Kind)
	}

	return &Catalog{byKind: byKind, kinds: kinds}, nil
}

// Get returns the definition for a card kind.
func (that *Catalog) Get(kind entity.CardKind) (entity.CardDefinition, error) {
	card, ok := that.byKind[kind]
	if !ok {
		return entity.CardDefinition{}, fmt.Errorf("%w: %q", ErrUnknownCard, kind)
	}

	return card, nil
}

// Kinds returns every card kind in catalog order.
func (that *Catalog) Kinds() []entity.CardKind {
	return that.kinds
}
