package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardgridgames/cardgrid-backend/internal/entity"
	"github.com/cardgridgames/cardgrid-backend/internal/repository"
	"github.com/cardgridgames/cardgrid-backend/testing/suite"
)

func TestHoldingsRepository(t *testing.T) {
	ctx, s := suite.New(t)
	repo := repository.NewHoldingsRepository(s.Storage)

	t.Run("Returns an empty map for an unknown participant", func(t *testing.T) {
		// When: reading holdings that were never saved
		holdings, err := repo.Get(ctx, "nobody")

		// Then
		require.NoError(t, err)
		assert.Empty(t, holdings)
	})

	t.Run("Reads a record seeded directly under the holdings key", func(t *testing.T) {
		// Given: a raw JSON blob written the way Save stores it
		s.Seed(ctx, "holdings:seeded", map[entity.CardKind]*entity.Holding{
			entity.CardTeleport: {Available: 2},
		})

		// When: reading through the repository
		loaded, err := repo.Get(ctx, "seeded")

		// Then
		require.NoError(t, err)
		require.Contains(t, loaded, entity.CardTeleport)
		assert.Equal(t, 2, loaded[entity.CardTeleport].Available)
	})

	t.Run("Round-trips holdings through the store", func(t *testing.T) {
		// Given: a participant with two kinds of cards
		saved := map[entity.CardKind]*entity.Holding{
			entity.CardBlock:  {Available: 2, Used: 1},
			entity.CardMirror: {Available: 1},
		}
		require.NoError(t, repo.Save(ctx, "player1", saved))

		// When: reading them back
		loaded, err := repo.Get(ctx, "player1")

		// Then
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		assert.Equal(t, 2, loaded[entity.CardBlock].Available)
		assert.Equal(t, 1, loaded[entity.CardBlock].Used)
		assert.Equal(t, 1, loaded[entity.CardMirror].Available)
	})

	t.Run("Save overwrites the previous record", func(t *testing.T) {
		// Given: an existing record
		require.NoError(t, repo.Save(ctx, "player2", map[entity.CardKind]*entity.Holding{
			entity.CardGiant: {Available: 1},
		}))

		// When: saving a different set
		require.NoError(t, repo.Save(ctx, "player2", map[entity.CardKind]*entity.Holding{
			entity.CardShield: {Available: 3},
		}))

		// Then: only the new set remains
		loaded, err := repo.Get(ctx, "player2")
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, 3, loaded[entity.CardShield].Available)
	})
}
