package agent

import (
	"testing"

	"civ/game"

	"github.com/stretchr/testify/require"
)

func TestEncoder(t *testing.T) {
	w := newFakeWorld()
	w.snap = game.PlayerSnapshot{Turn: 19, Cities: 2, Units: 4, Technologies: 3, Gold: 149, Science: 5, Culture: 20}
	city := game.City{ID: 7, Population: 3, Food: 4, Production: 2, Buildings: []string{"granary"}, Health: 100}
	unit := game.Unit{ID: 9, Kind: "settler", Location: game.Coord{X: 5, Y: 2}, Health: 100, MovementPoints: 1, CanMove: true}
	w.tiles[unit.Location] = game.Tile{Location: unit.Location, Terrain: game.Grassland}
	w.enemies = []game.Target{{ID: 30, Kind: game.UnitTarget, Location: game.Coord{X: 6, Y: 2}}}
	enc := Encoder{World: w, Player: 1}

	contexts := map[Category]Context{
		Research:   {},
		Production: {City: &city},
		UnitAction: {Unit: &unit},
	}

	t.Run("deterministic", func(t *testing.T) {
		for c, ctx := range contexts {
			require.Equal(t, enc.Key(w.snap, c, ctx), enc.Key(w.snap, c, ctx), "Key should be stable for %s", c)
			require.Equal(t, enc.Vector(w.snap, c, ctx), enc.Vector(w.snap, c, ctx), "Vector should be stable for %s", c)
		}
	})

	t.Run("vectors have the category arity", func(t *testing.T) {
		require.Equal(t, 10, Research.Arity())
		require.Equal(t, 15, Production.Arity())
		require.Equal(t, 20, UnitAction.Arity())
		for c, ctx := range contexts {
			require.Len(t, enc.Vector(w.snap, c, ctx), c.Arity(), "Wrong arity for %s", c)
			require.Len(t, enc.Vector(w.snap, c, Context{}), c.Arity(), "Missing context should be padded for %s", c)
		}
	})

	t.Run("key buckets gold and turn", func(t *testing.T) {
		key := enc.Key(w.snap, Production, contexts[Production])
		require.Equal(t, StateKey{Cities: 2, Units: 4, Tech: 3, Gold: 100, Turn: 10, Category: Production, Entity: 7}, key)
		require.Equal(t, "cities=2 units=4 tech=3 gold=100 turn=10|production#7", key.String())

		richer := w.snap
		richer.Gold = 120
		require.Equal(t, key, enc.Key(richer, Production, contexts[Production]), "Gold within a bucket should share a key")
	})

	t.Run("unit features", func(t *testing.T) {
		v := enc.Vector(w.snap, UnitAction, contexts[UnitAction])
		require.InDelta(t, 0.1, v[0], 1e-9, "Cities over 10")
		require.InDelta(t, 0.298, v[3], 1e-9, "Gold over 500")
		require.InDelta(t, 0.5, v[7+5], 1e-9, "X over map width")
		require.Equal(t, 1.0, v[7+9], "Settler on open grassland can settle")
		require.InDelta(t, 0.2, v[7+11], 1e-9, "One enemy nearby")
	})

	t.Run("features are clamped to the unit interval", func(t *testing.T) {
		broke, rich := w.snap, w.snap
		broke.Gold = -80
		rich.Gold = 2000
		rich.Turn = 400
		require.Equal(t, 0.0, enc.Vector(broke, Research, Context{})[3])
		v := enc.Vector(rich, Research, Context{})
		require.Equal(t, 1.0, v[3])
		require.Equal(t, 1.0, v[4])
	})
}
