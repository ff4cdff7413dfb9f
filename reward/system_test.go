package reward

import (
	"testing"

	"civ/game"

	"github.com/stretchr/testify/require"
)

func find(items []Item, t Type) (Item, bool) {
	for _, item := range items {
		if item.Type == t {
			return item, true
		}
	}
	return Item{}, false
}

func TestCalculate(t *testing.T) {
	t.Run("first call captures the baseline only", func(t *testing.T) {
		s := NewSystem(nil)
		items := s.Calculate(game.PlayerSnapshot{Turn: 3, Cities: 4, Gold: 100})
		require.Empty(t, items, "Baseline capture should not emit rewards")
	})

	t.Run("city founded early gets an expansion bonus", func(t *testing.T) {
		s := NewSystem(nil)
		s.Calculate(game.PlayerSnapshot{Turn: 9, Cities: 1})
		items := s.Calculate(game.PlayerSnapshot{Turn: 10, Cities: 2})

		founded, ok := find(items, CityFounded)
		require.True(t, ok)
		require.InDelta(t, 10.0, founded.Value, 1e-9)

		early, ok := find(items, EarlyExpansion)
		require.True(t, ok)
		require.InDelta(t, 8*0.9, early.Value, 1e-9, "Bonus should be scaled by 1 - turn/100")

		require.InDelta(t, 1+10+7.2, Total(items), 1e-9)
	})

	t.Run("no expansion bonus from turn 50", func(t *testing.T) {
		s := NewSystem(nil)
		s.Calculate(game.PlayerSnapshot{Turn: 49, Cities: 1})
		items := s.Calculate(game.PlayerSnapshot{Turn: 50, Cities: 2})
		_, ok := find(items, EarlyExpansion)
		require.False(t, ok)
	})

	t.Run("losses are penalized", func(t *testing.T) {
		s := NewSystem(nil)
		s.Calculate(game.PlayerSnapshot{Cities: 3, Gold: 5})
		items := s.Calculate(game.PlayerSnapshot{Cities: 1, UnitsLost: 2, Gold: -1})

		lost, ok := find(items, CityLost)
		require.True(t, ok)
		require.InDelta(t, -30.0, lost.Value, 1e-9)

		unitLost, ok := find(items, UnitLost)
		require.True(t, ok)
		require.InDelta(t, -8.0, unitLost.Value, 1e-9)

		neg, ok := find(items, NegativeGold)
		require.True(t, ok)
		require.InDelta(t, -5.0, neg.Value, 1e-9, "Negative gold is a flat penalty")
	})

	t.Run("advantage and tech lead", func(t *testing.T) {
		s := NewSystem(nil)
		s.Calculate(game.PlayerSnapshot{Technologies: 2, Gold: 10, Score: 10})
		items := s.Calculate(game.PlayerSnapshot{Technologies: 3, TechLead: 2, MilitaryRatio: 1.5, Gold: 30, Score: 14})

		for typ, want := range map[Type]float64{
			MilitaryAdvantage: 3 * 0.5,
			TechResearched:    8,
			TechLead:          10,
			GoldIncome:        2,
			ScoreIncrease:     2,
		} {
			item, ok := find(items, typ)
			require.True(t, ok, "Missing %s", typ)
			require.InDelta(t, want, item.Value, 1e-9, "Wrong value for %s", typ)
		}
	})

	t.Run("disabled rewards are not emitted", func(t *testing.T) {
		s := NewSystem(nil)
		require.True(t, s.Enable(TurnCompleted, false))
		s.Calculate(game.PlayerSnapshot{})
		require.Empty(t, s.Calculate(game.PlayerSnapshot{}))
		require.Zero(t, s.Value(TurnCompleted))
	})

	t.Run("later calls diff against the previous call", func(t *testing.T) {
		s := NewSystem(nil)
		s.Calculate(game.PlayerSnapshot{Cities: 1})
		s.Calculate(game.PlayerSnapshot{Cities: 2})
		items := s.Calculate(game.PlayerSnapshot{Cities: 2})
		_, ok := find(items, CityFounded)
		require.False(t, ok, "Unchanged city count should not be rewarded again")
	})
}

func TestSpecEditing(t *testing.T) {
	s := NewSystem(Spec{CityFounded: {Value: 20, Enabled: true}})
	require.Equal(t, 20.0, s.Value(CityFounded))
	require.Equal(t, 5.0, s.Value(CityGrowth), "Unset types keep their defaults")

	require.True(t, s.SetValue(CityGrowth, 7))
	require.Equal(t, 7.0, s.Value(CityGrowth))
	require.False(t, s.SetValue("teleport", 1))

	spec := DefaultSpec()
	require.Error(t, spec.Override(Spec{"teleport": {}}))
}

func TestSerialize(t *testing.T) {
	s := NewSystem(nil)
	s.SetValue(UnitKilled, 9)
	s.Enable(TileExplored, false)
	s.Calculate(game.PlayerSnapshot{Cities: 2, Turn: 5})

	data := s.Serialize()
	require.Len(t, data.Rewards, len(Types))
	require.NotNil(t, data.Previous)

	restored := Deserialize(data)
	require.Equal(t, s.Spec(), restored.Spec())

	// The restored baseline means the next call already diffs
	items := restored.Calculate(game.PlayerSnapshot{Cities: 3, Turn: 6})
	_, ok := find(items, CityFounded)
	require.True(t, ok)
}
