package game

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

// flatMap is an all-grassland map with an ocean column on the west edge.
func flatMap(width, height int) *Map {
	m := NewMap(width, height)
	for y := 0; y < height; y++ {
		m.At(Coord{0, y}).Terrain = Ocean
	}
	return m
}

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	rng := rand.New(rand.NewPCG(1, 2))
	return NewLocal(flatMap(20, 20), NewStandardRules(), 2, rng)
}

func TestStandardRules(t *testing.T) {
	rules := NewStandardRules()

	t.Run("ties go to the defender", func(t *testing.T) {
		a, d := rules.DetermineAttackOutcome([]int{6, 3}, []int{6, 2})
		require.Equal(t, 1, a, "Tied top dice should cost the attacker")
		require.Equal(t, 1, d, "Higher second die should cost the defender")
	})

	t.Run("dice scale with strength up to the cap", func(t *testing.T) {
		require.Equal(t, 1, rules.AttackDice(0))
		require.Equal(t, 2, rules.AttackDice(5))
		require.Equal(t, 3, rules.AttackDice(50), "Attack dice should be capped")
		require.Equal(t, 2, rules.DefendDice(50), "Defend dice should be capped")
	})
}

func TestNewLocal(t *testing.T) {
	l := newTestLocal(t)

	require.Equal(t, []int{1, 2}, l.Players())
	for _, p := range l.Players() {
		snap, ok := l.Snapshot(p)
		require.True(t, ok)
		require.Equal(t, 1, snap.Cities, "Each player should start with a capital")
		require.Equal(t, 2, snap.Units, "Each player should start with a settler and a warrior")
	}
	require.Equal(t, -1, l.Winner(), "Game should start undecided")

	_, ok := l.Snapshot(3)
	require.False(t, ok, "Unknown players have no snapshot")
}

func TestLocalExecute(t *testing.T) {
	t.Run("research sets the current technology once", func(t *testing.T) {
		l := newTestLocal(t)

		require.Contains(t, l.ResearchOptions(1), "agriculture")
		require.NoError(t, l.Execute(1, Research("agriculture")))
		require.True(t, l.Researching(1))

		err := l.Execute(1, Research("archery"))
		require.True(t, errors.Is(err, ErrIllegal), "Second research order should be illegal")
	})

	t.Run("settler founds a city and is consumed", func(t *testing.T) {
		l := newTestLocal(t)
		var settler Unit
		for _, u := range l.Units(1) {
			if u.IsSettler() {
				settler = u
			}
		}
		moves := l.LegalMoves(settler)
		require.NotEmpty(t, moves)
		require.NoError(t, l.Execute(1, Move(settler.ID, moves[0])))

		// The settler spent its only move point
		err := l.Execute(1, Settle(settler.ID))
		require.True(t, errors.Is(err, ErrIllegal))

		l.EndTurn(1)
		require.NoError(t, l.Execute(1, Settle(settler.ID)))
		snap, _ := l.Snapshot(1)
		require.Equal(t, 2, snap.Cities)
		require.Equal(t, 1, snap.Units)
	})

	t.Run("production completes after enough turns", func(t *testing.T) {
		l := newTestLocal(t)
		capital := l.Cities(1)[0]
		require.NoError(t, l.Execute(1, Production(capital.ID, Item{Kind: UnitItem, ID: "warrior"})))

		for i := 0; i < 20 && l.Cities(1)[0].Producing; i++ {
			l.EndTurn(1)
		}
		snap, _ := l.Snapshot(1)
		require.Equal(t, 3, snap.Units, "A warrior should have been trained")
	})

	t.Run("unknown decisions are rejected", func(t *testing.T) {
		l := newTestLocal(t)
		err := l.Execute(1, Decision{Kind: DecisionKind(42)})
		require.True(t, errors.Is(err, ErrIllegal))
	})
}

func TestLocalQueries(t *testing.T) {
	l := newTestLocal(t)

	t.Run("research options respect prerequisites", func(t *testing.T) {
		options := l.ResearchOptions(1)
		require.Contains(t, options, "agriculture")
		require.NotContains(t, options, "pottery", "Pottery requires agriculture")
	})

	t.Run("queries are stable across calls", func(t *testing.T) {
		require.Equal(t, l.Units(1), l.Units(1))
		require.Equal(t, l.ProductionOptions(l.Cities(1)[0]), l.ProductionOptions(l.Cities(1)[0]))
	})

	t.Run("military ratio is one when forces are even", func(t *testing.T) {
		snap, _ := l.Snapshot(1)
		require.InDelta(t, 1.0, snap.MilitaryRatio, 1e-9)
		require.Equal(t, 0, snap.TechLead)
	})
}

func TestDecisionKindText(t *testing.T) {
	for k := ResearchDecision; k <= AttackDecision; k++ {
		text, err := k.MarshalText()
		require.NoError(t, err)

		var got DecisionKind
		require.NoError(t, got.UnmarshalText(text))
		require.Equal(t, k, got)
	}

	var k DecisionKind
	require.Error(t, k.UnmarshalText([]byte("teleport")))
}
