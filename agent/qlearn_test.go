package agent

import (
	"testing"

	"civ/game"

	"github.com/stretchr/testify/require"
)

func researchWorld(options ...string) *fakeWorld {
	w := newFakeWorld()
	w.research = options
	w.snap = game.PlayerSnapshot{Turn: 1, Cities: 1, Units: 2}
	return w
}

func TestQLearnUpdate(t *testing.T) {
	q := newQLearn()
	q.alpha = 0.5
	q.gamma = 0.9
	o := testObservation(newFakeWorld())

	s := StateKey{Cities: 1, Category: Research}
	a := game.Research("agriculture")
	got := q.update(o, s, a, 10+q.gamma*0)
	require.Equal(t, 5.0, got, "Q should move half way to the target")
	require.Equal(t, 5.0, q.table.Get(s, a))
	require.Equal(t, 1, o.stats.QValueUpdates)
}

func TestQLearnSelection(t *testing.T) {
	actions := []game.Decision{game.Research("a"), game.Research("b"), game.Research("c"), game.Research("d")}

	t.Run("greedy when epsilon is zero", func(t *testing.T) {
		w := researchWorld("a", "b", "c", "d")
		q := newQLearn()
		q.epsilon = 0
		o := testObservation(w)
		key := o.encoder().Key(w.snap, Research, Context{})
		for i, v := range []float64{1, 5, 3, 5} {
			q.table.Set(key, actions[i], v)
		}

		for i := 0; i < 100; i++ {
			got := q.decide(o)
			require.Equal(t, []game.Decision{game.Research("b")}, got, "Should pick the first best action")
		}
		require.Equal(t, 100, o.stats.Exploitations)
		require.Zero(t, o.stats.Explorations)
	})

	t.Run("uniform when epsilon is one", func(t *testing.T) {
		w := researchWorld("a", "b", "c", "d")
		q := newQLearn()
		q.epsilon = 1
		o := testObservation(w)
		key := o.encoder().Key(w.snap, Research, Context{})
		q.table.Set(key, actions[0], 100)

		const trials = 4000
		counts := make(map[game.Decision]int)
		for i := 0; i < trials; i++ {
			counts[q.decide(o)[0]]++
		}
		for _, a := range actions {
			require.InDelta(t, trials/len(actions), counts[a], 200, "Action %s should be picked about a quarter of the time", a)
		}
		require.Equal(t, trials, o.stats.Explorations)
	})

	t.Run("unseen state falls back to random", func(t *testing.T) {
		q := newQLearn()
		key := StateKey{Category: Research}
		require.Nil(t, q.scores(key, actions))
		q.table.Set(key, actions[2], 0)
		require.Equal(t, []float64{0, 0, 0, 0}, q.scores(key, actions))
	})
}

func TestQLearnEndTurn(t *testing.T) {
	w := researchWorld("agriculture")
	q := newQLearn()
	q.epsilon = 0
	q.alpha = 0.5
	q.gamma = 0.9
	o := testObservation(w)

	first := q.decide(o)
	q.endTurn(o, 4)
	require.Zero(t, o.stats.QValueUpdates, "Nothing to credit after the first turn")

	w.snap.Turn = 2
	o.snap = w.snap
	q.decide(o)
	q.endTurn(o, 10)

	key := o.encoder().Key(game.PlayerSnapshot{Turn: 1, Cities: 1, Units: 2}, Research, Context{})
	require.Equal(t, 5.0, q.table.Get(key, first[0]), "Previous decision gets the new turn's reward")
	require.Equal(t, 1, o.stats.QValueUpdates)
}

func TestQLearnGameOver(t *testing.T) {
	q := newQLearn()
	q.gamma = 0.9
	o := testObservation(newFakeWorld())
	o.stats.GamesWon = 1

	a := game.Research("agriculture")
	for turn := 1; turn <= 3; turn++ {
		key := StateKey{Turn: turn, Category: Research}
		q.memory.Push(turnMemory{steps: []step{{key: key, action: a, actions: []game.Decision{a}}}})
	}
	q.gameOver(o, true)

	latest := q.table.Get(StateKey{Turn: 3, Category: Research}, a)
	middle := q.table.Get(StateKey{Turn: 2, Category: Research}, a)
	oldest := q.table.Get(StateKey{Turn: 1, Category: Research}, a)
	require.InDelta(t, 10.0, latest, 1e-9)
	require.InDelta(t, 0.9, middle/latest, 1e-9)
	require.InDelta(t, 0.81, oldest/latest, 1e-9, "Oldest turn should be discounted by gamma squared")
	require.InDelta(t, 0.3-0.0025, q.epsilon, 1e-9, "Epsilon should decay after a game")
}

func TestQLearnMemoryIsBounded(t *testing.T) {
	q := newQLearn()
	q.setHyperparameters(Hyperparameters{MemorySize: ptr(3)})
	o := testObservation(researchWorld("agriculture"))
	for i := 0; i < 5; i++ {
		q.decide(o)
	}
	require.Equal(t, 3, q.memory.Len())
	require.Equal(t, 3, *q.hyperparameters().MemorySize)
}
