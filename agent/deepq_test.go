package agent

import (
	"testing"

	"civ/game"

	"github.com/stretchr/testify/require"
)

func TestDeepQExperience(t *testing.T) {
	w := researchWorld("agriculture", "pottery")
	d := newDeepQ()
	o := testObservation(w)

	decisions := d.decide(o)
	require.Len(t, decisions, 1)
	require.Equal(t, 1, d.buffer.Len())

	e := d.buffer.At(0)
	require.True(t, e.Pending)
	require.Len(t, e.State, Research.Arity())
	require.Len(t, e.Action, 2, "One-hot sized to the action space")
	require.Equal(t, 1.0, e.Action[0]+e.Action[1])

	w.snap.Technologies = 1
	o.snap = w.snap
	d.endTurn(o, 7)

	e = d.buffer.At(0)
	require.False(t, e.Pending)
	require.Equal(t, 7.0, e.Reward)
	require.Equal(t, o.encoder().Vector(w.snap, Research, Context{}), e.NextState)
	require.Zero(t, o.stats.TrainingEpisodes, "Not enough experience to learn yet")
}

func TestDeepQLearning(t *testing.T) {
	w := researchWorld("agriculture", "pottery", "archery")
	d := newDeepQ()
	d.setHyperparameters(Hyperparameters{BatchSize: ptr(8)})
	o := testObservation(w)

	for turn := 0; turn < 8; turn++ {
		d.decide(o)
		d.endTurn(o, 1)
	}
	require.Equal(t, 1, o.stats.TrainingEpisodes, "Learning starts once a full batch is buffered")

	d.gameOver(o, false)
	for _, e := range d.buffer.Items() {
		require.Equal(t, -49.0, e.Reward, "Loss penalty is added to every experience")
	}
	require.Equal(t, 2, o.stats.TrainingEpisodes)
}

func TestDeepQScores(t *testing.T) {
	o := testObservation(newFakeWorld())
	d := newDeepQ()

	t.Run("random without a model", func(t *testing.T) {
		scores := d.scores(o.rng, Research, make([]float64, Research.Arity()), 3)
		require.Len(t, scores, 3)
		for _, s := range scores {
			require.GreaterOrEqual(t, s, 0.0)
			require.Less(t, s, 1.0)
		}
	})

	t.Run("extra actions are padded", func(t *testing.T) {
		d.initModels(o.rng)
		state := make([]float64, Research.Arity())
		predicted := d.models[Research].Predict(state)
		scores := d.scores(o.rng, Research, state, 8)
		require.Len(t, scores, 8)
		require.Equal(t, predicted, scores[:5])
	})

	t.Run("failed builds fall back to random", func(t *testing.T) {
		broken := newDeepQ()
		broken.alpha = 0
		broken.initModels(o.rng)
		require.Empty(t, broken.models)
		require.Len(t, broken.scores(o.rng, UnitAction, nil, 4), 4)
	})
}

func TestDeepQIgnoresOversizedActions(t *testing.T) {
	o := testObservation(newFakeWorld())
	d := newDeepQ()
	d.initModels(o.rng)

	state := make([]float64, Research.Arity())
	action := make([]float64, 7)
	action[6] = 1
	before := d.models[Research].Predict(state)

	d.train(Research, []Experience{{State: state, Action: action, Category: Research, Reward: 50, NextState: state}})
	require.InDeltaSlice(t, before, d.models[Research].Predict(state), 1e-9, "Columns past the output width are not trained")
}

func TestDeepQHyperparameters(t *testing.T) {
	d := newDeepQ()
	d.setHyperparameters(Hyperparameters{Alpha: ptr(0.01), BufferSize: ptr(4), Gamma: ptr(0.5)})
	h := d.hyperparameters()
	require.Equal(t, 0.01, *h.Alpha)
	require.Equal(t, 4, *h.BufferSize)
	require.Equal(t, 0.5, *h.Gamma)
	require.Equal(t, 32, *h.BatchSize)
	require.Nil(t, h.MemorySize)
	require.Equal(t, 4, d.buffer.Cap())

	o := testObservation(researchWorld("agriculture"))
	for i := 0; i < 10; i++ {
		d.decide(o)
	}
	require.Equal(t, 4, d.buffer.Len())
	require.Equal(t, []game.Decision{game.Research("agriculture")}, d.decide(o))
}
