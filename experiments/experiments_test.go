package experiments

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"civ/agent"
	"civ/config"
	"civ/experiments/metrics"

	"github.com/stretchr/testify/require"
)

func smallGame() config.Game {
	return config.Game{Width: 16, Height: 12, MaxTurns: 12, Games: 2, Seed: 5}
}

func TestRoundRobin(t *testing.T) {
	require.Equal(t, [][2]int{{0, 1}, {0, 2}, {1, 2}}, RoundRobin(3))
	require.Empty(t, RoundRobin(1))
}

func TestRunner(t *testing.T) {
	learner := agent.New(agent.KindQLearn, agent.WithName("learner"), agent.WithSeed(1))
	baseline := agent.New(agent.KindBasic, agent.WithName("baseline"), agent.WithSeed(2))
	r := NewRunner("test", smallGame(), learner, baseline)

	res, err := r.Run(context.Background(), RoundRobin(2))
	require.NoError(t, err)

	t.Run("records every game", func(t *testing.T) {
		require.Len(t, res.Games, 2)
		require.Equal(t, 1, res.Games[0].StartingPlayer)
		require.Equal(t, 2, res.Games[1].StartingPlayer, "Starting player should alternate")
		require.NotEmpty(t, res.Turns)

		require.Len(t, res.Agents, 2)
		for _, a := range res.Agents {
			require.Equal(t, 2, a.Games)
		}
		require.Equal(t, 2, res.Agents[0].Wins+res.Agents[1].Wins)
	})

	t.Run("agents keep learning across games", func(t *testing.T) {
		require.Equal(t, 2, learner.Stats.GamesWon+learner.Stats.GamesLost)
		require.Positive(t, learner.Stats.QValueUpdates)
	})

	t.Run("throughput covers each agent's turns", func(t *testing.T) {
		throughput := MeasureThroughput(res)
		total := 0
		for _, tp := range throughput {
			total += tp.Turns
		}
		require.Equal(t, len(res.Turns), total)
	})

	t.Run("results are written", func(t *testing.T) {
		w, err := metrics.NewWriter(t.TempDir(), "test")
		require.NoError(t, err)
		require.NoError(t, Write(w, res, true))
		for _, f := range []string{"agent_records.csv", "game_records.csv", "turn_records.csv", "rewards.html"} {
			_, err := os.Stat(filepath.Join(w.Dir(), f))
			require.NoError(t, err, f)
		}
	})

	t.Run("invalid matchups", func(t *testing.T) {
		_, err := r.Run(context.Background(), [][2]int{{0, 0}})
		require.Error(t, err)
		_, err = r.Run(context.Background(), [][2]int{{0, 5}})
		require.Error(t, err)
	})
}
