package experiments

import (
	"context"
	"fmt"
	"math/rand/v2"

	"civ/agent"
	"civ/config"
	"civ/engine"
	"civ/experiments/metrics"
	"civ/game"

	"github.com/rs/zerolog/log"
)

// Runner plays matchups between a roster of agents. Agents are shared across games, so
// learning policies keep what they learned from one game to the next.
type Runner struct {
	Name   string
	Agents []*agent.Agent
	Game   config.Game
}

// Result holds everything recorded during an experiment. Agent record IDs are roster
// indices plus one.
type Result struct {
	Agents []metrics.AgentRecord
	Games  []metrics.GameRecord
	Turns  []metrics.TurnRecord
}

func NewRunner(name string, game config.Game, agents ...*agent.Agent) *Runner {
	return &Runner{Name: name, Agents: agents, Game: game}
}

// RoundRobin pairs every agent of a roster of n with every other one.
func RoundRobin(n int) [][2]int {
	var matchUps [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			matchUps = append(matchUps, [2]int{i, j})
		}
	}
	return matchUps
}

// Run plays Game.Games games per matchup, alternating the starting player. Matchups hold
// roster indices.
func (r *Runner) Run(ctx context.Context, matchUps [][2]int) (Result, error) {
	res := Result{Agents: make([]metrics.AgentRecord, len(r.Agents))}
	for i, a := range r.Agents {
		res.Agents[i] = metrics.AgentRecord{ID: i + 1, Name: a.Name, Kind: string(a.Kind())}
	}
	for _, m := range matchUps {
		if m[0] == m[1] || m[0] < 0 || m[1] < 0 || m[0] >= len(r.Agents) || m[1] >= len(r.Agents) {
			return res, fmt.Errorf("invalid matchup %v for %d agents", m, len(r.Agents))
		}
	}

	log.Info().Msgf("starting %s experiment...", r.Name)

	count := 0
	for mi, m := range matchUps {
		agent1, agent2 := r.Agents[m[0]], r.Agents[m[1]]
		log.Info().Msgf("starting matchup %d of %d between %s and %s...", mi+1, len(matchUps), agent1.Name, agent2.Name)

		for i := 0; i < r.Game.Games; i++ {
			count++
			gameMetric, turnMetrics, err := r.runGame(ctx, count, agent1, agent2)
			if err != nil {
				return res, fmt.Errorf("failed to run game %d: %w", count, err)
			}
			res.Games = append(res.Games, metrics.GameRecord{
				ID:         count,
				Agent1:     m[0] + 1,
				Agent2:     m[1] + 1,
				GameMetric: gameMetric,
			})
			for _, tm := range turnMetrics {
				res.Turns = append(res.Turns, metrics.TurnRecord{Game: count, TurnMetric: tm})
			}
			res.Agents[m[0]].AddGame(gameMetric.Winner == 1, gameMetric.Scores[1])
			res.Agents[m[1]].AddGame(gameMetric.Winner == 2, gameMetric.Scores[2])

			log.Info().Msgf("completed matchup %d of %d game %d of %d with winner: player %d",
				mi+1, len(matchUps), i+1, r.Game.Games, gameMetric.Winner)
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(matchUps))
	}

	log.Info().Msgf("completed %s experiment", r.Name)
	return res, nil
}

// runGame plays one game on a fresh map. Odd games are started by player 1.
func (r *Runner) runGame(ctx context.Context, n int, agent1, agent2 *agent.Agent) (metrics.GameMetric, []metrics.TurnMetric, error) {
	rng := rand.New(rand.NewPCG(r.Game.Seed, uint64(n)))
	m := game.GenerateMap(r.Game.Width, r.Game.Height, rng)
	sim := game.NewLocal(m, game.NewStandardRules(), 2, rng)

	starting := 1
	if n%2 == 0 {
		starting = 2
	}
	e := engine.New(sim, []*agent.Agent{agent1, agent2},
		engine.WithMaxTurns(r.Game.MaxTurns),
		engine.WithStartingPlayer(starting),
		engine.WithMetrics(),
	)
	return e.Run(ctx)
}

// Write stores the records of res and, when chart is set, a reward chart per agent.
func Write(w *metrics.Writer, res Result, chart bool) error {
	if err := w.WriteAgentRecords(res.Agents); err != nil {
		return err
	}
	log.Info().Msg("stored agent records")

	if err := w.WriteGameRecords(res.Games); err != nil {
		return err
	}
	log.Info().Msg("stored game records")

	if err := w.WriteTurnRecords(res.Turns); err != nil {
		return err
	}
	log.Info().Msg("stored turn records")

	if !chart {
		return nil
	}
	var series []metrics.RewardSeries
	for _, a := range res.Agents {
		series = append(series, metrics.RewardSeries{
			Name:    a.Name,
			Rewards: metrics.AverageTurnRewards(res.Turns, playerOf(res.Games, a.ID)),
		})
	}
	if err := w.WriteRewardChart("rewards", series...); err != nil {
		return err
	}
	log.Info().Msg("stored reward chart")
	return nil
}

// playerOf maps a game id to the player an agent record played in it, or -1.
func playerOf(games []metrics.GameRecord, agentID int) func(game int) int {
	byID := make(map[int]metrics.GameRecord, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}
	return func(id int) int {
		switch g := byID[id]; agentID {
		case g.Agent1:
			return 1
		case g.Agent2:
			return 2
		}
		return -1
	}
}
