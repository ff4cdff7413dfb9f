package engine

import (
	"context"
	"errors"
	"time"

	"civ/agent"
	"civ/experiments/metrics"
	"civ/game"

	"github.com/rs/zerolog/log"
)

// Run plays rounds until a player is eliminated or the turn cap is reached, then hands the
// result to every agent. ctx is checked between turns only.
func (e *Engine) Run(ctx context.Context) (metrics.GameMetric, []metrics.TurnMetric, error) {
	players := e.Sim.Players()
	order := append(append([]int{}, players[e.startIndex:]...), players[:e.startIndex]...)
	gameMetric := metrics.GameMetric{
		StartingPlayer: order[0],
		StartTime:      time.Now(),
		Scores:         make(map[int]float64),
	}
	var turnMetrics []metrics.TurnMetric
	collector := metrics.NewDummyCollector()
	if e.withMetrics {
		collector = metrics.NewCollector()
	}

	log.Info().Msgf("player %d is starting", order[0])

	for e.Sim.Winner() == -1 && e.Sim.Turn() < e.maxTurns {
		for _, p := range order {
			if err := ctx.Err(); err != nil {
				return gameMetric, turnMetrics, err
			}
			if !e.playTurn(p, collector) {
				continue
			}
			if e.withMetrics {
				turnMetrics = append(turnMetrics, collector.Complete())
			}
		}
		e.Sim.AdvanceTurn()
	}

	winner := e.Sim.Winner()
	if winner == -1 {
		log.Info().Msgf("stopped after %d turns, deciding by score", e.Sim.Turn())
		winner = e.leader()
	}
	for _, p := range players {
		gameMetric.Scores[p] = e.Sim.Score(p)
	}
	gameMetric.Winner = winner
	gameMetric.TotalTurns = e.Sim.Turn()
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)

	for i, p := range players {
		snap, _ := e.Sim.Snapshot(p)
		e.Agents[i].LearnFromGameResult(p == winner, snap)
	}
	log.Info().Msgf("game over after %d turns with winner: player %d", gameMetric.TotalTurns, winner)

	return gameMetric, turnMetrics, nil
}

// playTurn runs one player's turn. It reports false for eliminated players.
func (e *Engine) playTurn(player int, collector metrics.Collector) bool {
	if len(e.Sim.Cities(player)) == 0 {
		return false
	}
	a := e.agentOf(player)
	collector.Start(e.Sim.Turn(), player)

	a.OnTurnStart()
	for _, d := range a.MakeDecisions() {
		collector.AddDecision()
		if err := e.Sim.Execute(player, d); err != nil {
			if !errors.Is(err, game.ErrIllegal) {
				log.Warn().Err(err).Msgf("player %d decision failed", player)
			} else {
				log.Debug().Err(err).Msgf("player %d skipped decision %s", player, d)
			}
			collector.AddSkipped()
			continue
		}
		collector.AddExecuted()
	}
	e.Sim.EndTurn(player)
	e.notify(player, a)
	a.OnTurnEnd()

	if n := len(a.Stats.Rewards); n > 0 {
		collector.SetReward(a.Stats.Rewards[n-1].Total)
	}
	return true
}

// notify reports research, new cities and combat since the player's last turn.
func (e *Engine) notify(player int, a *agent.Agent) {
	last := e.seen[player]
	now := e.progressOf(player)

	for _, tech := range e.Sim.Researched(player)[last.researched:] {
		a.OnResearchComplete(tech)
	}
	for _, c := range e.Sim.Cities(player) {
		if !last.cities[c.ID] {
			a.OnCityFounded(c)
		}
	}
	for i := last.battlesWon; i < now.battlesWon; i++ {
		a.OnBattleResult(true)
	}
	for i := last.unitsLost; i < now.unitsLost; i++ {
		a.OnBattleResult(false)
	}
	e.seen[player] = now
}

func (e *Engine) agentOf(player int) *agent.Agent {
	for i, p := range e.Sim.Players() {
		if p == player {
			return e.Agents[i]
		}
	}
	panic("no agent for player")
}

// leader returns the highest scoring player, the earliest on ties.
func (e *Engine) leader() int {
	best, bestScore := -1, 0.0
	for _, p := range e.Sim.Players() {
		if s := e.Sim.Score(p); best == -1 || s > bestScore {
			best, bestScore = p, s
		}
	}
	return best
}
