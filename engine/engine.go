package engine

import (
	"civ/agent"
	"civ/game"
	"civ/meta"
)

// Engine drives a game between agents, one player turn at a time.
type Engine struct {
	Sim    game.Sim
	Agents []*agent.Agent // Agents[i] plays Sim.Players()[i]

	maxTurns    int
	startIndex  int
	withMetrics bool
	seen        map[int]*progress
}

// progress is what the engine last reported to a player's agent.
type progress struct {
	researched int
	cities     map[int]bool
	battlesWon int
	unitsLost  int
}

type Option func(e *Engine)

func WithMaxTurns(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxTurns = n
		}
	}
}

// WithStartingPlayer sets the player that moves first each round.
func WithStartingPlayer(player int) Option {
	return func(e *Engine) {
		for i, p := range e.Sim.Players() {
			if p == player {
				e.startIndex = i
			}
		}
	}
}

func WithMetrics() Option {
	return func(e *Engine) { e.withMetrics = true }
}

// New attaches agents to the players of sim in order. It panics when there are fewer than
// two agents or when they do not match the players.
func New(sim game.Sim, agents []*agent.Agent, options ...Option) *Engine {
	players := sim.Players()
	if len(players) != len(agents) {
		panic("number of players does not match number of agents")
	}
	if len(agents) < 2 {
		panic("need at least two players")
	}

	e := &Engine{
		Sim:      sim,
		Agents:   agents,
		maxTurns: meta.MAX_TURNS,
		seen:     make(map[int]*progress),
	}
	for _, option := range options {
		option(e)
	}

	for i, p := range players {
		agents[i].Attach(sim, p)
		e.seen[p] = e.progressOf(p)
	}
	return e
}

func (e *Engine) progressOf(player int) *progress {
	pr := &progress{
		researched: len(e.Sim.Researched(player)),
		cities:     make(map[int]bool),
	}
	for _, c := range e.Sim.Cities(player) {
		pr.cities[c.ID] = true
	}
	if snap, ok := e.Sim.Snapshot(player); ok {
		pr.battlesWon = snap.BattlesWon
		pr.unitsLost = snap.UnitsLost
	}
	return pr
}
