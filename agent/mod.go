// Package agent holds the decision and learning engine that plays one player of a game:
// action enumeration, state encoding, the three policies and reward driven learning.
package agent

import (
	"fmt"
	"math/rand/v2"

	"civ/game"
)

// Kind tags the policy an agent runs.
type Kind string

const (
	KindBasic  Kind = "basic"
	KindQLearn Kind = "qlearn"
	KindDeepQ  Kind = "deepq"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindBasic, KindQLearn, KindDeepQ:
		return k, nil
	}
	return "", fmt.Errorf("unknown agent type %q", s)
}

// Policy picks the decisions of a turn and learns from the rewards that follow. The set of
// policies is closed; use New with a Kind to get one.
type Policy interface {
	Kind() Kind
	decide(o *observation) []game.Decision
	endTurn(o *observation, total float64)
	gameOver(o *observation, won bool)
	newGame()
	hyperparameters() Hyperparameters
	setHyperparameters(h Hyperparameters)
}

// Hyperparameters are the tunable learning settings. Nil fields are left unchanged when
// applied and omitted when they do not apply to a policy.
type Hyperparameters struct {
	Alpha      *float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	Gamma      *float64 `json:"gamma,omitempty" yaml:"gamma,omitempty"`
	Epsilon    *float64 `json:"epsilon,omitempty" yaml:"epsilon,omitempty"`
	BatchSize  *int     `json:"batchSize,omitempty" yaml:"batchSize,omitempty"`
	BufferSize *int     `json:"bufferSize,omitempty" yaml:"bufferSize,omitempty"`
	MemorySize *int     `json:"memorySize,omitempty" yaml:"memorySize,omitempty"`
}

// observation is what a policy sees during one call: the world, the player's snapshot
// and the agent's randomness and counters. turnsPlayed counts the current game only.
type observation struct {
	world       game.World
	player      int
	snap        game.PlayerSnapshot
	turnsPlayed int
	rng         *rand.Rand
	stats       *Stats
}

func (o *observation) builder() Builder { return Builder{World: o.world, Player: o.player} }
func (o *observation) encoder() Encoder { return Encoder{World: o.world, Player: o.player} }

// point is one decision to make: its category, the entity it concerns and the legal actions.
type point struct {
	category Category
	context  Context
	actions  []game.Decision
}

// decisionPoints lists the decisions of the turn in a fixed order: research when idle,
// production for each idle city, then an order for each unit that can still move.
// Points without legal actions are dropped.
func (o *observation) decisionPoints() []point {
	b := o.builder()
	var points []point
	add := func(c Category, ctx Context) {
		if actions := b.ActionsFor(c, ctx); len(actions) > 0 {
			points = append(points, point{category: c, context: ctx, actions: actions})
		}
	}

	if !o.world.Researching(o.player) {
		add(Research, Context{})
	}
	for _, city := range o.world.Cities(o.player) {
		if !city.Producing {
			add(Production, Context{City: &city})
		}
	}
	for _, unit := range o.world.Units(o.player) {
		if unit.CanMove {
			add(UnitAction, Context{Unit: &unit})
		}
	}
	return points
}

// selectAction is epsilon-greedy over n actions. scores is only consulted when exploiting
// and may return nil to ask for a random pick. Ties go to the earliest action.
func selectAction(o *observation, epsilon float64, n int, scores func() []float64) int {
	if o.rng.Float64() < epsilon {
		o.stats.Explorations++
		return o.rng.IntN(n)
	}
	o.stats.Exploitations++
	values := scores()
	if len(values) == 0 {
		return o.rng.IntN(n)
	}
	best := 0
	for i := 1; i < n && i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

// decayEpsilon lowers exploration as more games are played.
func decayEpsilon(stats *Stats) float64 {
	games := stats.GamesWon + stats.GamesLost
	return max(0.05, 0.3-(float64(games)/100)*0.25)
}

func terminalReward(won bool) float64 {
	if won {
		return 100
	}
	return -50
}

func ptr[T any](v T) *T { return &v }
