package agent

import (
	"math/rand/v2"

	"civ/game"
	"civ/reward"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TurnReward is the reward history entry of one turn.
type TurnReward struct {
	Turn      int           `json:"turn"`
	Total     float64       `json:"total"`
	Breakdown []reward.Item `json:"breakdown"`
}

type Stats struct {
	Decisions         int          `json:"decisions"`
	CityFounded       int          `json:"cityFounded"`
	BattlesWon        int          `json:"battlesWon"`
	BattlesLost       int          `json:"battlesLost"`
	ResearchCompleted int          `json:"researchCompleted"`
	TurnsPlayed       int          `json:"turnsPlayed"`
	Explorations      int          `json:"explorations"`
	Exploitations     int          `json:"exploitations"`
	QValueUpdates     int          `json:"qValueUpdates"`
	TrainingEpisodes  int          `json:"trainingEpisodes"`
	GamesWon          int          `json:"gamesWon"`
	GamesLost         int          `json:"gamesLost"`
	Rewards           []TurnReward `json:"rewards"`
}

// Agent plays one player. Attach it to a world, then per turn call OnTurnStart,
// MakeDecisions and OnTurnEnd, and LearnFromGameResult once the game is over.
type Agent struct {
	ID          string
	Name        string
	Description string
	Stats       Stats

	world     game.World
	player    int
	gameTurns int // turns played in the attached game
	policy    Policy
	rewards   *reward.System
	rng       *rand.Rand
}

type Option func(a *Agent)

func WithName(name string) Option {
	return func(a *Agent) {
		if name != "" {
			a.Name = name
		}
	}
}

func WithDescription(description string) Option {
	return func(a *Agent) {
		if description != "" {
			a.Description = description
		}
	}
}

func WithAlpha(alpha float64) Option {
	return func(a *Agent) { a.policy.setHyperparameters(Hyperparameters{Alpha: &alpha}) }
}

func WithGamma(gamma float64) Option {
	return func(a *Agent) { a.policy.setHyperparameters(Hyperparameters{Gamma: &gamma}) }
}

func WithEpsilon(epsilon float64) Option {
	return func(a *Agent) { a.policy.setHyperparameters(Hyperparameters{Epsilon: &epsilon}) }
}

func WithBatchSize(size int) Option {
	return func(a *Agent) { a.policy.setHyperparameters(Hyperparameters{BatchSize: &size}) }
}

func WithBufferSize(size int) Option {
	return func(a *Agent) { a.policy.setHyperparameters(Hyperparameters{BufferSize: &size}) }
}

func WithMemorySize(size int) Option {
	return func(a *Agent) { a.policy.setHyperparameters(Hyperparameters{MemorySize: &size}) }
}

func WithHyperparameters(h Hyperparameters) Option {
	return func(a *Agent) { a.policy.setHyperparameters(h) }
}

// WithRewards overrides reward weights. Types not in spec keep their defaults.
func WithRewards(spec reward.Spec) Option {
	return func(a *Agent) { a.rewards = reward.NewSystem(spec) }
}

// WithSeed makes the agent's random choices reproducible.
func WithSeed(seed uint64) Option {
	return func(a *Agent) { a.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// New creates an agent running the policy of the given kind. It panics on an unknown kind.
func New(kind Kind, options ...Option) *Agent {
	a := &Agent{
		ID:      uuid.NewString(),
		rewards: reward.NewSystem(nil),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	switch kind {
	case KindBasic:
		a.policy = basic{}
		a.Name = "AI Agent"
		a.Description = "A basic AI agent with simple rules"
	case KindQLearn:
		a.policy = newQLearn()
		a.Name = "Q-Learning Agent"
		a.Description = "Uses Q-Learning algorithm to improve decision making"
	case KindDeepQ:
		a.policy = newDeepQ()
		a.Name = "Deep Q-Learning Agent"
		a.Description = "Uses neural networks to learn optimal decision making"
	default:
		panic("unknown agent kind " + string(kind))
	}
	for _, option := range options {
		option(a)
	}
	return a
}

func (a *Agent) Kind() Kind { return a.policy.Kind() }

func (a *Agent) Player() int { return a.player }

// Rewards exposes the reward system so weights can be edited.
func (a *Agent) Rewards() *reward.System { return a.rewards }

// Attach binds the agent to a player of a new game. The reward baseline and per-game
// memory are reset; learned values are kept.
func (a *Agent) Attach(world game.World, player int) {
	a.world = world
	a.player = player
	a.gameTurns = 0
	a.rewards.Reset()
	a.policy.newGame()
}

func (a *Agent) Hyperparameters() Hyperparameters {
	return a.policy.hyperparameters()
}

// SetHyperparameters applies the non-nil fields immediately.
func (a *Agent) SetHyperparameters(h Hyperparameters) {
	a.policy.setHyperparameters(h)
}

func (a *Agent) observe() (*observation, bool) {
	if a.world == nil {
		return nil, false
	}
	snap, ok := a.world.Snapshot(a.player)
	if !ok {
		return nil, false
	}
	return &observation{
		world:       a.world,
		player:      a.player,
		snap:        snap,
		turnsPlayed: a.gameTurns,
		rng:         a.rng,
		stats:       &a.Stats,
	}, true
}

func (a *Agent) OnTurnStart() {}

// MakeDecisions returns the decisions for this turn in the order they should be executed.
// It returns nothing when the agent is not attached to a live player.
func (a *Agent) MakeDecisions() []game.Decision {
	o, ok := a.observe()
	if !ok {
		return nil
	}
	decisions := a.policy.decide(o)
	a.Stats.Decisions += len(decisions)
	a.Stats.TurnsPlayed++
	a.gameTurns++
	return decisions
}

// OnTurnEnd computes the turn's rewards and lets the policy learn from them.
func (a *Agent) OnTurnEnd() {
	o, ok := a.observe()
	if !ok {
		return
	}
	items := a.rewards.Calculate(o.snap)
	total := reward.Total(items)
	a.Stats.Rewards = append(a.Stats.Rewards, TurnReward{
		Turn:      a.Stats.TurnsPlayed,
		Total:     total,
		Breakdown: items,
	})
	a.policy.endTurn(o, total)
}

// LearnFromGameResult applies the final win or loss to recent decisions and lowers
// exploration for the next game.
func (a *Agent) LearnFromGameResult(won bool, final game.PlayerSnapshot) {
	if won {
		a.Stats.GamesWon++
	} else {
		a.Stats.GamesLost++
	}
	o := &observation{
		world:       a.world,
		player:      a.player,
		snap:        final,
		turnsPlayed: a.gameTurns,
		rng:         a.rng,
		stats:       &a.Stats,
	}
	a.policy.gameOver(o, won)
	log.Debug().Msgf("agent %s finished a game (won=%t, score=%.1f, games=%d)",
		a.Name, won, final.Score, a.Stats.GamesWon+a.Stats.GamesLost)
}

func (a *Agent) OnResearchComplete(tech string) {
	a.Stats.ResearchCompleted++
}

func (a *Agent) OnCityFounded(city game.City) {
	a.Stats.CityFounded++
}

func (a *Agent) OnBattleResult(won bool) {
	if won {
		a.Stats.BattlesWon++
	} else {
		a.Stats.BattlesLost++
	}
}
