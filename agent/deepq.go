package agent

import (
	"math/rand/v2"

	"civ/game"
	"civ/nn"
	"civ/utils"

	"github.com/rs/zerolog/log"
)

// minCategoryRecords is the number of ready experiences a category needs before its
// network is trained.
const minCategoryRecords = 5

// Experience is one decision remembered for replay. Pending experiences are still waiting
// for the reward and next state of their turn.
type Experience struct {
	State     []float64 `json:"state"`
	Action    []float64 `json:"action"`
	Category  Category  `json:"category"`
	Reward    float64   `json:"reward"`
	NextState []float64 `json:"nextState,omitempty"`
	Pending   bool      `json:"pending"`
}

func (e Experience) ready() bool {
	return !e.Pending && e.NextState != nil
}

// ReplayBuffer keeps the most recent experiences.
type ReplayBuffer = utils.Ring[Experience]

type deepq struct {
	alpha      float64
	gamma      float64
	epsilon    float64
	batchSize  int
	bufferSize int
	buffer     *ReplayBuffer
	models     map[Category]*nn.Network
}

func newDeepQ() *deepq {
	return &deepq{
		alpha:      0.001,
		gamma:      0.95,
		epsilon:    0.1,
		batchSize:  32,
		bufferSize: 1000,
		buffer:     utils.NewRing[Experience](1000),
	}
}

func (*deepq) Kind() Kind { return KindDeepQ }

// initModels builds one network per category. A category whose network fails to build is
// left without a model and gets random scores.
func (d *deepq) initModels(rng *rand.Rand) {
	d.models = make(map[Category]*nn.Network, len(Categories))
	for _, c := range Categories {
		m, err := nn.New(c.layers(), d.alpha, rng)
		if err != nil {
			log.Warn().Err(err).Msgf("failed to build %s model, falling back to random scores", c)
			continue
		}
		d.models[c] = m
	}
}

func (d *deepq) decide(o *observation) []game.Decision {
	if d.models == nil {
		d.initModels(o.rng)
	}
	enc := o.encoder()
	var out []game.Decision
	for _, p := range o.decisionPoints() {
		state := enc.Vector(o.snap, p.category, p.context)
		i := selectAction(o, d.epsilon, len(p.actions), func() []float64 {
			return d.scores(o.rng, p.category, state, len(p.actions))
		})
		out = append(out, p.actions[i])
		d.buffer.Push(Experience{
			State:    state,
			Action:   utils.OneHot(p.actions, p.actions[i], len(p.actions)),
			Category: p.category,
			Pending:  true,
		})
	}
	return out
}

// scores predicts n action values. Actions past the network's outputs get random values,
// and all of them do when the category has no model.
func (d *deepq) scores(rng *rand.Rand, c Category, state []float64, n int) []float64 {
	values := make([]float64, n)
	var predicted []float64
	if m := d.models[c]; m != nil {
		predicted = m.Predict(state)
	}
	for i := range values {
		if i < len(predicted) {
			values[i] = predicted[i]
		} else {
			values[i] = rng.Float64()
		}
	}
	return values
}

// endTurn fills pending experiences with the turn's reward and the state that followed,
// then trains.
func (d *deepq) endTurn(o *observation, total float64) {
	enc := o.encoder()
	next := make(map[Category][]float64)
	for i := 0; i < d.buffer.Len(); i++ {
		e := d.buffer.Ptr(i)
		if !e.Pending {
			continue
		}
		if _, ok := next[e.Category]; !ok {
			next[e.Category] = enc.Vector(o.snap, e.Category, Context{})
		}
		e.Reward = total
		e.NextState = next[e.Category]
		e.Pending = false
	}
	d.learn(o)
}

// learn trains each category network on a minibatch sampled with replacement from its
// ready experiences. It does nothing until the buffer holds a full batch.
func (d *deepq) learn(o *observation) {
	if d.buffer.Len() < d.batchSize {
		return
	}
	byCategory := make(map[Category][]Experience)
	for _, e := range d.buffer.Items() {
		if e.ready() {
			byCategory[e.Category] = append(byCategory[e.Category], e)
		}
	}
	for _, c := range Categories {
		records := byCategory[c]
		if len(records) < minCategoryRecords {
			continue
		}
		batch := make([]Experience, min(d.batchSize, len(records)))
		for i := range batch {
			batch[i] = records[o.rng.IntN(len(records))]
		}
		d.train(c, batch)
	}
	o.stats.TrainingEpisodes++
}

func (d *deepq) train(c Category, batch []Experience) {
	m := d.models[c]
	if m == nil {
		return
	}
	states := make([][]float64, len(batch))
	nextStates := make([][]float64, len(batch))
	for i, e := range batch {
		states[i] = e.State
		nextStates[i] = e.NextState
	}
	targets := m.PredictBatch(states)
	next := m.PredictBatch(nextStates)

	for i, e := range batch {
		taken := utils.FindIndex(e.Action, 1)
		if taken < 0 || taken >= len(targets[i]) {
			continue
		}
		best := next[i][0]
		for _, v := range next[i][1:] {
			best = max(best, v)
		}
		targets[i][taken] = e.Reward + d.gamma*best
	}
	if _, err := m.Fit(states, targets, len(batch)); err != nil {
		log.Warn().Err(err).Msgf("failed to train %s model", c)
	}
}

// gameOver adds the final result to every buffered experience and trains once more.
func (d *deepq) gameOver(o *observation, won bool) {
	final := terminalReward(won)
	for i := 0; i < d.buffer.Len(); i++ {
		d.buffer.Ptr(i).Reward += final
	}
	d.learn(o)
	d.epsilon = decayEpsilon(o.stats)
}

func (d *deepq) newGame() {}

func (d *deepq) hyperparameters() Hyperparameters {
	return Hyperparameters{
		Alpha:      ptr(d.alpha),
		Gamma:      ptr(d.gamma),
		Epsilon:    ptr(d.epsilon),
		BatchSize:  ptr(d.batchSize),
		BufferSize: ptr(d.bufferSize),
	}
}

func (d *deepq) setHyperparameters(h Hyperparameters) {
	if h.Alpha != nil {
		d.alpha = *h.Alpha
		for _, m := range d.models {
			m.SetLearningRate(d.alpha)
		}
		if len(d.models) < len(Categories) {
			// Retry failed builds on the next decision
			d.models = nil
		}
	}
	if h.Gamma != nil {
		d.gamma = *h.Gamma
	}
	if h.Epsilon != nil {
		d.epsilon = *h.Epsilon
	}
	if h.BatchSize != nil && *h.BatchSize > 0 {
		d.batchSize = *h.BatchSize
	}
	if h.BufferSize != nil && *h.BufferSize > 0 {
		d.bufferSize = *h.BufferSize
		d.buffer.Resize(d.bufferSize)
	}
}
