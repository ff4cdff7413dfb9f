package agent

import (
	"math"
	"sort"

	"civ/game"
	"civ/utils"
)

// creditDepth is how many turns back the final game result is credited.
const creditDepth = 10

type qKey struct {
	State  StateKey
	Action game.Decision
}

// QTable maps a state and an action to a value estimate. It grows without bound.
type QTable map[qKey]float64

func (t QTable) Get(s StateKey, a game.Decision) float64 {
	return t[qKey{s, a}]
}

func (t QTable) Set(s StateKey, a game.Decision, v float64) {
	t[qKey{s, a}] = v
}

func (t QTable) Has(s StateKey, a game.Decision) bool {
	_, ok := t[qKey{s, a}]
	return ok
}

// QEntry is the serialized form of one table cell.
type QEntry struct {
	State  StateKey      `json:"state"`
	Action game.Decision `json:"action"`
	Value  float64       `json:"value"`
}

// Entries lists the table sorted by state then action.
func (t QTable) Entries() []QEntry {
	out := make([]QEntry, 0, len(t))
	for k, v := range t {
		out = append(out, QEntry{State: k.State, Action: k.Action, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].State.String(), out[j].State.String()
		if si != sj {
			return si < sj
		}
		return out[i].Action.String() < out[j].Action.String()
	})
	return out
}

// step is one decision remembered for learning.
type step struct {
	key     StateKey
	action  game.Decision
	actions []game.Decision
}

type turnMemory struct {
	steps  []step
	reward float64
}

type qlearn struct {
	alpha      float64
	gamma      float64
	epsilon    float64
	memorySize int
	table      QTable
	memory     *utils.Ring[turnMemory]
}

func newQLearn() *qlearn {
	return &qlearn{
		alpha:      0.1,
		gamma:      0.9,
		epsilon:    0.2,
		memorySize: 1000,
		table:      make(QTable),
		memory:     utils.NewRing[turnMemory](1000),
	}
}

func (*qlearn) Kind() Kind { return KindQLearn }

func (q *qlearn) decide(o *observation) []game.Decision {
	enc := o.encoder()
	var (
		out  []game.Decision
		turn turnMemory
	)
	for _, p := range o.decisionPoints() {
		key := enc.Key(o.snap, p.category, p.context)
		i := selectAction(o, q.epsilon, len(p.actions), func() []float64 {
			return q.scores(key, p.actions)
		})
		out = append(out, p.actions[i])
		turn.steps = append(turn.steps, step{key: key, action: p.actions[i], actions: p.actions})
	}
	q.memory.Push(turn)
	return out
}

// scores returns the table values of actions, or nil when the state has never been seen
// with any of them.
func (q *qlearn) scores(key StateKey, actions []game.Decision) []float64 {
	values := make([]float64, len(actions))
	seen := false
	for i, a := range actions {
		if v, ok := q.table[qKey{key, a}]; ok {
			values[i] = v
			seen = true
		}
	}
	if !seen {
		return nil
	}
	return values
}

// update moves Q(s,a) a step of size alpha toward target.
func (q *qlearn) update(o *observation, s StateKey, a game.Decision, target float64) float64 {
	old := q.table.Get(s, a)
	v := old + q.alpha*(target-old)
	q.table.Set(s, a, v)
	o.stats.QValueUpdates++
	return v
}

// endTurn credits the turn's total reward to the decisions of the previous turn, using
// the decisions just taken as the next state.
func (q *qlearn) endTurn(o *observation, total float64) {
	n := q.memory.Len()
	if n == 0 {
		return
	}
	q.memory.Ptr(n - 1).reward = total
	if n < 2 {
		return
	}
	previous, latest := q.memory.At(n-2), q.memory.At(n-1)
	for _, s := range previous.steps {
		target := total + q.gamma*q.future(s, latest)
		q.update(o, s.key, s.action, target)
	}
}

// future is max Q(s',a') where s' is the matching decision of the next turn: same
// category and entity, else the first one of the same category.
func (q *qlearn) future(s step, next turnMemory) float64 {
	var match *step
	for i := range next.steps {
		n := &next.steps[i]
		if n.key.Category != s.key.Category {
			continue
		}
		if n.key.Entity == s.key.Entity {
			match = n
			break
		}
		if match == nil {
			match = n
		}
	}
	if match == nil || len(match.actions) == 0 {
		return 0
	}
	best := math.Inf(-1)
	for _, a := range match.actions {
		best = max(best, q.table.Get(match.key, a))
	}
	return best
}

// gameOver spreads the final reward over the last turns, discounted by gamma per turn of lag.
func (q *qlearn) gameOver(o *observation, won bool) {
	final := terminalReward(won)
	n := q.memory.Len()
	for i := 1; i <= min(n, creditDepth); i++ {
		entry := q.memory.At(n - i)
		decayed := final * math.Pow(q.gamma, float64(i-1))
		for _, s := range entry.steps {
			q.update(o, s.key, s.action, decayed)
		}
	}
	q.epsilon = decayEpsilon(o.stats)
}

func (q *qlearn) newGame() {
	q.memory.Clear()
}

func (q *qlearn) hyperparameters() Hyperparameters {
	return Hyperparameters{
		Alpha:      ptr(q.alpha),
		Gamma:      ptr(q.gamma),
		Epsilon:    ptr(q.epsilon),
		MemorySize: ptr(q.memorySize),
	}
}

func (q *qlearn) setHyperparameters(h Hyperparameters) {
	if h.Alpha != nil {
		q.alpha = *h.Alpha
	}
	if h.Gamma != nil {
		q.gamma = *h.Gamma
	}
	if h.Epsilon != nil {
		q.epsilon = *h.Epsilon
	}
	if h.MemorySize != nil && *h.MemorySize > 0 {
		q.memorySize = *h.MemorySize
		q.memory.Resize(q.memorySize)
	}
}
