package metrics

import (
	"math"
	"sync/atomic"
	"time"
)

// TurnMetric describes one player's turn.
type TurnMetric struct {
	Turn      int
	Player    int
	Duration  time.Duration
	Decisions int
	Executed  int
	Skipped   int
	Reward    float64
}

type GameMetric struct {
	StartingPlayer int // Player ID
	Winner         int // Player ID
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalTurns     int
	Scores         map[int]float64 // Player ID -> final score
}

type Collector interface {
	Start(turn, player int)
	AddDecision()
	AddExecuted()
	AddSkipped()
	SetReward(total float64)
	Complete() TurnMetric
}

type collector struct {
	turn      int
	player    int
	startTime time.Time
	decisions atomic.Int32
	executed  atomic.Int32
	skipped   atomic.Int32
	reward    atomic.Uint64 // float64 bits
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(turn, player int) {
	m.startTime = time.Now()
	m.turn = turn
	m.player = player
	m.decisions.Store(0)
	m.executed.Store(0)
	m.skipped.Store(0)
	m.reward.Store(0)
}

func (m *collector) AddDecision() {
	m.decisions.Add(1)
}

func (m *collector) AddExecuted() {
	m.executed.Add(1)
}

func (m *collector) AddSkipped() {
	m.skipped.Add(1)
}

func (m *collector) SetReward(total float64) {
	m.reward.Store(math.Float64bits(total))
}

func (m *collector) Complete() TurnMetric {
	return TurnMetric{
		Turn:      m.turn,
		Player:    m.player,
		Duration:  time.Since(m.startTime),
		Decisions: int(m.decisions.Load()),
		Executed:  int(m.executed.Load()),
		Skipped:   int(m.skipped.Load()),
		Reward:    math.Float64frombits(m.reward.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(turn, player int)  {}
func (m *dummyCollector) AddDecision()            {}
func (m *dummyCollector) AddExecuted()            {}
func (m *dummyCollector) AddSkipped()             {}
func (m *dummyCollector) SetReward(total float64) {}
func (m *dummyCollector) Complete() TurnMetric    { return TurnMetric{} }
