package experiments

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Throughput sums the turns an agent took over an experiment.
type Throughput struct {
	Turns     int
	Decisions int
	Skipped   int
	Duration  time.Duration
}

func (t Throughput) DecisionsPerSecond() float64 {
	if t.Duration <= 0 {
		return 0
	}
	return float64(t.Decisions) / t.Duration.Seconds()
}

func (t Throughput) MeanTurn() time.Duration {
	if t.Turns == 0 {
		return 0
	}
	return t.Duration / time.Duration(t.Turns)
}

// MeasureThroughput groups turn records by agent record ID.
func MeasureThroughput(res Result) map[int]Throughput {
	out := make(map[int]Throughput)
	for _, a := range res.Agents {
		players := playerOf(res.Games, a.ID)
		var t Throughput
		for _, r := range res.Turns {
			if r.Player != players(r.Game) {
				continue
			}
			t.Turns++
			t.Decisions += r.Decisions
			t.Skipped += r.Skipped
			t.Duration += r.Duration
		}
		out[a.ID] = t
	}
	return out
}

// LogThroughput reports the decision rate of every agent.
func LogThroughput(res Result) {
	throughput := MeasureThroughput(res)
	for _, a := range res.Agents {
		t := throughput[a.ID]
		log.Info().Msgf("agent %s took %d turns, %d decisions (%d skipped), %.0f decisions/s, %v per turn",
			a.Name, t.Turns, t.Decisions, t.Skipped, t.DecisionsPerSecond(), t.MeanTurn())
	}
}
