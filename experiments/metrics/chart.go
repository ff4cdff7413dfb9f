package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RewardSeries is the average turn reward of one agent keyed by game ID. Games the agent
// sat out are missing.
type RewardSeries struct {
	Name    string
	Rewards map[int]float64
}

// AverageTurnRewards averages the turn rewards of the player an agent was in each game.
// player returns -1 for games the agent did not play.
func AverageTurnRewards(records []TurnRecord, player func(game int) int) map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range records {
		if r.Player != player(r.Game) {
			continue
		}
		sums[r.Game] += r.Reward
		counts[r.Game]++
	}
	out := make(map[int]float64, len(sums))
	for g, sum := range sums {
		out[g] = sum / float64(counts[g])
	}
	return out
}

// WriteRewardChart renders one line per series into rewards.html. The X axis runs over
// every game ID; a series has a gap where its agent did not play.
func (w *Writer) WriteRewardChart(title string, series ...RewardSeries) error {
	if len(series) == 0 {
		return nil
	}
	numGames := 0
	for _, s := range series {
		for g := range s.Rewards {
			numGames = max(numGames, g)
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "average reward per turn",
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: "shine",
		}),
	)

	var games []string
	for g := 1; g <= numGames; g++ {
		games = append(games, fmt.Sprintf("%d", g))
	}
	line = line.SetXAxis(games)
	for _, s := range series {
		items := make([]opts.LineData, 0, numGames)
		for g := 1; g <= numGames; g++ {
			if r, ok := s.Rewards[g]; ok {
				items = append(items, opts.LineData{Value: r})
			} else {
				items = append(items, opts.LineData{Value: "-"})
			}
		}
		line.AddSeries(s.Name, items)
	}

	page := components.NewPage()
	page.AddCharts(line)

	f, err := os.Create(filepath.Join(w.baseDir, "rewards.html"))
	if err != nil {
		return fmt.Errorf("failed to create reward chart: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("failed to render reward chart: %w", err)
	}
	return nil
}
