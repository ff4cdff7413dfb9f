package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AgentRecord aggregates the results of one agent over an experiment.
type AgentRecord struct {
	ID         int
	Name       string
	Kind       string
	Games      int
	Wins       int
	HighScore  float64
	TotalScore float64
}

// AddGame folds one game result into the aggregate.
func (r *AgentRecord) AddGame(won bool, score float64) {
	r.Games++
	if won {
		r.Wins++
	}
	r.HighScore = max(r.HighScore, score)
	r.TotalScore += score
}

type GameRecord struct {
	ID     int
	Agent1 int // AgentRecord.ID
	Agent2 int // AgentRecord.ID
	GameMetric
}

type TurnRecord struct {
	Game int // GameRecord.ID
	TurnMetric
}

type Writer struct {
	baseDir string
}

func NewWriter(root, name string) (*Writer, error) {
	// Create a subfolder named by current timestamp
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string { return w.baseDir }

func (w *Writer) writeCSV(file string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", file, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", file, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", file, err)
	}
	return nil
}

func (w *Writer) WriteAgentRecords(records []AgentRecord) error {
	header := []string{"id", "name", "type", "games", "wins", "high_score", "average_score"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		average := 0.0
		if r.Games > 0 {
			average = r.TotalScore / float64(r.Games)
		}
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			r.Name,
			r.Kind,
			strconv.Itoa(r.Games),
			strconv.Itoa(r.Wins),
			formatFloat(r.HighScore),
			formatFloat(average),
		})
	}
	return w.writeCSV("agent_records.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "agent1", "agent2", "starting_player", "winner", "start_time", "end_time", "duration", "turns", "score1", "score2"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			strconv.Itoa(r.Agent1),
			strconv.Itoa(r.Agent2),
			strconv.Itoa(r.StartingPlayer),
			strconv.Itoa(r.Winner),
			r.StartTime.Format(time.RFC3339),
			r.EndTime.Format(time.RFC3339),
			r.Duration.String(),
			strconv.Itoa(r.TotalTurns),
			formatFloat(r.Scores[1]),
			formatFloat(r.Scores[2]),
		})
	}
	return w.writeCSV("game_records.csv", header, rows)
}

func (w *Writer) WriteTurnRecords(records []TurnRecord) error {
	header := []string{"game", "turn", "player", "duration", "decisions", "executed", "skipped", "reward"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			strconv.Itoa(r.Game),
			strconv.Itoa(r.Turn),
			strconv.Itoa(r.Player),
			r.Duration.String(),
			strconv.Itoa(r.Decisions),
			strconv.Itoa(r.Executed),
			strconv.Itoa(r.Skipped),
			formatFloat(r.Reward),
		})
	}
	return w.writeCSV("turn_records.csv", header, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
