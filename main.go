package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"civ/agent"
	"civ/config"
	"civ/experiments"
	"civ/experiments/metrics"
	"civ/store"

	"github.com/logrusorgru/aurora"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	games := flag.Int("games", 0, "Games per matchup, overrides the config")
	turns := flag.Int("turns", 0, "Turn cap per game, overrides the config")
	agentIDs := flag.String("agents", "", "Comma separated stored agent IDs to play instead of the config roster")
	list := flag.Bool("list", false, "List stored agents and exit")
	export := flag.String("export", "", "Print the export string of a stored agent and exit")
	exportAll := flag.Bool("export-all", false, "Print an export string of every stored agent and exit")
	importPath := flag.String("import", "", "Import an agent or collection export string from a file and exit")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		cfg = loaded
	}
	if *games > 0 {
		cfg.Game.Games = *games
	}
	if *turns > 0 {
		cfg.Game.MaxTurns = *turns
	}
	zerolog.SetGlobalLevel(cfg.Level())

	st, err := store.NewStore(cfg.Output.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open agent store")
	}
	defer st.Close()

	switch {
	case *list:
		err = listAgents(st)
	case *export != "":
		err = printExport(st.Export(*export))
	case *exportAll:
		err = printExport(st.ExportCollection())
	case *importPath != "":
		err = importAgents(st, *importPath)
	default:
		err = run(cfg, st, *agentIDs)
	}
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}

func run(cfg config.Config, st *store.Store, ids string) error {
	roster, err := loadRoster(cfg, st, ids)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := experiments.NewRunner("learning", cfg.Game, roster...)
	res, err := runner.Run(ctx, experiments.RoundRobin(len(roster)))
	if err != nil {
		return err
	}
	experiments.LogThroughput(res)

	for _, a := range roster {
		if _, err := st.Save(a); err != nil {
			return fmt.Errorf("failed to save agent %s: %w", a.Name, err)
		}
	}

	w, err := metrics.NewWriter(cfg.Output.RecordsDir, runner.Name)
	if err != nil {
		return err
	}
	if err := experiments.Write(w, res, cfg.Output.Chart); err != nil {
		return err
	}
	log.Info().Msgf("results written to %s", w.Dir())

	printSummary(res)
	return nil
}

func loadRoster(cfg config.Config, st *store.Store, ids string) ([]*agent.Agent, error) {
	var roster []*agent.Agent
	if ids == "" {
		for _, c := range cfg.Agents {
			roster = append(roster, agent.New(c.Kind, c.Options()...))
		}
		return roster, nil
	}
	for _, id := range strings.Split(ids, ",") {
		r, err := st.Get(strings.TrimSpace(id))
		if err != nil {
			return nil, err
		}
		a, err := store.Instantiate(r)
		if err != nil {
			return nil, err
		}
		roster = append(roster, a)
	}
	if len(roster) < 2 {
		return nil, fmt.Errorf("need at least two agents, got %d", len(roster))
	}
	return roster, nil
}

func listAgents(st *store.Store) error {
	records, err := st.List()
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Printf("%s  %-7s %-24s games=%d won=%d\n", r.ID, r.Type, r.Name,
			r.Stats.GamesWon+r.Stats.GamesLost, r.Stats.GamesWon)
	}
	return nil
}

func printExport(encoded string, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(encoded)
	return nil
}

// importAgents accepts both single agent and collection exports.
func importAgents(st *store.Store, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	encoded := strings.TrimSpace(string(raw))
	if r, err := st.Import(encoded); err == nil {
		fmt.Printf("imported %s (%s)\n", r.Name, r.ID)
		return nil
	}
	records, err := st.ImportCollection(encoded)
	if err != nil {
		return err
	}
	for _, r := range records {
		fmt.Printf("imported %s (%s)\n", r.Name, r.ID)
	}
	return nil
}

func printSummary(res experiments.Result) {
	fmt.Println(aurora.Bold("Agent                     Games  Wins  Win rate  Avg score"))
	for _, a := range res.Agents {
		rate, avg := 0.0, 0.0
		if a.Games > 0 {
			rate = float64(a.Wins) / float64(a.Games)
			avg = a.TotalScore / float64(a.Games)
		}
		line := fmt.Sprintf("%-25s %5d %5d %8.0f%% %10.1f", a.Name, a.Games, a.Wins, 100*rate, avg)
		switch {
		case rate > 0.5:
			fmt.Println(aurora.Green(line))
		case rate < 0.5:
			fmt.Println(aurora.Red(line))
		default:
			fmt.Println(aurora.Yellow(line))
		}
	}
}
