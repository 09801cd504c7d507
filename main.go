package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"connect4/engine"
	"connect4/experiments"
	"connect4/game"
	"connect4/meta"
	"connect4/player"
	"connect4/searcher"
	"connect4/searcher/agent"
	"connect4/server"
	"connect4/store"

	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: connect4 <command> [flags]

commands:
  serve       answer move requests over HTTP and WebSocket
  play        play against the engine in the terminal
  experiment  run self-play experiments between difficulty levels`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "serve":
		err = serve(ctx, os.Args[2:])
	case "play":
		err = play(ctx, os.Args[2:])
	case "experiment":
		err = experiment(ctx, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msgf("%s failed", os.Args[1])
	}
}

// loadConfig parses the shared flags and sets up logging.
func loadConfig(flags *flag.FlagSet, args []string) (meta.Config, error) {
	path := flags.String("config", "", "YAML config file")
	level := flags.String("log-level", "", "log level, overrides the config")
	if err := flags.Parse(args); err != nil {
		return meta.Config{}, err
	}

	config, err := meta.LoadConfig(*path)
	if err != nil {
		return config, err
	}
	if *level != "" {
		config.Log.Level = *level
	}
	setupLogging(config.Log)
	return config, nil
}

func setupLogging(config meta.LogConfig) {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if config.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func serve(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	port := flags.Int("port", 0, "port to listen on, overrides the config")
	dbPath := flags.String("db", "", "SQLite move log, overrides the config")
	static := flags.String("static", "", "front end directory served at /")
	config, err := loadConfig(flags, args)
	if err != nil {
		return err
	}
	if *port != 0 {
		config.Server.Port = *port
	}
	if *dbPath != "" {
		config.Store.Path = *dbPath
	}
	if *static != "" {
		config.Server.StaticDir = *static
	}
	if err := config.Validate(); err != nil {
		return err
	}

	options := []server.Option{}
	if config.Store.Path != "" {
		s, err := store.Open(config.Store.Path)
		if err != nil {
			return err
		}
		defer s.Close()
		options = append(options, server.WithStore(s))
	}
	return server.New(config, options...).ListenAndServe(ctx)
}

func play(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("play", flag.ExitOnError)
	level := flags.Int("level", meta.DEFAULT_LEVEL, "difficulty level of the engine")
	second := flags.Bool("second", false, "let the engine move first")
	remote := flags.String("remote", "", "move server URL, plays locally when empty")
	config, err := loadConfig(flags, args)
	if err != nil {
		return err
	}

	var opponent agent.Agent
	if *remote != "" {
		opponent = engine.NewRemote(*remote, *level, nil)
	} else {
		playouts, err := config.Search.Difficulties.Playouts(*level)
		if err != nil {
			return err
		}
		mcts := searcher.NewMCTS(searcher.WithExplorationRate(config.Search.ExplorationRate))
		opponent = agent.NewEvaluationAgent(mcts, playouts)
	}

	out := termenv.NewOutput(os.Stdout)
	human := player.NewHuman(os.Stdin, out)
	agents := []agent.Agent{human, opponent}
	if *second {
		agents[0], agents[1] = agents[1], agents[0]
	}

	e := engine.NewLocal(agents[0], agents[1], engine.WithObserver(func(step int, p game.Player, col int, state game.State) {
		fmt.Fprintf(out, "%s played column %d\n", player.Mark(out, p), col+1)
	}))
	gameMetric, _, err := e.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprint(out, player.Render(out, e.State()))
	switch winner := game.Player(gameMetric.Winner); winner {
	case game.Empty:
		fmt.Fprintln(out, "draw")
	default:
		fmt.Fprintf(out, "%s wins after %d moves\n", player.Mark(out, winner), gameMetric.TotalMoves)
	}
	return nil
}

func experiment(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("experiment", flag.ExitOnError)
	name := flags.String("name", "levels", "experiment to run: levels or temperature")
	games := flags.Int("games", 0, "games per matchup, overrides the config")
	temperature := flags.Float64("temperature", 1.0, "sampling temperature of the training agent")
	seed := flags.Uint64("seed", 0, "random seed, zero seeds from the clock")
	config, err := loadConfig(flags, args)
	if err != nil {
		return err
	}
	if *games != 0 {
		config.Experiment.Games = *games
	}

	runConfig := experiments.Config{
		Games:           config.Experiment.Games,
		OutputDir:       config.Experiment.OutputDir,
		ExplorationRate: config.Search.ExplorationRate,
		Seed:            *seed,
	}
	if config.Store.Path != "" {
		s, err := store.Open(config.Store.Path)
		if err != nil {
			return err
		}
		defer s.Close()
		runConfig.Store = s
	}

	var result experiments.Result
	switch *name {
	case "levels":
		result, err = experiments.RunLevelExperiment(ctx, runConfig, config.Search.Difficulties)
	case "temperature":
		result, err = experiments.RunTemperatureExperiment(ctx, runConfig, config.Search.Difficulties, *temperature)
	default:
		return errors.Errorf("unknown experiment %q", *name)
	}
	if err != nil {
		return err
	}
	log.Info().Msgf("results written to %s", result.Dir)
	return nil
}
