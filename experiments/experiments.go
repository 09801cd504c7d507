package experiments

import (
	"context"
	"time"

	"connect4/engine"
	"connect4/experiments/metrics"
	"connect4/meta"
	"connect4/searcher"
	"connect4/searcher/agent"
	"connect4/store"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// GameRecorder receives every finished game.
type GameRecorder interface {
	RecordGame(ctx context.Context, g store.Game) error
}

type Config struct {
	Games           int // Per matchup
	OutputDir       string
	ExplorationRate float64
	Seed            uint64 // Zero seeds from the clock
	Store           GameRecorder
}

// Summary aggregates the games one agent played in an experiment.
type Summary struct {
	Agent            metrics.AgentConfig
	Played           int
	Wins             int
	Draws            int
	WinRate          float64
	MeanMoveTime     time.Duration
	StdDevMoveTime   time.Duration
	MeanGameLength   float64
	StdDevGameLength float64
}

// Result of an experiment, Dir is where its CSV files were written.
type Result struct {
	Dir       string
	Summaries []Summary
}

// RunLevelExperiment pairs every difficulty level against the next one up.
func RunLevelExperiment(ctx context.Context, config Config, difficulties meta.Difficulties) (Result, error) {
	configs := levelConfigs(difficulties, config.ExplorationRate, 0)
	matchUps := [][]metrics.AgentConfig{}
	for i := 0; i+1 < len(configs); i++ {
		matchUps = append(matchUps, []metrics.AgentConfig{configs[i], configs[i+1]})
	}
	return runExperiment(ctx, "levels", config, configs, matchUps)
}

// RunTemperatureExperiment pairs a training agent sampling at temperature
// against an evaluation agent with the same budget at every level.
func RunTemperatureExperiment(ctx context.Context, config Config, difficulties meta.Difficulties, temperature float64) (Result, error) {
	baselines := levelConfigs(difficulties, config.ExplorationRate, 0)
	trainees := levelConfigs(difficulties, config.ExplorationRate, temperature)
	matchUps := [][]metrics.AgentConfig{}
	for i := range baselines {
		trainees[i].ID += len(baselines)
		matchUps = append(matchUps, []metrics.AgentConfig{baselines[i], trainees[i]})
	}
	return runExperiment(ctx, "temperature", config, append(baselines, trainees...), matchUps)
}

func levelConfigs(difficulties meta.Difficulties, explorationRate, temperature float64) []metrics.AgentConfig {
	configs := []metrics.AgentConfig{}
	for i, level := range difficulties.Levels() {
		configs = append(configs, metrics.AgentConfig{
			ID:              i + 1,
			Level:           level,
			Playouts:        difficulties[level],
			ExplorationRate: explorationRate,
			Temperature:     temperature,
		})
	}
	return configs
}

func runExperiment(ctx context.Context, name string, config Config, configs []metrics.AgentConfig, matchUps [][]metrics.AgentConfig) (Result, error) {
	if config.Games <= 0 {
		return Result{}, errors.Errorf("invalid game count %d", config.Games)
	}
	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))

	// Run a number of games for each matchup
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", name)

	for mi, matchup := range matchUps {
		log.Info().Msgf("starting matchup %d of %d between agent1=%+v and agent2=%+v...", mi+1, len(matchUps), matchup[0], matchup[1])

		for i := 0; i < config.Games; i++ {
			// Alternate the starting agent
			first, second := matchup[0], matchup[1]
			if i%2 == 1 {
				first, second = second, first
			}

			gameMetric, moveMetrics, err := runGame(ctx, first, second, rng)
			if err != nil {
				return Result{}, errors.Wrapf(err, "matchup %d game %d", mi+1, i+1)
			}
			count++
			record := metrics.GameRecord{
				ID:         count,
				Agent1:     first.ID,
				Agent2:     second.ID,
				GameMetric: gameMetric,
			}
			gameRecords = append(gameRecords, record)
			for _, mm := range moveMetrics {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}
			if config.Store != nil {
				if err := config.Store.RecordGame(ctx, storeGame(name, record)); err != nil {
					return Result{}, err
				}
			}

			log.Info().Msgf("completed matchup %d of %d game %d of %d with winner: %d", mi+1, len(matchUps), i+1, config.Games, gameMetric.Winner)
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(matchUps))
	}

	log.Info().Msgf("completed %s experiment", name)

	dir, err := writeRecords(config.OutputDir, name, configs, gameRecords, moveRecords)
	if err != nil {
		return Result{}, err
	}
	return Result{Dir: dir, Summaries: summarize(configs, gameRecords, moveRecords)}, nil
}

// runGame plays one game where first moves first.
func runGame(ctx context.Context, first, second metrics.AgentConfig, rng *rand.Rand) (metrics.GameMetric, []metrics.MoveMetric, error) {
	e := engine.NewLocal(createAgent(first, rng), createAgent(second, rng))
	return e.Run(ctx)
}

func createAgent(config metrics.AgentConfig, rng *rand.Rand) agent.Agent {
	mcts := searcher.NewMCTS(
		searcher.WithExplorationRate(config.ExplorationRate),
		searcher.WithSeed(rng.Uint64()),
		searcher.WithMetrics(),
	)
	if config.Temperature > 0 {
		return agent.NewTrainingAgent(mcts, config.Playouts, config.Temperature, rand.New(rand.NewSource(rng.Uint64())))
	}
	return agent.NewEvaluationAgent(mcts, config.Playouts)
}

func storeGame(experiment string, record metrics.GameRecord) store.Game {
	return store.Game{
		ID:             record.GameID,
		Experiment:     experiment,
		Agent1:         record.Agent1,
		Agent2:         record.Agent2,
		StartingPlayer: record.StartingPlayer,
		Winner:         record.Winner,
		StartTime:      record.StartTime,
		EndTime:        record.EndTime,
		TotalMoves:     record.TotalMoves,
	}
}
