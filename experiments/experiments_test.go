package experiments

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connect4/experiments/metrics"
	"connect4/meta"
	"connect4/store"

	"github.com/stretchr/testify/require"
)

type gameLog struct {
	mu    sync.Mutex
	games []store.Game
}

func (l *gameLog) RecordGame(ctx context.Context, g store.Game) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.games = append(l.games, g)
	return nil
}

func TestRunLevelExperiment(t *testing.T) {
	games := &gameLog{}
	config := Config{
		Games:           2,
		OutputDir:       t.TempDir(),
		ExplorationRate: meta.DefaultConfig().Search.ExplorationRate,
		Seed:            7,
		Store:           games,
	}
	result, err := RunLevelExperiment(context.Background(), config, meta.Difficulties{1: 10, 2: 20, 3: 40})
	require.NoError(t, err)

	t.Run("csv files are written", func(t *testing.T) {
		for _, name := range []string{"agent_configs.csv", "game_records.csv", "move_records.csv"} {
			_, err := os.Stat(filepath.Join(result.Dir, name))
			require.NoError(t, err, name)
		}
	})

	t.Run("adjacent levels play with alternating starts", func(t *testing.T) {
		require.Len(t, games.games, 4, "Two matchups of two games")
		require.Equal(t, 1, games.games[0].Agent1)
		require.Equal(t, 2, games.games[1].Agent1, "Second game swaps the starting agent")
		require.Equal(t, 2, games.games[2].Agent1)
		require.Equal(t, 3, games.games[3].Agent1)
		for _, g := range games.games {
			require.Equal(t, "levels", g.Experiment)
			require.NotEmpty(t, g.ID)
		}
	})

	t.Run("summaries cover every agent", func(t *testing.T) {
		require.Len(t, result.Summaries, 3)
		require.Equal(t, 2, result.Summaries[0].Played)
		require.Equal(t, 4, result.Summaries[1].Played, "The middle level plays both matchups")
		require.Equal(t, 2, result.Summaries[2].Played)
		for _, s := range result.Summaries {
			require.GreaterOrEqual(t, s.WinRate, 0.0)
			require.LessOrEqual(t, s.WinRate, 1.0)
			require.LessOrEqual(t, s.Wins+s.Draws, s.Played)
			require.Greater(t, s.MeanGameLength, 0.0)
		}
	})

	t.Run("zero games is an error", func(t *testing.T) {
		_, err := RunLevelExperiment(context.Background(), Config{OutputDir: t.TempDir()}, meta.DefaultDifficulties())
		require.Error(t, err)
	})
}

func TestRunTemperatureExperiment(t *testing.T) {
	result, err := RunTemperatureExperiment(context.Background(), Config{
		Games:           1,
		OutputDir:       t.TempDir(),
		ExplorationRate: 1.4,
		Seed:            3,
	}, meta.Difficulties{1: 10}, 1.0)
	require.NoError(t, err)

	require.Len(t, result.Summaries, 2)
	require.Zero(t, result.Summaries[0].Agent.Temperature)
	require.Equal(t, 1.0, result.Summaries[1].Agent.Temperature)
	require.Equal(t, 2, result.Summaries[1].Agent.ID)
}

func TestSummarize(t *testing.T) {
	configs := []metrics.AgentConfig{{ID: 1}, {ID: 2}}
	games := []metrics.GameRecord{
		{ID: 1, Agent1: 1, Agent2: 2, GameMetric: metrics.GameMetric{Winner: 1, TotalMoves: 10}},
		{ID: 2, Agent1: 2, Agent2: 1, GameMetric: metrics.GameMetric{Winner: 2, TotalMoves: 20}},
		{ID: 3, Agent1: 1, Agent2: 2, GameMetric: metrics.GameMetric{Winner: 0, TotalMoves: 42}},
	}
	moves := []metrics.MoveRecord{
		{Game: 1, MoveMetric: metrics.MoveMetric{Player: 1, SearchMetric: metrics.SearchMetric{Duration: 2 * time.Millisecond}}},
		{Game: 1, MoveMetric: metrics.MoveMetric{Player: 2, SearchMetric: metrics.SearchMetric{Duration: 8 * time.Millisecond}}},
		{Game: 2, MoveMetric: metrics.MoveMetric{Player: 2, SearchMetric: metrics.SearchMetric{Duration: 4 * time.Millisecond}}},
	}

	summaries := summarize(configs, games, moves)

	require.Equal(t, 3, summaries[0].Played)
	require.Equal(t, 2, summaries[0].Wins, "Won as first player and as second player")
	require.Equal(t, 1, summaries[0].Draws)
	require.InDelta(t, 2.0/3.0, summaries[0].WinRate, 1e-9)
	require.InDelta(t, 24.0, summaries[0].MeanGameLength, 1e-9)
	require.Equal(t, 3*time.Millisecond, summaries[0].MeanMoveTime)

	require.Zero(t, summaries[1].Wins)
	require.Equal(t, 8*time.Millisecond, summaries[1].MeanMoveTime)
	require.Zero(t, summaries[1].StdDevMoveTime, "A single sample has no spread")
}
