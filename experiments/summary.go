package experiments

import (
	"time"

	"connect4/experiments/metrics"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

func writeRecords(root, name string, configs []metrics.AgentConfig, gameRecords []metrics.GameRecord, moveRecords []metrics.MoveRecord) (string, error) {
	// Store experiment metadata
	writer, err := metrics.NewWriter(root, name)
	if err != nil {
		return "", err
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", err
	}
	log.Info().Msg("stored agent configs")

	// Store experiment results
	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return "", err
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return "", err
	}
	log.Info().Msg("stored move records")
	return writer.Dir(), nil
}

// summarize computes per agent results. Agent1 of a record moved first and
// played player one.
func summarize(configs []metrics.AgentConfig, gameRecords []metrics.GameRecord, moveRecords []metrics.MoveRecord) []Summary {
	games := make(map[int]metrics.GameRecord, len(gameRecords))
	for _, record := range gameRecords {
		games[record.ID] = record
	}

	summaries := make([]Summary, 0, len(configs))
	for _, config := range configs {
		var outcomes, lengths, moveTimes []float64
		wins, draws := 0, 0
		for _, record := range gameRecords {
			player := seat(record, config.ID)
			if player == 0 {
				continue
			}
			won := 0.0
			if record.Winner == player {
				won = 1
				wins++
			}
			if record.Winner == 0 {
				draws++
			}
			outcomes = append(outcomes, won)
			lengths = append(lengths, float64(record.TotalMoves))
		}
		for _, move := range moveRecords {
			if seat(games[move.Game], config.ID) == move.Player {
				moveTimes = append(moveTimes, float64(move.Duration))
			}
		}

		summary := Summary{Agent: config, Played: len(outcomes), Wins: wins, Draws: draws}
		if len(outcomes) > 0 {
			summary.WinRate = stat.Mean(outcomes, nil)
			summary.MeanGameLength, summary.StdDevGameLength = meanStdDev(lengths)
		}
		if len(moveTimes) > 0 {
			mean, std := meanStdDev(moveTimes)
			summary.MeanMoveTime = time.Duration(mean)
			summary.StdDevMoveTime = time.Duration(std)
		}
		summaries = append(summaries, summary)

		log.Info().Msgf("agent %d (level %d, temperature %.2f): %d wins, %d draws in %d games, mean move time %v",
			config.ID, config.Level, config.Temperature, summary.Wins, summary.Draws, summary.Played, summary.MeanMoveTime)
	}
	return summaries
}

// seat returns the player the agent played in the game, or 0 if it did not
// take part.
func seat(record metrics.GameRecord, agentID int) int {
	switch agentID {
	case record.Agent1:
		return 1
	case record.Agent2:
		return 2
	default:
		return 0
	}
}

func meanStdDev(x []float64) (mean, std float64) {
	if len(x) < 2 {
		return stat.Mean(x, nil), 0
	}
	return stat.MeanStdDev(x, nil)
}
