package engine

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"connect4/experiments/metrics"
	"connect4/game"
	"connect4/server"

	"github.com/pkg/errors"
)

// Remote is an agent that asks a move server for its moves.
type Remote struct {
	url    string
	level  int
	client *http.Client
}

// NewRemote returns an agent playing at level against the server at baseURL.
// A nil client uses http.DefaultClient.
func NewRemote(baseURL string, level int, client *http.Client) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{
		url:    strings.TrimSuffix(baseURL, "/") + "/move",
		level:  level,
		client: client,
	}
}

func (r *Remote) FindMove(state game.State) (int, metrics.SearchMetric, error) {
	payload := server.MoveRequest{
		Board:  state.Snapshot(),
		Player: int(state.Player()),
		Col:    state.LastColumn(),
		Level:  r.level,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return -1, metrics.SearchMetric{}, errors.Wrap(err, "failed to encode move request")
	}

	start := time.Now()
	resp, err := r.client.Post(r.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return -1, metrics.SearchMetric{}, errors.Wrap(err, "move request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(resp.Body)
		return -1, metrics.SearchMetric{}, errors.Errorf("move server returned status %d: %s", resp.StatusCode, bytes.TrimSpace(out))
	}

	var col int
	if err := json.NewDecoder(resp.Body).Decode(&col); err != nil {
		return -1, metrics.SearchMetric{}, errors.Wrap(err, "failed to decode move")
	}
	return col, metrics.SearchMetric{Duration: time.Since(start)}, nil
}
