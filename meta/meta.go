// meta/meta.go
package meta

import (
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DEFAULT_LEVEL is used when a request names no difficulty.
const DEFAULT_LEVEL = 1

// MAX_PLAYOUTS caps explicit playout overrides sent by clients.
const MAX_PLAYOUTS = 50000

var ErrUnknownLevel = errors.New("unknown difficulty level")

// Difficulties maps a difficulty level to its playout budget.
type Difficulties map[int]int

// DefaultDifficulties is the level table served to the front end.
func DefaultDifficulties() Difficulties {
	return Difficulties{
		1: 125,
		2: 250,
		3: 500,
		4: 1000,
		5: 2000,
	}
}

// Playouts returns the budget for level.
func (d Difficulties) Playouts(level int) (int, error) {
	playouts, ok := d[level]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownLevel, "level %d", level)
	}
	return playouts, nil
}

// Levels returns the configured levels in ascending order.
func (d Difficulties) Levels() []int {
	levels := make([]int, 0, len(d))
	for level := range d {
		levels = append(levels, level)
	}
	sort.Ints(levels)
	return levels
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	StaticDir    string        `yaml:"static_dir"` // Optional front end served at /
}

type SearchConfig struct {
	ExplorationRate float64      `yaml:"exploration_rate"`
	Difficulties    Difficulties `yaml:"difficulties"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type StoreConfig struct {
	Path string `yaml:"path"` // SQLite file, empty disables the move log
}

type ExperimentConfig struct {
	Games     int    `yaml:"games"` // Per matchup
	OutputDir string `yaml:"output_dir"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Search     SearchConfig     `yaml:"search"`
	Log        LogConfig        `yaml:"log"`
	Store      StoreConfig      `yaml:"store"`
	Experiment ExperimentConfig `yaml:"experiment"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         5000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Search: SearchConfig{
			ExplorationRate: 1.4142135623730951,
			Difficulties:    DefaultDifficulties(),
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Experiment: ExperimentConfig{
			Games:     10,
			OutputDir: "experiments",
		},
	}
}

// LoadConfig overlays the YAML file at path on the defaults. An empty path
// returns the defaults. A difficulties table in the file replaces the default
// table as a whole.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, errors.Wrapf(err, "failed to read config %s", path)
	}
	config.Search.Difficulties = nil
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if len(config.Search.Difficulties) == 0 {
		config.Search.Difficulties = DefaultDifficulties()
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Search.ExplorationRate < 0 {
		return errors.Errorf("invalid exploration rate %v", c.Search.ExplorationRate)
	}
	if len(c.Search.Difficulties) == 0 {
		return errors.New("no difficulty levels configured")
	}
	for level, playouts := range c.Search.Difficulties {
		if playouts < 7 || playouts > MAX_PLAYOUTS {
			return errors.Errorf("level %d: playouts %d outside [7, %d]", level, playouts, MAX_PLAYOUTS)
		}
	}
	if c.Experiment.Games < 0 {
		return errors.Errorf("invalid experiment game count %d", c.Experiment.Games)
	}
	return nil
}
