package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/generator"
	"svw.info/blockpuzzle/internal/ports"
	"svw.info/blockpuzzle/internal/powerup"
	"svw.info/blockpuzzle/internal/reward"
	"svw.info/blockpuzzle/internal/session"
)

type Board struct {
	Rows       int `yaml:"rows"`
	Cols       int `yaml:"cols"`
	HandSize   int `yaml:"handSize"`
	BombRadius int `yaml:"bombRadius"`
}

type ScoreMode struct {
	Placement         int     `yaml:"placement"`
	PerLine           int     `yaml:"perLine"`
	LinesPerLevel     int     `yaml:"linesPerLevel"`
	MarkerProbability float64 `yaml:"markerProbability"`
}

type CoinMode struct {
	PerMarker         int     `yaml:"perMarker"`
	MarkerProbability float64 `yaml:"markerProbability"`
}

// Progression is the readiness granted to every power-up per placement and
// per cleared line. Both zero means power-ups only recharge on reset.
type Progression struct {
	PerPlacement float64 `yaml:"perPlacement"`
	PerLine      float64 `yaml:"perLine"`
}

type Config struct {
	Addr          string      `yaml:"addr"`
	LogLevel      string      `yaml:"logLevel"`
	Board         Board       `yaml:"board"`
	Palette       []string    `yaml:"palette"`
	Score         ScoreMode   `yaml:"score"`
	Coins         CoinMode    `yaml:"coins"`
	Progression   Progression `yaml:"progression"`
	OpeningWallet int         `yaml:"openingWallet"`
}

// Default returns the classic game: 10×10 board, three blocks in hand, a
// 3×3 bomb and the three-color palette.
func Default() Config {
	return Config{
		Addr:     ":8080",
		LogLevel: "info",
		Board:    Board{Rows: 10, Cols: 10, HandSize: 3, BombRadius: 1},
		Palette:  []string{"#F7CC59", "#41235C", "#B04152"},
		Score:    ScoreMode{Placement: 10, PerLine: 100, LinesPerLevel: 6},
		Coins:    CoinMode{PerMarker: 50, MarkerProbability: 0.20},
	}
}

// Load overlays the YAML file at path onto Default. An empty path returns
// the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	return Parse(data)
}

// Parse overlays YAML data onto Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func (c Config) Validate() error {
	var errs []error
	if c.Board.Rows < 1 || c.Board.Cols < 1 {
		errs = append(errs, fmt.Errorf("board %dx%d: need at least one row and column", c.Board.Rows, c.Board.Cols))
	}
	if c.Board.HandSize < 1 {
		errs = append(errs, fmt.Errorf("handSize %d: need at least one slot", c.Board.HandSize))
	}
	if c.Board.BombRadius < 1 {
		errs = append(errs, fmt.Errorf("bombRadius %d: must be positive", c.Board.BombRadius))
	}
	if len(c.Palette) == 0 {
		errs = append(errs, errors.New("palette is empty"))
	}
	for _, p := range c.Palette {
		if !hexColor.MatchString(p) {
			errs = append(errs, fmt.Errorf("palette color %q: want #RRGGBB", p))
		}
	}
	for name, p := range map[string]float64{
		"score.markerProbability": c.Score.MarkerProbability,
		"coins.markerProbability": c.Coins.MarkerProbability,
	} {
		if p < 0 || p > 1 {
			errs = append(errs, fmt.Errorf("%s %v: want [0,1]", name, p))
		}
	}
	if c.Score.Placement < 0 || c.Score.PerLine < 0 || c.Score.LinesPerLevel < 0 || c.Coins.PerMarker < 0 {
		errs = append(errs, errors.New("rewards must not be negative"))
	}
	if c.Progression.PerPlacement < 0 || c.Progression.PerLine < 0 {
		errs = append(errs, errors.New("progression must not be negative"))
	}
	if c.OpeningWallet < 0 {
		errs = append(errs, fmt.Errorf("openingWallet %d: must not be negative", c.OpeningWallet))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// ParseLevel maps debug|info|warn|error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log level %q: want debug|info|warn|error", s)
}

// Policy returns the reward policy configured for mode.
func (c Config) Policy(mode domain.Mode) ports.RewardPolicy {
	if mode == domain.ModeCoins {
		return reward.Coins{PerMarker: c.Coins.PerMarker}
	}
	return reward.Score{Placement: c.Score.Placement, PerLine: c.Score.PerLine, LevelQuota: c.Score.LinesPerLevel}
}

func (c Config) markerProbability(mode domain.Mode) float64 {
	if mode == domain.ModeCoins {
		return c.Coins.MarkerProbability
	}
	return c.Score.MarkerProbability
}

func (c Config) progression() ports.Progression {
	if c.Progression.PerPlacement == 0 && c.Progression.PerLine == 0 {
		return powerup.Frozen{}
	}
	return powerup.Steady{PerPlacement: c.Progression.PerPlacement, PerLine: c.Progression.PerLine}
}

// SessionOptions wires a seeded generator and the mode's policy into
// options for session.New or session.Restore.
func (c Config) SessionOptions(mode domain.Mode, seed uint64) session.Options {
	return session.Options{
		Rows:        c.Board.Rows,
		Cols:        c.Board.Cols,
		HandSize:    c.Board.HandSize,
		BombRadius:  c.Board.BombRadius,
		Generator:   generator.NewRandomGenerator(seed, len(c.Palette), c.markerProbability(mode)),
		Policy:      c.Policy(mode),
		Progression: c.progression(),
	}
}
