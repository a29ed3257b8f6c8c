package renko

import (
	"fmt"

	"renkobt/internal"
)

// Mode — гранулярность выходной таблицы.
type Mode int

const (
	// ModeBricks: одна строка на кирпич, разворот через два шага.
	ModeBricks Mode = iota
	// ModeLevels: одна строка на свечу, разворот через один шаг.
	ModeLevels
)

var modeNames = [...]string{"bricks", "levels"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	for i, name := range modeNames {
		if string(text) == name {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("unknown renko mode %q", text)
}

// Config — параметры конвейера. Реализует internal.StrategyConfig.
type Config struct {
	WindowSize     int     `json:"window_size" yaml:"window_size" default:"100" validate:"gt=0"`
	StepPercentage float64 `json:"step_percentage" yaml:"step_percentage" default:"0.02" validate:"gt=0,lt=1"`
	Mode           Mode    `json:"mode" yaml:"mode" validate:"gte=0,lte=1"`
	Rule           Rule    `json:"rule" yaml:"rule" validate:"gte=0,lte=1"`
	// MaxBricks > 0 обрывает режим кирпичей после N кирпичей
	MaxBricks int `json:"max_bricks,omitempty" yaml:"max_bricks" validate:"gte=0"`
}

// DefaultConfig — окно 100, шаг 2% от среднего.
func DefaultConfig() Config {
	return Config{WindowSize: 100, StepPercentage: 0.02}
}

func (c *Config) Validate() error {
	return internal.ValidateStruct(c)
}

func (c *Config) String() string {
	return fmt.Sprintf("Renko(window=%d, step=%.4f, mode=%s, rule=%s)",
		c.WindowSize, c.StepPercentage, c.Mode, c.Rule)
}

// Run выполняет весь проход: шаги, кирпичи или разметка, затем сигналы.
// Пустой вход даёт пустой (не nil) срез.
func Run(observations []Observation, cfg Config) []Row {
	steps := ComputeSteps(Closes(observations), cfg.WindowSize, cfg.StepPercentage)

	var rows []Row
	switch cfg.Mode {
	case ModeLevels:
		rows = Annotate(observations, steps)
	default:
		rows = make([]Row, 0)
		for b := range Bricks(observations, steps, cfg.MaxBricks) {
			rows = append(rows, b.Row())
		}
	}

	ApplyRule(rows, cfg.Rule)
	return rows
}
