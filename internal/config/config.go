// Package config описывает YAML-конфигурацию бэктестера.
package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"renkobt/internal"
	"renkobt/internal/logger"
)

type Config struct {
	Candles         string        `yaml:"candles" default:"candles.json" validate:"required"`
	Strategy        string        `yaml:"strategy" default:"all" validate:"required"`
	Slippage        float64       `yaml:"slippage" default:"0.01" validate:"gte=0"`
	Optimize        bool          `yaml:"optimize" default:"true"`
	StrategyConfigs string        `yaml:"strategy_configs"` // JSON с конфигурациями стратегий
	SaveSignals     int           `yaml:"save_signals" validate:"gte=0"`
	OutputDir       string        `yaml:"output_dir" default:"."`
	ProfPort        int           `yaml:"prof_port" validate:"gte=0,lte=65535"`
	Log             logger.Config `yaml:"log"`
}

// Default возвращает конфигурацию только из значений по умолчанию.
func Default() Config {
	var c Config
	_ = defaults.Set(&c)
	return c
}

// Load читает YAML, поверх значений по умолчанию, и проверяет результат.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	return internal.ValidateStruct(c)
}
