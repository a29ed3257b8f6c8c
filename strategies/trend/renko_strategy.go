package trend

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"renkobt/internal"
	"renkobt/internal/renko"
)

// ErrVariantMismatch — режим или правило конфигурации не совпадает с вариантом стратегии.
var ErrVariantMismatch = errors.New("config does not match strategy variant")

// RenkoSignalGenerator — сигналы по процентным Renko-кирпичам одного варианта (режим + правило).
type RenkoSignalGenerator struct {
	mode renko.Mode
	rule renko.Rule
}

func NewRenkoSignalGenerator(mode renko.Mode, rule renko.Rule) *RenkoSignalGenerator {
	return &RenkoSignalGenerator{mode: mode, rule: rule}
}

// checkVariant не даёт конфигурации сменить гранулярность таблицы под именем варианта.
func (sg *RenkoSignalGenerator) checkVariant(cfg *renko.Config) error {
	if cfg.Mode != sg.mode || cfg.Rule != sg.rule {
		return fmt.Errorf("%w: want mode=%s rule=%s, got mode=%s rule=%s",
			ErrVariantMismatch, sg.mode, sg.rule, cfg.Mode, cfg.Rule)
	}
	return nil
}

func (sg *RenkoSignalGenerator) GenerateSignals(candles []internal.Candle, config internal.StrategyConfig) []internal.SignalType {
	rows, err := sg.SignalTable(candles, config)
	if err != nil {
		return make([]internal.SignalType, len(candles))
	}
	return renko.ToSignals(rows, len(candles))
}

// SignalTable возвращает полную таблицу конвейера: кирпичи или размеченные свечи с флагами buy/sell.
func (sg *RenkoSignalGenerator) SignalTable(candles []internal.Candle, config internal.StrategyConfig) ([]renko.Row, error) {
	cfg, ok := config.(*renko.Config)
	if !ok {
		return nil, fmt.Errorf("unexpected config type %T", config)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := sg.checkVariant(cfg); err != nil {
		return nil, err
	}
	return renko.Run(renko.ObservationsFromCandles(candles), *cfg), nil
}

// RenkoConfigGenerator перебирает окно и процент шага; режим и правило фиксированы.
type RenkoConfigGenerator struct {
	windowMin, windowMax, windowStep int
	// процент шага в базисных пунктах: 50 = 0.5%
	stepMinBP, stepMaxBP, stepStepBP int
	mode                             renko.Mode
	rule                             renko.Rule
}

func NewRenkoConfigGenerator(
	windowMin, windowMax, windowStep int,
	stepMinBP, stepMaxBP, stepStepBP int,
	mode renko.Mode, rule renko.Rule,
) *RenkoConfigGenerator {
	return &RenkoConfigGenerator{
		windowMin: windowMin, windowMax: windowMax, windowStep: windowStep,
		stepMinBP: stepMinBP, stepMaxBP: stepMaxBP, stepStepBP: stepStepBP,
		mode: mode, rule: rule,
	}
}

func (cg *RenkoConfigGenerator) Generate() []internal.StrategyConfig {
	windowRange := lo.RangeWithSteps(cg.windowMin, cg.windowMax+1, cg.windowStep)
	stepRange := lo.RangeWithSteps(cg.stepMinBP, cg.stepMaxBP+1, cg.stepStepBP)

	return lo.CrossJoinBy2(
		windowRange,
		stepRange,
		func(window int, bp int) internal.StrategyConfig {
			return &renko.Config{
				WindowSize:     window,
				StepPercentage: float64(bp) / 10000,
				Mode:           cg.mode,
				Rule:           cg.rule,
			}
		})
}

// RenkoStrategy — стратегия с доступом к таблице конвейера для сохранения.
type RenkoStrategy struct {
	*internal.StrategyBase
	generator *RenkoSignalGenerator
}

func (s *RenkoStrategy) SignalTable(candles []internal.Candle, config internal.StrategyConfig) ([]renko.Row, error) {
	return s.generator.SignalTable(candles, config)
}

func (s *RenkoStrategy) Mode() renko.Mode {
	return s.generator.mode
}

// LoadFromJSON отклоняет конфигурацию другого варианта: mode и rule задаются именем стратегии.
func (s *RenkoStrategy) LoadFromJSON(raw json.RawMessage) (internal.StrategyConfig, error) {
	cfg, err := s.StrategyBase.LoadFromJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := s.generator.checkVariant(cfg.(*renko.Config)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RenkoStrategyName — имя варианта в реестре, например renko_levels_strength.
func RenkoStrategyName(mode renko.Mode, rule renko.Rule) string {
	return fmt.Sprintf("renko_%s_%s", mode, rule)
}

func NewRenkoStrategy(slippage float64, mode renko.Mode, rule renko.Rule) *RenkoStrategy {
	slippageProvider := internal.NewSlippageProvider(slippage)
	signalGenerator := NewRenkoSignalGenerator(mode, rule)

	defaultConfig := renko.DefaultConfig()
	defaultConfig.Mode, defaultConfig.Rule = mode, rule

	configManager := internal.NewConfigManager(
		&defaultConfig,
		func() internal.StrategyConfig { return &renko.Config{Mode: mode, Rule: rule} },
	)

	configGenerator := NewRenkoConfigGenerator(
		20, 200, 20, // окно: от 20 до 200 с шагом 20
		50, 500, 50, // шаг: от 0.5% до 5%
		mode, rule,
	)

	optimizer := internal.NewGridSearchOptimizer(
		slippageProvider,
		configGenerator.Generate,
		&defaultConfig,
	)

	return &RenkoStrategy{
		StrategyBase: internal.NewStrategyBase(
			RenkoStrategyName(mode, rule),
			signalGenerator,
			configManager,
			optimizer,
			slippageProvider,
		),
		generator: signalGenerator,
	}
}

func init() {
	for _, mode := range []renko.Mode{renko.ModeBricks, renko.ModeLevels} {
		for _, rule := range []renko.Rule{renko.RuleStrengthGated, renko.RuleContinuationGated} {
			internal.RegisterStrategy(NewRenkoStrategy(0.01, mode, rule))
		}
	}
}
