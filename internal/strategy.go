// strategy.go
// Архитектура стратегий на композиции и интерфейсах
package internal

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	lop "github.com/samber/lo/parallel"
)

// ============================================================================
// ИНТЕРФЕЙСЫ - определяют контракты, а не реализацию
// ============================================================================

// StrategyConfig - конфигурация стратегии
type StrategyConfig interface {
	Validate() error
	String() string
}

// SignalGenerator - генератор торговых сигналов
type SignalGenerator interface {
	GenerateSignals(candles []Candle, config StrategyConfig) []SignalType
}

// ConfigOptimizer - оптимизатор конфигурации
type ConfigOptimizer interface {
	Optimize(candles []Candle, generator SignalGenerator) StrategyConfig
}

// ConfigManager - управление конфигурацией
type ConfigManager interface {
	DefaultConfig() StrategyConfig
	LoadFromJSON(raw json.RawMessage) (StrategyConfig, error)
}

// TradingStrategy - полная стратегия торговли
type TradingStrategy interface {
	Name() string
	SignalGenerator
	ConfigOptimizer
	ConfigManager
	GetSlippage() float64
	SetSlippage(slippage float64)
}

var validate = validator.New()

// ValidateStruct проверяет теги `validate` конфигурации.
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ============================================================================
// КОМПОЗИЦИЯ - собираем функциональность из независимых компонентов
// ============================================================================

// SlippageProvider - провайдер проскальзывания
type SlippageProvider struct {
	slippage float64
}

func NewSlippageProvider(slippage float64) *SlippageProvider {
	return &SlippageProvider{slippage: slippage}
}

func (sp *SlippageProvider) GetSlippage() float64 {
	return sp.slippage
}

func (sp *SlippageProvider) SetSlippage(slippage float64) {
	sp.slippage = slippage
}

// ============================================================================
// ConfigManagerImpl - реализация управления конфигурацией
// ============================================================================

type ConfigManagerImpl struct {
	defaultConfig StrategyConfig
	configFactory func() StrategyConfig // фабрика для создания новых экземпляров
}

func NewConfigManager(defaultConfig StrategyConfig, factory func() StrategyConfig) *ConfigManagerImpl {
	return &ConfigManagerImpl{
		defaultConfig: defaultConfig,
		configFactory: factory,
	}
}

func (cm *ConfigManagerImpl) DefaultConfig() StrategyConfig {
	return cm.defaultConfig
}

// LoadFromJSON заполняет значения по умолчанию из тегов `default`,
// поверх них накладывает JSON и проверяет результат.
func (cm *ConfigManagerImpl) LoadFromJSON(raw json.RawMessage) (StrategyConfig, error) {
	config := cm.configFactory()
	if err := defaults.Set(config); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	if err := json.Unmarshal(raw, config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ============================================================================
// GridSearchOptimizer - универсальный оптимизатор через grid search
// ============================================================================

type GridSearchOptimizer struct {
	slippageProvider *SlippageProvider
	configGenerator  func() []StrategyConfig // генератор конфигураций для перебора
	fallback         StrategyConfig
}

func NewGridSearchOptimizer(
	slippageProvider *SlippageProvider,
	configGenerator func() []StrategyConfig,
	fallback StrategyConfig,
) *GridSearchOptimizer {
	return &GridSearchOptimizer{
		slippageProvider: slippageProvider,
		configGenerator:  configGenerator,
		fallback:         fallback,
	}
}

func (gso *GridSearchOptimizer) Optimize(candles []Candle, generator SignalGenerator) StrategyConfig {
	configs := gso.configGenerator()

	// Фильтруем только валидные конфигурации
	validConfigs := lo.Filter(configs, func(cfg StrategyConfig, _ int) bool {
		return cfg.Validate() == nil
	})

	if len(validConfigs) == 0 || len(candles) == 0 {
		log.Warn().Int("candles", len(candles)).Msg("no valid configs for optimization, using fallback")
		return gso.fallback
	}

	// Параллельно тестируем все конфигурации; каждая получает свой проход по свечам
	configsWithProfit := lop.Map(validConfigs, func(cfg StrategyConfig, _ int) lo.Tuple2[StrategyConfig, float64] {
		signals := generator.GenerateSignals(candles, cfg)
		result, err := Backtest(candles, signals, gso.slippageProvider.GetSlippage())
		if err != nil {
			return lo.Tuple2[StrategyConfig, float64]{A: cfg, B: math.Inf(-1)}
		}
		return lo.Tuple2[StrategyConfig, float64]{A: cfg, B: result.TotalProfit}
	})

	// Находим лучшую конфигурацию; при равной прибыли выигрывает более ранняя в сетке
	best := lo.MaxBy(configsWithProfit, func(a, b lo.Tuple2[StrategyConfig, float64]) bool {
		return a.B > b.B
	})

	log.Debug().Str("config", best.A.String()).Float64("profit", best.B).Msg("best config found")
	return best.A
}

type StrategyBase struct {
	name             string
	signalGenerator  SignalGenerator
	configManager    ConfigManager
	configOptimizer  ConfigOptimizer
	slippageProvider *SlippageProvider
}

// NewStrategyBase - конструктор с явными зависимостями (Dependency Injection)
func NewStrategyBase(
	name string,
	signalGenerator SignalGenerator,
	configManager ConfigManager,
	configOptimizer ConfigOptimizer,
	slippageProvider *SlippageProvider,
) *StrategyBase {
	return &StrategyBase{
		name:             name,
		signalGenerator:  signalGenerator,
		configManager:    configManager,
		configOptimizer:  configOptimizer,
		slippageProvider: slippageProvider,
	}
}

func (sb *StrategyBase) Name() string {
	return sb.name
}

func (sb *StrategyBase) GenerateSignals(candles []Candle, config StrategyConfig) []SignalType {
	return sb.signalGenerator.GenerateSignals(candles, config)
}

func (sb *StrategyBase) Optimize(candles []Candle, generator SignalGenerator) StrategyConfig {
	return sb.configOptimizer.Optimize(candles, generator)
}

func (sb *StrategyBase) DefaultConfig() StrategyConfig {
	return sb.configManager.DefaultConfig()
}

func (sb *StrategyBase) LoadFromJSON(raw json.RawMessage) (StrategyConfig, error) {
	return sb.configManager.LoadFromJSON(raw)
}

func (sb *StrategyBase) GetSlippage() float64 {
	return sb.slippageProvider.GetSlippage()
}

func (sb *StrategyBase) SetSlippage(slippage float64) {
	sb.slippageProvider.SetSlippage(slippage)
}

// Реестр заполняется из init() пакетов стратегий и дальше только читается.
var strategyRegistry = make(map[string]TradingStrategy)

func RegisterStrategy(strategy TradingStrategy) {
	strategyRegistry[strategy.Name()] = strategy
}

func GetStrategy(name string) (TradingStrategy, bool) {
	strategy, ok := strategyRegistry[name]
	return strategy, ok
}

// GetStrategyNames возвращает имена зарегистрированных стратегий в алфавитном порядке
func GetStrategyNames() []string {
	names := lo.Keys(strategyRegistry)
	sort.Strings(names)
	return names
}
