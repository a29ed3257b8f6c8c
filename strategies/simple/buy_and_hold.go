package simple

import (
	"renkobt/internal"
)

// BuyAndHoldConfig — у эталонной стратегии нет параметров.
type BuyAndHoldConfig struct{}

func (c *BuyAndHoldConfig) Validate() error { return nil }

func (c *BuyAndHoldConfig) String() string { return "BuyAndHold()" }

type BuyAndHoldSignalGenerator struct{}

// GenerateSignals — покупка на первой свече, дальше держим.
func (sg *BuyAndHoldSignalGenerator) GenerateSignals(candles []internal.Candle, _ internal.StrategyConfig) []internal.SignalType {
	signals := make([]internal.SignalType, len(candles))
	if len(candles) > 0 {
		signals[0] = internal.BUY
	}
	return signals
}

func NewBuyAndHoldStrategy(slippage float64) internal.TradingStrategy {
	slippageProvider := internal.NewSlippageProvider(slippage)
	config := &BuyAndHoldConfig{}

	// Перебирать нечего: сетка из одной конфигурации
	optimizer := internal.NewGridSearchOptimizer(
		slippageProvider,
		func() []internal.StrategyConfig { return []internal.StrategyConfig{config} },
		config,
	)

	return internal.NewStrategyBase(
		"buy_and_hold",
		&BuyAndHoldSignalGenerator{},
		internal.NewConfigManager(config, func() internal.StrategyConfig { return &BuyAndHoldConfig{} }),
		optimizer,
		slippageProvider,
	)
}

func init() {
	internal.RegisterStrategy(NewBuyAndHoldStrategy(0.01))
}
