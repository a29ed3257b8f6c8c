// backtest.go — long-only симулятор с одной позицией
package internal

import (
	"fmt"
)

const initialCash = 10000.0

type BacktestResult struct {
	TotalProfit     float64
	TradeCount      int // завершённые пары BUY+SELL
	FinalPortfolio  float64
	PortfolioValues []float64
}

// Backtest прогоняет сигналы по свечам. Повторные BUY в позиции и SELL без позиции
// игнорируются, незакрытая позиция оценивается по последней цене.
func Backtest(candles []Candle, signals []SignalType, slippage float64) (BacktestResult, error) {
	if len(candles) != len(signals) {
		return BacktestResult{}, fmt.Errorf("mismatch between candles (%d) and signals (%d)", len(candles), len(signals))
	}
	if len(candles) == 0 {
		return BacktestResult{FinalPortfolio: initialCash, PortfolioValues: []float64{initialCash}}, nil
	}

	cash := initialCash
	holdings := 0.0
	portfolioValues := make([]float64, 0, len(candles)+1)
	portfolioValues = append(portfolioValues, cash)
	tradeCount := 0

	for i, signal := range signals {
		price := candles[i].Close.ToFloat64()

		switch signal {
		case BUY:
			if holdings == 0 && cash > 0 {
				effectivePrice := price + slippage
				holdings = cash / effectivePrice
				cash = 0
			}
		case SELL:
			if holdings > 0 {
				effectivePrice := price - slippage
				cash = holdings * effectivePrice
				holdings = 0
				tradeCount++
			}
		}

		portfolioValues = append(portfolioValues, cash+holdings*price)
	}

	finalPrice := candles[len(candles)-1].Close.ToFloat64()
	finalPortfolio := cash + holdings*finalPrice
	profit := (finalPortfolio - initialCash) / initialCash

	return BacktestResult{
		TotalProfit:     profit,
		TradeCount:      tradeCount,
		FinalPortfolio:  finalPortfolio,
		PortfolioValues: portfolioValues,
	}, nil
}

// SignalFromFlags — вспомогательное преобразование флагов buy/sell в SignalType
func SignalFromFlags(buy, sell int) SignalType {
	switch {
	case buy == 1:
		return BUY
	case sell == 1:
		return SELL
	default:
		return HOLD
	}
}
