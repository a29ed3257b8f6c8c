// Package renko строит процентные Renko-кирпичи поверх OHLCV-ряда и превращает
// последовательность кирпичей в сигналы buy/sell.
//
// Конвейер однопроходный: ComputeSteps -> Bricks/Annotate -> ApplyRule.
// Состояние автомата (State) передаётся явно от строки к строке.
package renko

import (
	"math"
	"time"

	"renkobt/internal"
)

// Observation — одна входная свеча. После чтения не меняется.
type Observation struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// ObservationsFromCandles переводит свечи бэктестера во входной ряд.
func ObservationsFromCandles(candles []internal.Candle) []Observation {
	out := make([]Observation, len(candles))
	for i, c := range candles {
		out[i] = Observation{
			Time:   c.ToTime(),
			Open:   c.Open.ToFloat64(),
			High:   c.High.ToFloat64(),
			Low:    c.Low.ToFloat64(),
			Close:  c.Close.ToFloat64(),
			Volume: c.VolumeFloat64(),
		}
	}
	return out
}

// Closes возвращает цены закрытия ряда.
func Closes(observations []Observation) []float64 {
	closes := make([]float64, len(observations))
	for i, o := range observations {
		closes[i] = o.Close
	}
	return closes
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
