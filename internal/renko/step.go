package renko

import (
	talib "github.com/markcheno/go-talib"
)

// Step — скользящее среднее и высота кирпича для одной строки.
type Step struct {
	RollingAvg float64
	Size       float64
}

// Defined сообщает, можно ли по этому шагу пересекать уровни.
func (s Step) Defined() bool {
	return finite(s.Size) && s.Size > 0
}

// ComputeSteps считает среднее close по последним window строкам
// (на старте окно расширяется, минимум одна строка) и шаг = среднее * pct.
// Результат параллелен входу, без пропусков.
func ComputeSteps(closes []float64, window int, pct float64) []Step {
	steps := make([]Step, len(closes))
	if len(closes) == 0 {
		return steps
	}
	if window < 1 {
		window = 1
	}

	// расширяющееся окно до первой полной выборки
	head := min(window-1, len(closes))
	sum := 0.0
	for i := 0; i < head; i++ {
		sum += closes[i]
		steps[i].RollingAvg = sum / float64(i+1)
	}

	// talib.Sma заполняет значения начиная с индекса window-1
	if len(closes) >= window {
		sma := talib.Sma(closes, window)
		for i := window - 1; i < len(closes); i++ {
			steps[i].RollingAvg = sma[i]
		}
	}

	for i := range steps {
		steps[i].Size = steps[i].RollingAvg * pct
	}
	return steps
}
