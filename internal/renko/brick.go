package renko

import (
	"iter"
	"time"
)

// Brick — кирпич, выпущенный в режиме схлопывания.
type Brick struct {
	Time     time.Time
	Index    int // индекс наблюдения, на котором кирпич закрылся
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	Trend    Trend
	Strength int
	StepSize float64
	Anchor   float64 // якорь после кирпича, Open следующего кирпича
}

// Row превращает кирпич в строку выходной таблицы.
func (b Brick) Row() Row {
	return Row{
		Time:     b.Time,
		Index:    b.Index,
		Open:     b.Open,
		High:     b.High,
		Low:      b.Low,
		Close:    b.Close,
		Volume:   b.Volume,
		StepSize: b.StepSize,
		Level:    b.Anchor,
		Trend:    b.Trend,
		Strength: b.Strength,
	}
}

// firstUsable — первая строка с конечной ценой и определённым шагом.
func firstUsable(observations []Observation, steps []Step) int {
	for i := range observations {
		if i < len(steps) && finite(observations[i].Close) && steps[i].Defined() {
			return i
		}
	}
	return -1
}

// Bricks лениво выпускает кирпичи по мере прохода ряда. limit > 0 останавливает
// последовательность после limit кирпичей.
func Bricks(observations []Observation, steps []Step, limit int) iter.Seq[Brick] {
	return func(yield func(Brick) bool) {
		start := firstUsable(observations, steps)
		if start < 0 {
			return
		}

		state := NewState(observations[start].Close)
		emitted := 0
		for i := start + 1; i < len(observations); i++ {
			var (
				b  Brick
				ok bool
			)
			state, b, ok = state.NextBrick(observations[i], i, steps[i].Size)
			if !ok {
				continue
			}
			if !yield(b) {
				return
			}
			emitted++
			if limit > 0 && emitted >= limit {
				return
			}
		}
	}
}
