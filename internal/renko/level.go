package renko

import (
	"math"
)

// Annotate размечает каждую строку текущим уровнем, трендом и силой тренда.
// Строк на выходе столько же, сколько на входе.
func Annotate(observations []Observation, steps []Step) []Row {
	rows := make([]Row, 0, len(observations))
	start := firstUsable(observations, steps)

	var state State
	for i, obs := range observations {
		row := Row{
			Time:   obs.Time,
			Index:  i,
			Open:   obs.Open,
			High:   obs.High,
			Low:    obs.Low,
			Close:  obs.Close,
			Volume: obs.Volume,
			Level:  math.NaN(),
		}
		if i < len(steps) {
			row.StepSize = steps[i].Size
		}

		if start < 0 || i < start {
			rows = append(rows, row)
			continue
		}
		if i == start {
			state = NewState(obs.Close)
		} else {
			state, _ = state.NextLevel(obs.Close, steps[i].Size)
		}

		row.Level = state.Anchor
		row.Trend = state.Trend
		row.Strength = state.Strength
		row.LevelCount = state.LevelCount
		rows = append(rows, row)
	}
	return rows
}
