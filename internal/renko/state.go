package renko

import (
	"math"
)

// Trend — направление текущего кирпича/уровня.
type Trend int8

const (
	TrendUnset Trend = iota
	TrendUp
	TrendDown
)

func (t Trend) String() string {
	return [...]string{"unset", "up", "down"}[t]
}

// Value — представление для таблицы: 1 вверх, -1 вниз, 0 не определён.
func (t Trend) Value() int {
	switch t {
	case TrendUp:
		return 1
	case TrendDown:
		return -1
	default:
		return 0
	}
}

const (
	continuationSteps = 1.0
	// в режиме кирпичей разворот требует двух шагов против тренда
	brickReversalSteps = 2.0
)

// State — состояние автомата, которое протаскивается через весь проход.
// Переходы возвращают новое значение и не меняют исходное.
type State struct {
	Anchor     float64 // last_brick_price / current_level
	Trend      Trend
	Strength   int
	High       float64 // экстремумы с момента последнего кирпича
	Low        float64
	LevelCount int // строк без пересечения уровня, только для режима уровней
}

// NewState инициализирует автомат первой ценой.
func NewState(first float64) State {
	return State{Anchor: first, High: first, Low: first}
}

func (s State) observe(price float64) State {
	s.High = math.Max(s.High, price)
	s.Low = math.Min(s.Low, price)
	return s
}

// turn продлевает серию в том же направлении или начинает новую.
func (s State) turn(dir Trend) State {
	if s.Trend == dir {
		s.Strength++
	} else {
		s.Trend = dir
		s.Strength = 1
	}
	return s
}

func (s State) reset(price float64) State {
	s.High = price
	s.Low = price
	return s
}

// NextBrick — переход в режиме кирпичей. Продолжение требует шага по тренду,
// разворот — двух шагов против. Третье значение false, пока цена внутри коридора.
func (s State) NextBrick(obs Observation, index int, step float64) (State, Brick, bool) {
	price := obs.Close
	if !finite(price) {
		return s, Brick{}, false
	}
	s = s.observe(price)
	if !(finite(step) && step > 0) {
		return s, Brick{}, false
	}

	up := movedSteps(s.Anchor, price, step, continuationSteps)
	down := movedSteps(price, s.Anchor, step, continuationSteps)

	var dir Trend
	switch s.Trend {
	case TrendUnset:
		if up {
			dir = TrendUp
		} else if down {
			dir = TrendDown
		}
	case TrendUp:
		if up {
			dir = TrendUp
		} else if movedSteps(price, s.Anchor, step, brickReversalSteps) {
			dir = TrendDown
		}
	case TrendDown:
		if down {
			dir = TrendDown
		} else if movedSteps(s.Anchor, price, step, brickReversalSteps) {
			dir = TrendUp
		}
	}
	if dir == TrendUnset {
		return s, Brick{}, false
	}

	b := Brick{
		Time:     obs.Time,
		Index:    index,
		Open:     s.Anchor,
		Close:    price,
		Volume:   obs.Volume,
		StepSize: step,
	}
	if dir == TrendUp {
		b.High = price
		if s.Trend == TrendUp {
			b.Low = s.Anchor
		} else {
			b.Low = s.Low
		}
		s.Anchor = floorToStep(price, step)
	} else {
		b.Low = price
		if s.Trend == TrendDown {
			b.High = s.Anchor
		} else {
			b.High = s.High
		}
		s.Anchor = ceilToStep(price, step)
	}

	s = s.turn(dir).reset(price)
	b.Trend = dir
	b.Strength = s.Strength
	b.Anchor = s.Anchor
	return s, b, true
}

// NextLevel — переход в режиме уровней. Уровень сдвигается на целое число шагов,
// разворот срабатывает уже на одном шаге. Второе значение true, если уровень пересечён.
func (s State) NextLevel(price, step float64) (State, bool) {
	if !finite(price) {
		s.LevelCount++
		return s, false
	}
	s = s.observe(price)
	if !(finite(step) && step > 0) {
		s.LevelCount++
		return s, false
	}

	levelsUp := wholeSteps(s.Anchor, s.High, step)
	levelsDown := wholeSteps(s.Low, s.Anchor, step)

	switch {
	case levelsUp >= 1 && (levelsDown < 1 || price >= s.Anchor):
		s.Anchor = shiftBySteps(s.Anchor, step, levelsUp)
		s = s.turn(TrendUp)
	case levelsDown >= 1:
		s.Anchor = shiftBySteps(s.Anchor, step, -levelsDown)
		s = s.turn(TrendDown)
	default:
		s.LevelCount++
		return s, false
	}

	s = s.reset(price)
	s.LevelCount = 0
	return s, true
}
