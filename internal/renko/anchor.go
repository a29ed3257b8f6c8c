package renko

import (
	"github.com/shopspring/decimal"
)

// Остаток от деления считается в десятичной арифметике: цена, ровно кратная шагу,
// даёт нулевой остаток, а не 0.9999999 шага.

// floorToStep — close - (close mod step).
func floorToStep(price, step float64) float64 {
	p := decimal.NewFromFloat(price)
	s := decimal.NewFromFloat(step)
	return p.Sub(p.Mod(s)).InexactFloat64()
}

// ceilToStep — close + (step - (close mod step)).
// Для цены, кратной шагу, результат на целый шаг выше цены.
func ceilToStep(price, step float64) float64 {
	p := decimal.NewFromFloat(price)
	s := decimal.NewFromFloat(step)
	return p.Add(s.Sub(p.Mod(s))).InexactFloat64()
}

// movedSteps — прошла ли цена от from до to не меньше n шагов (to - from >= n*step).
func movedSteps(from, to, step, n float64) bool {
	diff := decimal.NewFromFloat(to).Sub(decimal.NewFromFloat(from))
	need := decimal.NewFromFloat(step).Mul(decimal.NewFromFloat(n))
	return diff.Cmp(need) >= 0
}

// wholeSteps — floor((to - from) / step), делится точно, без округления частного.
func wholeSteps(from, to, step float64) int64 {
	diff := decimal.NewFromFloat(to).Sub(decimal.NewFromFloat(from))
	q, r := diff.QuoRem(decimal.NewFromFloat(step), 0)
	if r.Sign() < 0 {
		q = q.Sub(decimal.NewFromInt(1))
	}
	return q.IntPart()
}

// shiftBySteps — from + levels*step.
func shiftBySteps(from, step float64, levels int64) float64 {
	d := decimal.NewFromFloat(step).Mul(decimal.NewFromInt(levels))
	return decimal.NewFromFloat(from).Add(d).InexactFloat64()
}
