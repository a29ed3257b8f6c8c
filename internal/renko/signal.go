package renko

import (
	"fmt"

	"renkobt/internal"
)

// Rule — набор правил генерации сигналов.
type Rule int

const (
	// RuleStrengthGated: покупка на свежем развороте вверх или при силе тренда >= 2.
	RuleStrengthGated Rule = iota
	// RuleContinuationGated: покупка на любой строке восходящего тренда с известным предыдущим трендом.
	RuleContinuationGated
)

var ruleNames = [...]string{"strength", "continuation"}

func (r Rule) String() string {
	if r < 0 || int(r) >= len(ruleNames) {
		return fmt.Sprintf("Rule(%d)", int(r))
	}
	return ruleNames[r]
}

func (r Rule) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rule) UnmarshalText(text []byte) error {
	for i, name := range ruleNames {
		if string(text) == name {
			*r = Rule(i)
			return nil
		}
	}
	return fmt.Errorf("unknown signal rule %q", text)
}

// buy решает, покупать ли на строке. Неопределённый предыдущий тренд
// считается нисходящим: первый тренд вверх — это свежий разворот.
func (r Rule) buy(prev Trend, row Row) bool {
	if row.Trend != TrendUp {
		return false
	}
	reversal := prev != TrendUp
	switch r {
	case RuleContinuationGated:
		return reversal || prev == TrendUp
	default:
		return reversal || row.Strength >= 2
	}
}

// ApplyRule проставляет Buy/Sell на месте. Предыдущий тренд берётся со смещением
// на одну строку, поэтому первая строка и строки до появления тренда остаются 0/0.
func ApplyRule(rows []Row, rule Rule) {
	for i := range rows {
		rows[i].Buy, rows[i].Sell = 0, 0
		if i == 0 || rows[i].Trend == TrendUnset {
			continue
		}
		if rule.buy(rows[i-1].Trend, rows[i]) {
			rows[i].Buy = 1
		} else {
			rows[i].Sell = 1
		}
	}
}

// ToSignals раскладывает строки по свечам: сигнал строки попадает на свечу Index,
// остальные свечи получают HOLD.
func ToSignals(rows []Row, n int) []internal.SignalType {
	signals := make([]internal.SignalType, n)
	for _, row := range rows {
		if row.Index < 0 || row.Index >= n {
			continue
		}
		signals[row.Index] = internal.SignalFromFlags(row.Buy, row.Sell)
	}
	return signals
}
