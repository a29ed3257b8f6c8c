package renko

import (
	"testing"

	"renkobt/internal"
)

func rowsOf(trends []Trend, strengths []int) []Row {
	rows := make([]Row, len(trends))
	for i := range trends {
		rows[i] = Row{Index: i, Trend: trends[i], Strength: strengths[i]}
	}
	return rows
}

func TestApplyRule(t *testing.T) {
	trends := []Trend{TrendUp, TrendUp, TrendDown, TrendUp, TrendUp, TrendUp, TrendDown}
	strengths := []int{1, 2, 1, 1, 2, 3, 1}

	tests := []struct {
		name     string
		rule     Rule
		trends   []Trend
		strength []int
		wantBuy  []int
		wantSell []int
	}{
		{
			name:     "strength gated",
			rule:     RuleStrengthGated,
			trends:   trends,
			strength: strengths,
			wantBuy:  []int{0, 1, 0, 1, 1, 1, 0},
			wantSell: []int{0, 0, 1, 0, 0, 0, 1},
		},
		{
			name:     "continuation gated",
			rule:     RuleContinuationGated,
			trends:   trends,
			strength: strengths,
			wantBuy:  []int{0, 1, 0, 1, 1, 1, 0},
			wantSell: []int{0, 0, 1, 0, 0, 0, 1},
		},
		{
			// up со силой 1 после up: strength-gated продаёт, continuation-gated покупает
			name:     "strength gated weak continuation",
			rule:     RuleStrengthGated,
			trends:   []Trend{TrendDown, TrendUp, TrendUp},
			strength: []int{1, 1, 1},
			wantBuy:  []int{0, 1, 0},
			wantSell: []int{0, 0, 1},
		},
		{
			name:     "continuation gated weak continuation",
			rule:     RuleContinuationGated,
			trends:   []Trend{TrendDown, TrendUp, TrendUp},
			strength: []int{1, 1, 1},
			wantBuy:  []int{0, 1, 1},
			wantSell: []int{0, 0, 0},
		},
		{
			name:     "no trend yet",
			rule:     RuleStrengthGated,
			trends:   []Trend{TrendUnset, TrendUnset, TrendUp, TrendDown},
			strength: []int{0, 0, 1, 1},
			wantBuy:  []int{0, 0, 1, 0},
			wantSell: []int{0, 0, 0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := rowsOf(tt.trends, tt.strength)
			ApplyRule(rows, tt.rule)
			for i, r := range rows {
				if r.Buy != tt.wantBuy[i] || r.Sell != tt.wantSell[i] {
					t.Errorf("row %d: buy/sell = %d/%d, want %d/%d", i, r.Buy, r.Sell, tt.wantBuy[i], tt.wantSell[i])
				}
			}
		})
	}
}

func TestApplyRule_Exclusive(t *testing.T) {
	obs := observationsOf(100, 104, 99, 93, 97, 101, 108, 112, 103, 99, 105, 110)
	for _, mode := range []Mode{ModeBricks, ModeLevels} {
		for _, rule := range []Rule{RuleStrengthGated, RuleContinuationGated} {
			rows := Run(obs, Config{WindowSize: 3, StepPercentage: 0.03, Mode: mode, Rule: rule})
			for i, r := range rows {
				defined := i > 0 && r.Trend != TrendUnset
				if defined && r.Buy+r.Sell != 1 {
					t.Errorf("%s/%s row %d: exactly one of buy/sell expected, got %d/%d", mode, rule, i, r.Buy, r.Sell)
				}
				if !defined && (r.Buy != 0 || r.Sell != 0) {
					t.Errorf("%s/%s row %d: no signal expected, got %d/%d", mode, rule, i, r.Buy, r.Sell)
				}
			}
		}
	}
}

func TestToSignals(t *testing.T) {
	rows := []Row{
		{Index: 1, Buy: 1},
		{Index: 3, Sell: 1},
		{Index: 4},
		{Index: 9, Buy: 1}, // вне диапазона
	}
	got := ToSignals(rows, 5)
	want := []internal.SignalType{internal.HOLD, internal.BUY, internal.HOLD, internal.SELL, internal.HOLD}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("signal %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRule_Text(t *testing.T) {
	var r Rule
	if err := r.UnmarshalText([]byte("continuation")); err != nil || r != RuleContinuationGated {
		t.Errorf("unexpected rule %v (err %v)", r, err)
	}
	if err := r.UnmarshalText([]byte("always")); err == nil {
		t.Error("unknown rule must fail")
	}
	if RuleStrengthGated.String() != "strength" {
		t.Errorf("unexpected name %q", RuleStrengthGated.String())
	}
}
