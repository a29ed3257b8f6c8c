package backtester

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"renkobt/internal"
	"renkobt/internal/config"
	"renkobt/internal/metrics"
	"renkobt/internal/renko"
	_ "renkobt/strategies/simple"
	_ "renkobt/strategies/trend"
)

func testCandles() []internal.Candle {
	closes := []float64{100, 100, 102, 104, 96, 92, 95, 99, 103, 108, 104, 98}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]internal.Candle, len(closes))
	for i, c := range closes {
		ts := start.Add(time.Duration(i) * time.Hour)
		candles[i] = internal.Candle{
			Open: internal.Price(c), High: internal.Price(c), Low: internal.Price(c), Close: internal.Price(c),
			Volume: "10", Time: ts.Format(time.RFC3339), ParsedTime: ts,
		}
	}
	return candles
}

func testConfig(t *testing.T, strategy string) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Strategy = strategy
	cfg.Optimize = false
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestSingleStrategyRunner_WithBenchmark(t *testing.T) {
	var buf bytes.Buffer
	runner, err := NewRunner(testConfig(t, "renko_levels_strength"), NewWriterPrinter(&buf))
	if err != nil {
		t.Fatal(err)
	}

	results, err := Run(runner, "renko_levels_strength", testCandles())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected strategy + benchmark, got %d results", len(results))
	}

	names := []string{results[0].Name, results[1].Name}
	if !strings.Contains(strings.Join(names, ","), "buy_and_hold") {
		t.Errorf("benchmark missing from results: %v", names)
	}
	if results[0].TotalProfit < results[1].TotalProfit {
		t.Errorf("results must be sorted by profit: %+v", results)
	}
	if !strings.Contains(buf.String(), "renko_levels_strength") || !strings.Contains(buf.String(), "🥇") {
		t.Errorf("unexpected printer output:\n%s", buf.String())
	}
}

func TestRunner_ObservesRenkoRows(t *testing.T) {
	rowsOf := func(strategy, mode string) float64 {
		return testutil.ToFloat64(metrics.RenkoRowsTotal.WithLabelValues(strategy, mode))
	}
	levelsBefore := rowsOf("renko_levels_continuation", "levels")
	bricksBefore := rowsOf("renko_bricks_continuation", "bricks")

	candles := testCandles()
	for _, name := range []string{"renko_levels_continuation", "renko_bricks_continuation"} {
		runner, err := NewSingleStrategyRunner(testConfig(t, name), nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := runner.RunStrategy(name, candles); err != nil {
			t.Fatal(err)
		}
	}

	if got := rowsOf("renko_levels_continuation", "levels") - levelsBefore; got != float64(len(candles)) {
		t.Errorf("levels mode must count one row per candle, got %v", got)
	}
	if got := rowsOf("renko_bricks_continuation", "bricks") - bricksBefore; got <= 0 {
		t.Errorf("bricks mode rows not observed without saving, got %v", got)
	}
}

func TestRunner_ForeignVariantConfigFallsBack(t *testing.T) {
	cfg := testConfig(t, "renko_bricks_strength")
	cfg.StrategyConfigs = filepath.Join(t.TempDir(), "configs.json")
	raw := `{"renko_bricks_strength": {"window_size": 3, "mode": "levels"}}`
	if err := os.WriteFile(cfg.StrategyConfigs, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	runner, err := NewSingleStrategyRunner(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	results, err := runner.RunStrategy("renko_bricks_strength", testCandles())
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Name != "renko_bricks_strength" {
			continue
		}
		if rc := r.Config.(*renko.Config); rc.Mode != renko.ModeBricks || rc.WindowSize != 100 {
			t.Errorf("foreign variant config must be rejected, got %s", rc)
		}
		return
	}
	t.Fatal("strategy result missing")
}

func TestSingleStrategyRunner_Unknown(t *testing.T) {
	runner, err := NewSingleStrategyRunner(testConfig(t, "nope"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := runner.RunStrategy("nope", testCandles()); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
	if _, err := runner.RunAllStrategies(testCandles()); err == nil {
		t.Fatal("single runner must refuse RunAllStrategies")
	}
}

func TestRunner_StrategyConfigsFile(t *testing.T) {
	cfg := testConfig(t, "renko_levels_continuation")
	cfg.StrategyConfigs = filepath.Join(t.TempDir(), "configs.json")
	raw := `{"slippage": 0, "renko_levels_continuation": {"window_size": 3, "step_percentage": 0.01}}`
	if err := os.WriteFile(cfg.StrategyConfigs, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	runner, err := NewSingleStrategyRunner(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if runner.GetSlippage() != 0 {
		t.Errorf("slippage from file not applied: %v", runner.GetSlippage())
	}

	results, err := runner.RunStrategy("renko_levels_continuation", testCandles())
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Name != "renko_levels_continuation" {
			continue
		}
		rc, ok := r.Config.(*renko.Config)
		if !ok || rc.WindowSize != 3 || rc.StepPercentage != 0.01 || rc.Mode != renko.ModeLevels {
			t.Errorf("config from file not used: %v", r.Config)
		}
		return
	}
	t.Fatal("strategy result missing")
}

func TestRunner_BadConfigsFile(t *testing.T) {
	cfg := testConfig(t, "all")
	cfg.StrategyConfigs = filepath.Join(t.TempDir(), "configs.json")
	if err := os.WriteFile(cfg.StrategyConfigs, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewRunner(cfg, nil); err == nil {
		t.Fatal("expected error for malformed configs file")
	}
}

func TestParallelStrategyRunner_RunAll(t *testing.T) {
	cfg := testConfig(t, "all")
	runner, err := NewParallelStrategyRunner(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	results, err := runner.RunAllStrategies(testCandles())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(internal.GetStrategyNames()) {
		t.Fatalf("expected %d results, got %d", len(internal.GetStrategyNames()), len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].TotalProfit < results[i].TotalProfit {
			t.Fatalf("results not sorted at %d: %v < %v", i, results[i-1].TotalProfit, results[i].TotalProfit)
		}
	}

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "optimized_configs.json"))
	if err != nil {
		t.Fatalf("optimized configs not saved: %v", err)
	}
	var saved map[string]json.RawMessage
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatal(err)
	}
	if _, ok := saved["renko_bricks_strength"]; !ok {
		t.Errorf("renko config missing from saved file: %s", data)
	}
	if _, ok := saved["slippage"]; !ok {
		t.Errorf("slippage missing from saved file: %s", data)
	}
}

func TestFileSaver_SaveTopStrategies(t *testing.T) {
	dir := t.TempDir()
	candles := testCandles()
	levels := renko.DefaultConfig()
	levels.Mode = renko.ModeLevels
	results := []BenchmarkResult{
		{Name: "renko_levels_strength", TotalProfit: 0.1, Config: &levels},
		{Name: "buy_and_hold", TotalProfit: 0.05},
	}

	saver := NewFileSaver(dir)
	if err := saver.SaveTopStrategies(candles, results, "data/tmos.json", 2); err != nil {
		t.Fatalf("SaveTopStrategies returned error: %v", err)
	}

	for _, name := range []string{
		"tmos_renko_levels_strength_signals.json",
		"tmos_buy_and_hold_signals.json",
		"tmos_renko_levels_strength_renko.csv",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "tmos_buy_and_hold_renko.csv")); err == nil {
		t.Error("buy_and_hold has no renko table")
	}

	f, err := os.Open(filepath.Join(dir, "tmos_renko_levels_strength_renko.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	lines := 0
	var header string
	for sc.Scan() {
		if lines == 0 {
			header = sc.Text()
		}
		lines++
	}
	if header != strings.Join(renko.Columns, ",") {
		t.Errorf("unexpected header %q", header)
	}
	if lines != len(candles)+1 {
		t.Errorf("levels table must have one row per candle, got %d lines", lines)
	}

	var payload struct {
		Strategy string             `json:"strategy"`
		Candles  []CandleWithSignal `json:"candles"`
	}
	data, err := os.ReadFile(filepath.Join(dir, "tmos_renko_levels_strength_signals.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Strategy != "renko_levels_strength" || len(payload.Candles) != len(candles) {
		t.Errorf("unexpected payload: strategy=%s candles=%d", payload.Strategy, len(payload.Candles))
	}
}

func TestFileSaver_TopN(t *testing.T) {
	saver := NewFileSaver(t.TempDir())
	if err := saver.SaveTopStrategies(testCandles(), nil, "x.json", 0); err != nil {
		t.Errorf("topN=0 must be a no-op, got %v", err)
	}
	if err := saver.SaveTopStrategies(testCandles(), []BenchmarkResult{{Name: "buy_and_hold"}}, "x.json", 3); err == nil {
		t.Error("expected error when fewer results than topN")
	}
}
