package backtester

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"renkobt/internal"
	"renkobt/internal/config"
	"renkobt/internal/metrics"
	"renkobt/internal/renko"
)

const benchmarkStrategy = "buy_and_hold"

// BaseStrategyRunner — общая логика запуска стратегий
type BaseStrategyRunner struct {
	cfg      config.Config
	configs  map[string]json.RawMessage // конфигурации стратегий из файла
	slippage float64
}

func newBaseRunner(cfg config.Config) (BaseStrategyRunner, error) {
	r := BaseStrategyRunner{cfg: cfg, slippage: cfg.Slippage}
	if cfg.StrategyConfigs != "" {
		if err := r.loadConfigsFromFile(cfg.StrategyConfigs); err != nil {
			return r, err
		}
	}
	return r, nil
}

// loadConfigsFromFile — JSON вида {"slippage": 0.01, "<стратегия>": {...}}.
// Ключ slippage перекрывает проскальзывание из конфигурации приложения.
func (r *BaseStrategyRunner) loadConfigsFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read strategy configs %s: %w", path, err)
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("parse strategy configs %s: %w", path, err)
	}

	if raw, ok := all["slippage"]; ok {
		if err := json.Unmarshal(raw, &r.slippage); err != nil {
			log.Warn().Err(err).Float64("slippage", r.cfg.Slippage).Msg("⚠️  неверный тип проскальзывания, используем значение по умолчанию")
			r.slippage = r.cfg.Slippage
		}
		delete(all, "slippage")
	}

	r.configs = all
	log.Info().Int("strategies", len(r.configs)).Str("file", path).Msg("✅ загружены конфигурации стратегий")
	return nil
}

// GetSlippage — проскальзывание, с которым запускаются стратегии
func (r *BaseStrategyRunner) GetSlippage() float64 {
	return r.slippage
}

// resolveConfig: конфигурация из файла, затем оптимизация, затем значения по умолчанию
func (r *BaseStrategyRunner) resolveConfig(name string, strategy internal.TradingStrategy, candles []internal.Candle) internal.StrategyConfig {
	if raw, ok := r.configs[name]; ok {
		cfg, err := strategy.LoadFromJSON(raw)
		if err == nil {
			log.Debug().Str("strategy", name).Str("config", cfg.String()).Msg("используем конфигурацию из файла")
			return cfg
		}
		log.Warn().Err(err).Str("strategy", name).Msg("⚠️  ошибка загрузки конфигурации")
	}
	if r.cfg.Optimize {
		log.Debug().Str("strategy", name).Msg("🔄 оптимизация параметров")
		return strategy.Optimize(candles, strategy)
	}
	return strategy.DefaultConfig()
}

// runSingleStrategy — запуск одной стратегии с подбором конфигурации
func (r *BaseStrategyRunner) runSingleStrategy(name string, candles []internal.Candle) (*BenchmarkResult, error) {
	strategy, ok := internal.GetStrategy(name)
	if !ok {
		return nil, fmt.Errorf("стратегия %s не найдена", name)
	}
	strategy.SetSlippage(r.slippage)

	start := time.Now()
	cfg := r.resolveConfig(name, strategy, candles)
	signals, err := r.generateSignals(name, strategy, candles, cfg)
	if err != nil {
		return nil, err
	}

	result, err := internal.Backtest(candles, signals, r.slippage)
	if err != nil {
		return nil, fmt.Errorf("backtest %s: %w", name, err)
	}
	elapsed := time.Since(start)

	metrics.ObserveSignals(name, signals)
	metrics.ObserveRun(name, elapsed)

	return &BenchmarkResult{
		Name:           strategy.Name(),
		TotalProfit:    result.TotalProfit,
		TradeCount:     result.TradeCount,
		FinalPortfolio: result.FinalPortfolio,
		ExecutionTime:  elapsed,
		Config:         cfg,
	}, nil
}

// generateSignals — для Renko-стратегий сигналы берутся из таблицы конвейера,
// заодно учитываются её строки в метриках.
func (r *BaseStrategyRunner) generateSignals(name string, strategy internal.TradingStrategy, candles []internal.Candle, cfg internal.StrategyConfig) ([]internal.SignalType, error) {
	ts, ok := strategy.(TableStrategy)
	if !ok {
		return strategy.GenerateSignals(candles, cfg), nil
	}

	rows, err := ts.SignalTable(candles, cfg)
	if err != nil {
		return nil, fmt.Errorf("signal table %s: %w", name, err)
	}
	metrics.ObserveRows(name, ts.Mode(), rows)
	return renko.ToSignals(rows, len(candles)), nil
}

// saveOptimizedConfigs — сохраняет подобранные конфигурации в формате файла конфигураций
func (r *BaseStrategyRunner) saveOptimizedConfigs(results []BenchmarkResult) error {
	configs := make(map[string]any, len(results)+1)
	configs["slippage"] = r.slippage
	for _, res := range results {
		if res.Config != nil {
			configs[res.Name] = res.Config
		}
	}

	data, err := json.MarshalIndent(configs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal configs: %w", err)
	}

	filename := filepath.Join(r.cfg.OutputDir, "optimized_configs.json")
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	log.Info().Str("file", filename).Msg("💾 оптимизированные конфигурации сохранены")
	return nil
}

// ParallelStrategyRunner — параллельный запуск всех стратегий
type ParallelStrategyRunner struct {
	BaseStrategyRunner
	printer ResultPrinter
}

func NewParallelStrategyRunner(cfg config.Config, printer ResultPrinter) (*ParallelStrategyRunner, error) {
	base, err := newBaseRunner(cfg)
	if err != nil {
		return nil, err
	}
	return &ParallelStrategyRunner{BaseStrategyRunner: base, printer: printer}, nil
}

func (r *ParallelStrategyRunner) RunStrategy(name string, candles []internal.Candle) ([]BenchmarkResult, error) {
	result, err := r.runSingleStrategy(name, candles)
	if err != nil {
		return nil, err
	}
	return []BenchmarkResult{*result}, nil
}

// RunAllStrategies — все зарегистрированные стратегии, результаты отсортированы по прибыли
func (r *ParallelStrategyRunner) RunAllStrategies(candles []internal.Candle) ([]BenchmarkResult, error) {
	names := internal.GetStrategyNames()
	log.Info().
		Int("strategies", len(names)).
		Int("candles", len(candles)).
		Int("cpus", runtime.NumCPU()).
		Msg("🚀 запуск массового тестирования стратегий")

	startTime := time.Now()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]BenchmarkResult, 0, len(names))
	)

	for _, name := range names {
		wg.Add(1)
		go func(strategyName string) {
			defer wg.Done()

			result, err := r.runSingleStrategy(strategyName, candles)
			if err != nil {
				log.Error().Err(err).Str("strategy", strategyName).Msg("❌ ошибка при запуске стратегии")
				return
			}

			mu.Lock()
			results = append(results, *result)
			done := len(results)
			mu.Unlock()

			log.Info().
				Str("strategy", result.Name).
				Float64("profit_pct", result.TotalProfit*100).
				Int("trades", result.TradeCount).
				Dur("elapsed", result.ExecutionTime).
				Msg("✅ стратегия завершена")
			if r.printer != nil {
				r.printer.PrintProgress(done, len(names))
			}
		}(name)
	}
	wg.Wait()

	sortByProfit(results)
	log.Info().Dur("elapsed", time.Since(startTime)).Msg("⚡ все стратегии выполнены")

	if r.configs == nil && len(results) > 0 {
		if err := r.saveOptimizedConfigs(results); err != nil {
			log.Error().Err(err).Msg("❌ ошибка сохранения конфигураций")
		}
	}

	if r.printer != nil {
		r.printer.PrintComparison(results)
	}
	return results, nil
}

// SingleStrategyRunner — одна стратегия плюс buy & hold как бенчмарк
type SingleStrategyRunner struct {
	BaseStrategyRunner
	printer ResultPrinter
}

func NewSingleStrategyRunner(cfg config.Config, printer ResultPrinter) (*SingleStrategyRunner, error) {
	base, err := newBaseRunner(cfg)
	if err != nil {
		return nil, err
	}
	return &SingleStrategyRunner{BaseStrategyRunner: base, printer: printer}, nil
}

func (r *SingleStrategyRunner) RunStrategy(name string, candles []internal.Candle) ([]BenchmarkResult, error) {
	log.Info().Str("strategy", name).Int("candles", len(candles)).Msg("🎯 тестирование одиночной стратегии")

	mainResult, err := r.runSingleStrategy(name, candles)
	if err != nil {
		return nil, err
	}
	results := []BenchmarkResult{*mainResult}

	if name != benchmarkStrategy {
		bnh, err := r.runSingleStrategy(benchmarkStrategy, candles)
		if err != nil {
			log.Warn().Err(err).Msg("⚠️  бенчмарк недоступен")
		} else {
			results = append(results, *bnh)
		}
	}

	sortByProfit(results)
	if r.printer != nil {
		r.printer.PrintComparison(results)
	}
	return results, nil
}

func (r *SingleStrategyRunner) RunAllStrategies(candles []internal.Candle) ([]BenchmarkResult, error) {
	return nil, fmt.Errorf("SingleStrategyRunner не поддерживает запуск всех стратегий")
}

// NewRunner выбирает реализацию по имени стратегии: all — параллельный запуск всех
func NewRunner(cfg config.Config, printer ResultPrinter) (StrategyRunner, error) {
	if cfg.Strategy == "all" {
		return NewParallelStrategyRunner(cfg, printer)
	}
	return NewSingleStrategyRunner(cfg, printer)
}

// Run запускает то, что указано в конфигурации
func Run(runner StrategyRunner, strategy string, candles []internal.Candle) ([]BenchmarkResult, error) {
	if strategy == "all" {
		return runner.RunAllStrategies(candles)
	}
	return runner.RunStrategy(strategy, candles)
}

func sortByProfit(results []BenchmarkResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].TotalProfit != results[j].TotalProfit {
			return results[i].TotalProfit > results[j].TotalProfit
		}
		return results[i].Name < results[j].Name
	})
}
