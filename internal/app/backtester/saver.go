package backtester

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"renkobt/internal"
	"renkobt/internal/renko"
)

// FileSaver — сохранение результатов в файлы
type FileSaver struct {
	outputDir string
}

func NewFileSaver(outputDir string) *FileSaver {
	if outputDir == "" {
		outputDir = "."
	}
	return &FileSaver{outputDir: outputDir}
}

// SaveTopStrategies — сохраняет топ-N стратегий с сигналами. Для Renko-стратегий
// рядом кладётся CSV с полной таблицей кирпичей или размеченных свечей.
func (s *FileSaver) SaveTopStrategies(candles []internal.Candle, results []BenchmarkResult, inputFilename string, topN int) error {
	if topN <= 0 {
		return nil
	}
	if len(results) < topN {
		return fmt.Errorf("недостаточно стратегий для сохранения топ-%d (доступно: %d)", topN, len(results))
	}

	baseName := strings.TrimSuffix(filepath.Base(inputFilename), filepath.Ext(inputFilename))

	for _, res := range results[:topN] {
		strategy, ok := internal.GetStrategy(res.Name)
		if !ok {
			log.Error().Str("strategy", res.Name).Msg("❌ стратегия не найдена")
			continue
		}

		cfg := res.Config
		if cfg == nil {
			cfg = strategy.DefaultConfig()
		}
		signals := strategy.GenerateSignals(candles, cfg)

		jsonFile := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s_signals.json", baseName, res.Name))
		if err := s.saveSignals(jsonFile, candles, signals, res, cfg); err != nil {
			log.Error().Err(err).Str("file", jsonFile).Msg("❌ ошибка сохранения сигналов")
			continue
		}
		log.Info().
			Str("file", jsonFile).
			Float64("profit_pct", res.TotalProfit*100).
			Int("signals", countSignals(signals)).
			Msg("💾 сохранены данные с сигналами")

		ts, ok := strategy.(TableStrategy)
		if !ok {
			continue
		}
		csvFile := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s_renko.csv", baseName, res.Name))
		rows, err := s.saveTable(csvFile, ts, candles, cfg)
		if err != nil {
			log.Error().Err(err).Str("file", csvFile).Msg("❌ ошибка сохранения таблицы")
			continue
		}
		log.Info().Str("file", csvFile).Int("rows", len(rows)).Msg("💾 сохранена renko-таблица")
	}

	return nil
}

func (s *FileSaver) saveSignals(filename string, candles []internal.Candle, signals []internal.SignalType, res BenchmarkResult, cfg internal.StrategyConfig) error {
	candlesWithSignals := make([]CandleWithSignal, len(candles))
	for j, candle := range candles {
		ts := candle.Time
		if t := candle.ToTime(); !t.IsZero() {
			ts = t.Format(time.RFC3339Nano)
		}
		candlesWithSignals[j] = CandleWithSignal{
			Time:   ts,
			Open:   candle.Open.ToFloat64(),
			High:   candle.High.ToFloat64(),
			Low:    candle.Low.ToFloat64(),
			Close:  candle.Close.ToFloat64(),
			Volume: candle.VolumeFloat64(),
			Signal: getSignalAtIndex(signals, j),
		}
	}

	data := struct {
		Strategy string                  `json:"strategy"`
		Config   internal.StrategyConfig `json:"config"`
		Profit   float64                 `json:"profit"`
		Candles  []CandleWithSignal      `json:"candles"`
	}{
		Strategy: res.Name,
		Config:   cfg,
		Profit:   res.TotalProfit,
		Candles:  candlesWithSignals,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}
	return os.WriteFile(filename, jsonData, 0o644)
}

func (s *FileSaver) saveTable(filename string, ts TableStrategy, candles []internal.Candle, cfg internal.StrategyConfig) ([]renko.Row, error) {
	rows, err := ts.SignalTable(candles, cfg)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := renko.NewTable(rows).WriteCSV(f); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return rows, nil
}

func getSignalAtIndex(signals []internal.SignalType, index int) internal.SignalType {
	if index < 0 || index >= len(signals) {
		return internal.HOLD
	}
	return signals[index]
}

// countSignals — количество сигналов, отличных от HOLD
func countSignals(signals []internal.SignalType) int {
	count := 0
	for _, signal := range signals {
		if signal != internal.HOLD {
			count++
		}
	}
	return count
}
