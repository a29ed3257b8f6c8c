// loader.go — загрузка свечей из JSON (формат брокера) и CSV (date,open,high,low,close,volume)
package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var ErrMissingColumn = errors.New("missing column")

// timeColumns — допустимые имена колонки времени в порядке приоритета
var timeColumns = []string{"date", "timestamp", "time"}

// LoadCandlesFromFile выбирает формат по расширению и сортирует свечи по времени.
func LoadCandlesFromFile(filename string) ([]Candle, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open candles: %w", err)
	}
	defer f.Close()

	var candles []Candle
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		candles, err = LoadCandlesCSV(f)
	default:
		candles, err = LoadCandlesJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	SortCandles(candles)
	return candles, nil
}

// LoadCandlesJSON читает объект {"candles": [...]}.
func LoadCandlesJSON(r io.Reader) ([]Candle, error) {
	var wrapper struct {
		Candles []Candle `json:"candles"`
	}
	if err := json.NewDecoder(r).Decode(&wrapper); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return wrapper.Candles, nil
}

// LoadCandlesCSV читает таблицу с заголовком. Обязательна колонка close;
// отсутствующие open/high/low берутся из close, volume — нулём.
func LoadCandlesCSV(r io.Reader) ([]Candle, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}

	names := df.Names()
	if !slices.Contains(names, "close") {
		return nil, fmt.Errorf("%w: close", ErrMissingColumn)
	}

	closes := df.Col("close").Float()
	column := func(name string, fallback []float64) []float64 {
		if slices.Contains(names, name) {
			return df.Col(name).Float()
		}
		return fallback
	}
	opens := column("open", closes)
	highs := column("high", closes)
	lows := column("low", closes)
	volumes := column("volume", make([]float64, len(closes)))

	var times []string
	for _, name := range timeColumns {
		if slices.Contains(names, name) {
			times = df.Col(name).Records()
			break
		}
	}

	candles := make([]Candle, df.Nrow())
	for i := range candles {
		c := Candle{
			Open:        Price(opens[i]),
			High:        Price(highs[i]),
			Low:         Price(lows[i]),
			Close:       Price(closes[i]),
			VolumeFloat: volumes[i],
			Volume:      strconv.FormatFloat(volumes[i], 'f', -1, 64),
			IsComplete:  true,
		}
		if times != nil {
			c.Time = times[i]
			c.ParsedTime = ParseTime(times[i])
		}
		candles[i] = c
	}
	return candles, nil
}

// SortCandles упорядочивает свечи по времени; свечи без времени сохраняют порядок.
func SortCandles(candles []Candle) {
	slices.SortStableFunc(candles, func(a, b Candle) int {
		return a.ParsedTime.Compare(b.ParsedTime)
	})
}
