package renko

import (
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Row — строка выходной таблицы: кирпич или размеченная свеча плюс флаги buy/sell.
type Row struct {
	Time       time.Time
	Index      int
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
	StepSize   float64
	Level      float64
	Trend      Trend
	Strength   int
	LevelCount int
	Buy        int
	Sell       int
}

const (
	ColDate          = "date"
	ColOpen          = "open"
	ColHigh          = "high"
	ColLow           = "low"
	ColClose         = "close"
	ColVolume        = "volume"
	ColStepSize      = "step_size"
	ColLevel         = "level"
	ColTrend         = "trend"
	ColTrendStrength = "trend_strength"
	ColLevelCount    = "level_count"
	ColBuy           = "buy"
	ColSell          = "sell"
)

// Columns — схема выходной таблицы в порядке колонок.
var Columns = []string{
	ColDate, ColOpen, ColHigh, ColLow, ColClose, ColVolume,
	ColStepSize, ColLevel, ColTrend, ColTrendStrength, ColLevelCount,
	ColBuy, ColSell,
}

// NewTable собирает DataFrame из строк. Пустой вход даёт таблицу без строк,
// но со всеми колонками.
func NewTable(rows []Row) dataframe.DataFrame {
	n := len(rows)
	dates := make([]string, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	step := make([]float64, n)
	level := make([]float64, n)
	trend := make([]int, n)
	strength := make([]int, n)
	levelCount := make([]int, n)
	buy := make([]int, n)
	sell := make([]int, n)

	for i, r := range rows {
		if !r.Time.IsZero() {
			dates[i] = r.Time.Format(time.RFC3339)
		}
		open[i] = r.Open
		high[i] = r.High
		low[i] = r.Low
		closes[i] = r.Close
		volume[i] = r.Volume
		step[i] = r.StepSize
		level[i] = r.Level
		trend[i] = r.Trend.Value()
		strength[i] = r.Strength
		levelCount[i] = r.LevelCount
		buy[i] = r.Buy
		sell[i] = r.Sell
	}

	return dataframe.New(
		series.New(dates, series.String, ColDate),
		series.New(open, series.Float, ColOpen),
		series.New(high, series.Float, ColHigh),
		series.New(low, series.Float, ColLow),
		series.New(closes, series.Float, ColClose),
		series.New(volume, series.Float, ColVolume),
		series.New(step, series.Float, ColStepSize),
		series.New(level, series.Float, ColLevel),
		series.New(trend, series.Int, ColTrend),
		series.New(strength, series.Int, ColTrendStrength),
		series.New(levelCount, series.Int, ColLevelCount),
		series.New(buy, series.Int, ColBuy),
		series.New(sell, series.Int, ColSell),
	)
}
