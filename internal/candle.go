// candle.go
package internal

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Price float64

// UnmarshalJSON реализует пользовательский разбор JSON для Price.
// Принимает как объект {"units": "", "nano": 0}, так и обычное число.
func (p *Price) UnmarshalJSON(data []byte) error {
	var plain float64
	if err := json.Unmarshal(data, &plain); err == nil {
		*p = Price(plain)
		return nil
	}

	var temp struct {
		Units string `json:"units"`
		Nano  int32  `json:"nano"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	units, err := strconv.ParseInt(temp.Units, 10, 64)
	if err != nil {
		return fmt.Errorf("price units %q: %w", temp.Units, err)
	}
	*p = Price(float64(units) + float64(temp.Nano)/1_000_000_000.0)
	return nil
}

// ToFloat64 возвращает значение Price как float64.
func (p Price) ToFloat64() float64 {
	return float64(p)
}

func (c Candle) VolumeFloat64() float64 {
	if c.VolumeFloat == 0 && c.Volume != "0" && c.Volume != "" {
		if v, err := strconv.ParseFloat(c.Volume, 64); err == nil {
			return v
		}
	}
	return c.VolumeFloat
}

// UnmarshalJSON реализует пользовательский разбор JSON для Candle.
// Время и объём разбираются один раз на этапе загрузки.
func (c *Candle) UnmarshalJSON(data []byte) error {
	type Alias Candle // алиас для избежания бесконечной рекурсии
	aux := &struct {
		Time   string          `json:"time"`
		Volume json.RawMessage `json:"volume"`
		*Alias
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	c.Time = aux.Time
	c.ParsedTime = ParseTime(aux.Time)

	// объём приходит строкой из API брокера и числом из CSV-конвертеров
	raw := strings.Trim(string(aux.Volume), `"`)
	c.Volume = raw
	if raw == "" || raw == "null" {
		c.VolumeFloat = 0
		return nil
	}
	vol, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Str("volume", raw).Err(err).Msg("не удалось разобрать объём, используем 0")
		c.VolumeFloat = 0
	} else {
		c.VolumeFloat = vol
	}

	return nil
}

// timeLayouts — поддерживаемые форматы времени в порядке проверки
var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime разбирает время свечи, перебирая известные форматы.
// Unix-секунды тоже принимаются. Нераспознанная строка даёт нулевое время.
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC()
	}
	log.Warn().Str("time", s).Msg("❌ все форматы времени провалились, используем zero time")
	return time.Time{}
}

type Candle struct {
	Open        Price     `json:"open"`
	High        Price     `json:"high"`
	Low         Price     `json:"low"`
	Close       Price     `json:"close"`
	Volume      string    `json:"volume"`
	VolumeFloat float64   `json:"-"` // precomputed float64 volume
	Time        string    `json:"time"`
	IsComplete  bool      `json:"isComplete"`
	ParsedTime  time.Time `json:"-"` // precomputed time for ToTime()
}

func (c Candle) ToTime() time.Time {
	return c.ParsedTime
}

type SignalType int

const (
	HOLD SignalType = iota
	BUY
	SELL
)

func (s SignalType) String() string {
	return [...]string{"HOLD", "BUY", "SELL"}[s]
}
