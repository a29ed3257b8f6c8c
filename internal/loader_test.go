package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const candlesCSV = `date,open,high,low,close,volume
2024-01-01T00:30:00Z,101,103,100,102,1500
2024-01-01T00:00:00Z,100,101,99,100,1000
2024-01-01T00:15:00Z,100,101,99,100.5,1200
`

func TestLoadCandlesCSV(t *testing.T) {
	candles, err := LoadCandlesCSV(strings.NewReader(candlesCSV))
	if err != nil {
		t.Fatalf("LoadCandlesCSV returned error: %v", err)
	}
	if len(candles) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(candles))
	}
	if candles[0].Close.ToFloat64() != 102 || candles[0].VolumeFloat64() != 1500 {
		t.Errorf("unexpected first candle: %+v", candles[0])
	}

	SortCandles(candles)
	if candles[0].Close.ToFloat64() != 100 || candles[2].Close.ToFloat64() != 102 {
		t.Errorf("candles not sorted by time: %v, %v, %v",
			candles[0].Close, candles[1].Close, candles[2].Close)
	}
}

func TestLoadCandlesCSV_CloseOnly(t *testing.T) {
	candles, err := LoadCandlesCSV(strings.NewReader("timestamp,close\n1704067200,10\n1704068100,11\n"))
	if err != nil {
		t.Fatalf("LoadCandlesCSV returned error: %v", err)
	}
	if candles[1].Open.ToFloat64() != 11 || candles[1].VolumeFloat64() != 0 {
		t.Errorf("unexpected fallback values: %+v", candles[1])
	}
	if candles[0].ToTime().IsZero() {
		t.Error("expected unix timestamp to be parsed")
	}
}

func TestLoadCandlesCSV_MissingClose(t *testing.T) {
	_, err := LoadCandlesCSV(strings.NewReader("date,open\n2024-01-01,1\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestLoadCandlesFromFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "candles.json")
	raw := `{"candles":[
		{"open":2,"high":2,"low":2,"close":2,"volume":"5","time":"2024-01-01T00:15:00Z"},
		{"open":1,"high":1,"low":1,"close":1,"volume":"5","time":"2024-01-01T00:00:00Z"}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	candles, err := LoadCandlesFromFile(path)
	if err != nil {
		t.Fatalf("LoadCandlesFromFile returned error: %v", err)
	}
	if len(candles) != 2 || candles[0].Close.ToFloat64() != 1 {
		t.Errorf("expected 2 sorted candles, got %+v", candles)
	}
}

func TestLoadCandlesFromFile_Missing(t *testing.T) {
	if _, err := LoadCandlesFromFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
