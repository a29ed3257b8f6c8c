package backtester

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// ConsolePrinter — вывод результатов в консоль
type ConsolePrinter struct {
	w io.Writer
}

func NewConsolePrinter() *ConsolePrinter {
	return &ConsolePrinter{w: os.Stdout}
}

// NewWriterPrinter — тот же вывод в произвольный writer
func NewWriterPrinter(w io.Writer) *ConsolePrinter {
	return &ConsolePrinter{w: w}
}

// PrintComparison — выводит сравнительную таблицу стратегий, лучшие вверху
func (p *ConsolePrinter) PrintComparison(results []BenchmarkResult) {
	sorted := append([]BenchmarkResult(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalProfit > sorted[j].TotalProfit
	})

	fmt.Fprintln(p.w, "\n"+strings.Repeat("=", 110))
	fmt.Fprintln(p.w, "📊 СРАВНЕНИЕ СТРАТЕГИЙ")
	fmt.Fprintln(p.w, strings.Repeat("=", 110))
	fmt.Fprintf(p.w, "%-28s %-12s %-10s %-15s %-10s %-12s\n", "Стратегия", "Прибыль", "Сделки", "Финал, $", "Время", "Ранг")
	fmt.Fprintln(p.w, strings.Repeat("-", 110))

	for i, r := range sorted {
		rankStr := fmt.Sprintf("%d", i+1)
		switch i {
		case 0:
			rankStr = "🥇 " + rankStr
		case 1:
			rankStr = "🥈 " + rankStr
		case 2:
			rankStr = "🥉 " + rankStr
		default:
			rankStr = "  " + rankStr
		}

		fmt.Fprintf(p.w, "%-28s %-12s %-10d $%-14.2f %-10s %-12s\n",
			r.Name,
			fmt.Sprintf("%+.2f%%", r.TotalProfit*100),
			r.TradeCount,
			r.FinalPortfolio,
			p.formatDuration(r.ExecutionTime),
			rankStr)
	}

	for _, r := range sorted {
		if r.Config != nil {
			fmt.Fprintf(p.w, "⚙️  %-25s %s\n", r.Name, r.Config.String())
		}
	}
}

// PrintProgress — выводит прогресс выполнения стратегий
func (p *ConsolePrinter) PrintProgress(current, total int) {
	fmt.Fprintf(p.w, "📊 Прогресс: %d/%d стратегий завершено\n", current, total)
}

func (p *ConsolePrinter) formatDuration(d time.Duration) string {
	if d > time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.0fms", float64(d.Nanoseconds())/1e6)
}
