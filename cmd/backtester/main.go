// main.go
package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime/pprof"
	"strings"

	"github.com/rs/zerolog/log"

	"renkobt/internal"
	"renkobt/internal/app/backtester"
	"renkobt/internal/config"
	"renkobt/internal/logger"
	"renkobt/internal/metrics"

	_ "renkobt/strategies/simple"
	_ "renkobt/strategies/trend"
)

type options struct {
	app        config.Config
	appConfig  string
	debug      bool
	cpuProfile string
	memProfile string
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(2)
	}

	if _, err := logger.New(opts.app.Log); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		log.Fatal().Err(err).Msg("❌ ошибка при запуске стратегий")
	}
}

func run(opts options) error {
	cfg := opts.app

	// realtime профилирование и метрики на одном порту
	if cfg.ProfPort > 0 {
		http.Handle("/metrics", metrics.Handler())
		go func() {
			addr := fmt.Sprintf(":%d", cfg.ProfPort)
			log.Info().Str("addr", addr).Msg("🚀 pprof: /debug/pprof/, метрики: /metrics")
			if err := http.ListenAndServe(addr, nil); err != nil {
				log.Error().Err(err).Msg("❌ ошибка запуска HTTP сервера профилирования")
			}
		}()
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			return fmt.Errorf("create cpu profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	candles, err := internal.LoadCandlesFromFile(cfg.Candles)
	if err != nil {
		return err
	}
	if len(candles) == 0 {
		return fmt.Errorf("нет данных для анализа в %s", cfg.Candles)
	}
	log.Info().Int("candles", len(candles)).Str("file", cfg.Candles).Msg("✅ свечи загружены")

	runner, err := backtester.NewRunner(cfg, backtester.NewConsolePrinter())
	if err != nil {
		return err
	}

	results, err := backtester.Run(runner, cfg.Strategy, candles)
	if err != nil {
		return err
	}

	if cfg.SaveSignals > 0 {
		log.Info().Int("top", cfg.SaveSignals).Msg("💾 сохранение топ стратегий для графиков")
		if err := backtester.NewFileSaver(cfg.OutputDir).SaveTopStrategies(candles, results, cfg.Candles, cfg.SaveSignals); err != nil {
			log.Error().Err(err).Msg("❌ ошибка при сохранении данных")
		}
	} else if opts.debug {
		log.Debug().Msg("💡 сохранение сигналов отключено флагом --save_signals=0")
	}

	if opts.memProfile != "" {
		f, err := os.Create(opts.memProfile)
		if err != nil {
			return fmt.Errorf("create mem profile: %w", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("write mem profile: %w", err)
		}
	}
	return nil
}

// parseFlags: сначала YAML из --app_config, затем явно заданные флаги поверх него
func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("backtester", flag.ContinueOnError)

	filename := fs.String("file", "candles.json", "Путь к файлу со свечами (JSON или CSV)")
	strategyName := fs.String("strategy", "all", "Стратегия: all (все стратегии) или "+strings.Join(internal.GetStrategyNames(), ", "))
	debug := fs.Bool("debug", false, "Включить детальное логирование")
	saveSignals := fs.Int("save_signals", 0, "Сохранить топ-N стратегий с сигналами (0 = не сохранять)")
	cpuProfile := fs.String("cpu_profile", "", "Файл для CPU профилирования (пусто = отключено)")
	memProfile := fs.String("mem_profile", "", "Файл для памяти профилирования (пусто = отключено)")
	configFile := fs.String("config", "", "Путь к JSON-файлу с конфигурациями стратегий (пусто = оптимизация)")
	profPort := fs.Int("prof_port", 0, "Порт для pprof и метрик (0 = отключено)")
	appConfig := fs.String("app_config", "", "Путь к YAML-конфигурации приложения")
	slippage := fs.Float64("slippage", 0.01, "Проскальзывание на сделку")
	optimize := fs.Bool("optimize", true, "Подбирать параметры grid search, иначе значения по умолчанию")
	outputDir := fs.String("output_dir", ".", "Каталог для сохраняемых файлов")
	logLevel := fs.String("log_level", "info", "Уровень логирования: trace, debug, info, warn, error")
	logFormat := fs.String("log_format", "console", "Формат логов: console или json")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	cfg := config.Default()
	if *appConfig != "" {
		loaded, err := config.Load(*appConfig)
		if err != nil {
			return options{}, err
		}
		cfg = *loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "file":
			cfg.Candles = *filename
		case "strategy":
			cfg.Strategy = *strategyName
		case "save_signals":
			cfg.SaveSignals = *saveSignals
		case "config":
			cfg.StrategyConfigs = *configFile
		case "prof_port":
			cfg.ProfPort = *profPort
		case "slippage":
			cfg.Slippage = *slippage
		case "optimize":
			cfg.Optimize = *optimize
		case "output_dir":
			cfg.OutputDir = *outputDir
		case "log_level":
			cfg.Log.Level = *logLevel
		case "log_format":
			cfg.Log.Format = *logFormat
		}
	})
	if *debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return options{}, fmt.Errorf("invalid options: %w", err)
	}

	return options{
		app:        cfg,
		appConfig:  *appConfig,
		debug:      *debug,
		cpuProfile: *cpuProfile,
		memProfile: *memProfile,
	}, nil
}
