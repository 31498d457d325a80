package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	backtestengine "github.com/rxtech-lab/argo-stocks/internal/backtest/engine"
	backtestv1 "github.com/rxtech-lab/argo-stocks/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-stocks/internal/config"
	"github.com/rxtech-lab/argo-stocks/internal/logger"
	"github.com/rxtech-lab/argo-stocks/internal/trading"
	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/internal/version"
)

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	if err := config.LoadDotEnv(cmd.StringSlice("env")...); err != nil {
		return err
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	appLogger, err := logger.NewLoggerWithLevel(cfg.Level())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	system, err := trading.NewTradingSystem(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer system.Close()

	btConfig, err := backtestConfig(cmd)
	if err != nil {
		return err
	}

	bt, err := system.BacktestEngine()
	if err != nil {
		return err
	}

	if err := bt.InitializeWithConfig(btConfig); err != nil {
		return err
	}

	var bar *progressbar.ProgressBar

	onStart := backtestengine.OnBacktestStartCallback(func(runID string, tickers []string, totalDays int) error {
		appLogger.Info("Backtest started", zap.String("run_id", runID), zap.Strings("tickers", tickers), zap.Int("days", totalDays))
		bar = progressbar.NewOptions(totalDays,
			progressbar.OptionSetDescription("Replaying "+strings.Join(tickers, ",")),
			progressbar.OptionShowCount(),
		)

		return nil
	})
	onDay := backtestengine.OnProcessDayCallback(func(current int, total int) error {
		if bar != nil {
			return bar.Set(current)
		}

		return nil
	})

	result, err := bt.Run(ctx, backtestengine.LifecycleCallbacks{
		OnBacktestStart: &onStart,
		OnProcessDay:    &onDay,
	})
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}

	if err != nil {
		return err
	}

	if result.Failed() {
		return fmt.Errorf("backtest failed: %s", result.Error)
	}

	fmt.Printf("Run %s: %d trades, final value %.2f (%.2f%%), max drawdown %.2f%%\n",
		result.ID, result.TotalTrades, result.FinalValue, result.TotalReturnPct, result.MaxDrawdownPct)

	return writeResult(cmd.String("output"), result)
}

// backtestConfig reads the optional engine config file and applies the
// flags over it.
func backtestConfig(cmd *cli.Command) (backtestv1.BacktestEngineV1Config, error) {
	btConfig := backtestv1.EmptyConfig()

	if path := cmd.String("backtest-config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return btConfig, fmt.Errorf("failed to read backtest config: %w", err)
		}

		if err := yaml.Unmarshal(data, &btConfig); err != nil {
			return btConfig, fmt.Errorf("failed to parse backtest config: %w", err)
		}
	}

	if tickers := cmd.StringSlice("ticker"); len(tickers) > 0 {
		btConfig.Tickers = tickers
	}

	if strategies := cmd.StringSlice("strategy"); len(strategies) > 0 {
		btConfig.Strategies = strategies
	}

	if cmd.IsSet("start") {
		btConfig.StartDate = optional.Some(cmd.Timestamp("start"))
	}

	if cmd.IsSet("end") {
		btConfig.EndDate = optional.Some(cmd.Timestamp("end"))
	}

	if cmd.IsSet("capital") {
		btConfig.InitialCapital = cmd.Float("capital")
	}

	if len(btConfig.Strategies) == 0 {
		return btConfig, fmt.Errorf("at least one strategy is required")
	}

	return btConfig, nil
}

func writeResult(path string, result types.BacktestResult) error {
	if path == "" {
		return nil
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal backtest result to JSON: %w", err)
		}

		return os.WriteFile(path, data, 0644)
	}

	return types.WriteBacktestResult(path, result)
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	var (
		schema string
		err    error
	)

	if cmd.Bool("app") {
		schema, err = config.Schema()
	} else {
		schema, err = backtestv1.NewBacktestEngineV1(nil).GetConfigSchema()
	}

	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	dateConfig := cli.TimestampConfig{Layouts: []string{types.DateLayout}}

	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Replay daily history for catalog strategies",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the application config file",
			},
			&cli.StringSliceFlag{
				Name:  "env",
				Usage: "Env files to load (default: .env when present)",
			},
			&cli.StringFlag{
				Name:    "backtest-config",
				Aliases: []string{"b"},
				Usage:   "Path to a backtest config file; flags override its values",
			},
			&cli.StringSliceFlag{
				Name:    "ticker",
				Aliases: []string{"t"},
				Usage:   "Ticker to replay (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "Catalog strategy name (repeatable)",
			},
			&cli.TimestampFlag{
				Name:   "start",
				Usage:  "First replayed date in `YYYY-MM-DD` format",
				Config: dateConfig,
			},
			&cli.TimestampFlag{
				Name:   "end",
				Usage:  "Last replayed date in `YYYY-MM-DD` format",
				Config: dateConfig,
			},
			&cli.FloatFlag{
				Name:  "capital",
				Usage: "Initial capital",
				Value: backtestv1.DefaultInitialCapital,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the result to this file (.json for JSON, YAML otherwise)",
			},
		},
		Action: backtestAction,
		Commands: []*cli.Command{
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the backtest config",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "app", Usage: "Print the application config schema instead"},
				},
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
