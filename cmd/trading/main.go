package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/rxtech-lab/argo-stocks/internal/config"
	"github.com/rxtech-lab/argo-stocks/internal/logger"
	"github.com/rxtech-lab/argo-stocks/internal/trading"
	"github.com/rxtech-lab/argo-stocks/internal/trading/engine"
	"github.com/rxtech-lab/argo-stocks/internal/trading/session"
	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/internal/version"
)

// withManager builds the trading system, serves a session manager and
// calls fn once it is ready. The manager stops when fn returns.
func withManager(ctx context.Context, cmd *cli.Command, callbacks engine.Callbacks, fn func(ctx context.Context, m *session.SessionManager, log *logger.Logger) error) error {
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

	manager, err := system.SessionManager(callbacks)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		return manager.Run(gctx)
	})

	g.Go(func() error {
		defer cancel()

		select {
		case <-manager.Ready():
		case <-gctx.Done():
			return nil
		}

		return fn(gctx, manager, appLogger)
	})

	return g.Wait()
}

// sessionID parses the first positional argument.
func sessionID(cmd *cli.Command) (int64, error) {
	raw := cmd.Args().First()
	if raw == "" {
		return 0, fmt.Errorf("session id is required")
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid session id %q: %w", raw, err)
	}

	return id, nil
}

func printYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	_, err = os.Stdout.Write(data)

	return err
}

// serveAction runs the given sessions, or the sessions left RUNNING by a
// previous process, until interrupted.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tradeLog *logger.Logger

	onTrade := engine.OnTradeCallback(func(trade types.Trade) {
		if tradeLog != nil {
			tradeLog.Info("Trade executed",
				zap.Int64("session_id", trade.SessionID),
				zap.String("symbol", trade.Symbol),
				zap.String("action", string(trade.Action)),
				zap.Float64("price", trade.Price),
				zap.String("status", string(trade.Status)),
			)
		}
	})

	return withManager(ctx, cmd, engine.Callbacks{OnTrade: &onTrade}, func(ctx context.Context, m *session.SessionManager, log *logger.Logger) error {
		tradeLog = log.Named("trades")

		ids, err := serveIDs(ctx, cmd, m)
		if err != nil {
			return err
		}

		if len(ids) == 0 {
			return fmt.Errorf("no sessions to serve")
		}

		for _, id := range ids {
			if err := m.StartSession(ctx, id); err != nil {
				return err
			}

			log.Info("Session started", zap.Int64("session_id", id))
		}

		<-ctx.Done()

		return nil
	})
}

func serveIDs(ctx context.Context, cmd *cli.Command, m *session.SessionManager) ([]int64, error) {
	var ids []int64

	for _, raw := range cmd.Args().Slice() {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid session id %q: %w", raw, err)
		}

		ids = append(ids, id)
	}

	if len(ids) > 0 {
		return ids, nil
	}

	sessions, err := m.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	for _, s := range sessions {
		if s.Status == types.SessionRunning {
			ids = append(ids, s.ID)
		}
	}

	return ids, nil
}

func main() {
	cmd := &cli.Command{
		Name:    "trading",
		Usage:   "Manage and run paper and live trading sessions",
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
		},
		Commands: commands(),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
