package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/urfave/cli/v3"

	backtestengine "github.com/rxtech-lab/argo-stocks/internal/backtest/engine"
	"github.com/rxtech-lab/argo-stocks/internal/logger"
	"github.com/rxtech-lab/argo-stocks/internal/trading/engine"
	"github.com/rxtech-lab/argo-stocks/internal/trading/session"
	"github.com/rxtech-lab/argo-stocks/internal/types"
)

type action func(ctx context.Context, cmd *cli.Command, m *session.SessionManager) error

// managed runs a one-shot command against a served session manager.
func managed(fn action) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		return withManager(ctx, cmd, engine.Callbacks{}, func(ctx context.Context, m *session.SessionManager, _ *logger.Logger) error {
			return fn(ctx, cmd, m)
		})
	}
}

// withID adapts an action taking the session id from the first argument.
func withID(fn func(ctx context.Context, cmd *cli.Command, m *session.SessionManager, id int64) error) cli.ActionFunc {
	return managed(func(ctx context.Context, cmd *cli.Command, m *session.SessionManager) error {
		id, err := sessionID(cmd)
		if err != nil {
			return err
		}

		return fn(ctx, cmd, m, id)
	})
}

func commands() []*cli.Command {
	dateConfig := cli.TimestampConfig{Layouts: []string{types.DateLayout}}

	return []*cli.Command{
		{
			Name:      "serve",
			Usage:     "Run sessions until interrupted (default: sessions left RUNNING)",
			ArgsUsage: "[session-id...]",
			Action:    serveAction,
		},
		{
			Name:  "create",
			Usage: "Create a session",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: "Unique session name"},
				&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: string(types.ModePaper), Usage: "PAPER or LIVE"},
				&cli.FloatFlag{Name: "balance", Usage: "Initial balance (default: config initial_balance)"},
				&cli.StringSliceFlag{Name: "ticker", Aliases: []string{"t"}, Usage: "Ticker to trade (repeatable)"},
				&cli.StringSliceFlag{Name: "strategy", Aliases: []string{"s"}, Usage: "Catalog strategy name (repeatable)"},
				&cli.StringFlag{Name: "buy", Usage: "Buy leg of a composite strategy"},
				&cli.StringFlag{Name: "sell", Usage: "Sell leg of a composite strategy"},
			},
			Action: managed(createAction),
		},
		{
			Name:   "list",
			Usage:  "List sessions",
			Action: managed(listAction),
		},
		{
			Name:      "show",
			Usage:     "Show a session with its account, holdings and performance",
			ArgsUsage: "<session-id>",
			Action:    withID(showAction),
		},
		{
			Name:      "trades",
			Usage:     "Show the trade log of a session, newest first",
			ArgsUsage: "<session-id>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "ticker", Aliases: []string{"t"}, Usage: "Only trades of this ticker"},
				&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: session.DefaultTradeLimit, Usage: "Maximum trades shown"},
			},
			Action: withID(tradesAction),
		},
		{
			Name:  "ticker",
			Usage: "Change the tickers of a session",
			Commands: []*cli.Command{
				{
					Name:      "add",
					ArgsUsage: "<session-id> <ticker>",
					Action: withID(func(ctx context.Context, cmd *cli.Command, m *session.SessionManager, id int64) error {
						return m.AddTicker(ctx, id, cmd.Args().Get(1))
					}),
				},
				{
					Name:      "remove",
					ArgsUsage: "<session-id> <ticker>",
					Action: withID(func(ctx context.Context, cmd *cli.Command, m *session.SessionManager, id int64) error {
						return m.RemoveTicker(ctx, id, cmd.Args().Get(1))
					}),
				},
			},
		},
		{
			Name:      "toggle",
			Usage:     "Flip the active flag of a session strategy",
			ArgsUsage: "<session-id> <strategy>",
			Action:    withID(toggleAction),
		},
		{
			Name:      "stop",
			Usage:     "Mark a session stopped",
			ArgsUsage: "<session-id>",
			Action: withID(func(ctx context.Context, _ *cli.Command, m *session.SessionManager, id int64) error {
				return m.StopSession(ctx, id)
			}),
		},
		{
			Name:      "delete",
			Usage:     "Delete a session with its ledger and trades",
			ArgsUsage: "<session-id>",
			Action: withID(func(ctx context.Context, _ *cli.Command, m *session.SessionManager, id int64) error {
				return m.DeleteSession(ctx, id)
			}),
		},
		{
			Name:      "backtest",
			Usage:     "Backtest the strategies and tickers of a session",
			ArgsUsage: "<session-id>",
			Flags: []cli.Flag{
				&cli.TimestampFlag{Name: "start", Usage: "First replayed date in `YYYY-MM-DD` format", Config: dateConfig},
				&cli.TimestampFlag{Name: "end", Usage: "Last replayed date in `YYYY-MM-DD` format", Config: dateConfig},
				&cli.StringSliceFlag{Name: "strategy", Aliases: []string{"s"}, Usage: "Override the session strategies"},
				&cli.StringSliceFlag{Name: "ticker", Aliases: []string{"t"}, Usage: "Override the session tickers"},
				&cli.FloatFlag{Name: "capital", Usage: "Initial capital"},
			},
			Action: withID(backtestAction),
		},
	}
}

func createAction(ctx context.Context, cmd *cli.Command, m *session.SessionManager) error {
	info, err := m.CreateSession(ctx, session.CreateSessionRequest{
		Name:           cmd.String("name"),
		Mode:           types.TradingMode(strings.ToUpper(cmd.String("mode"))),
		InitialBalance: cmd.Float("balance"),
		Tickers:        cmd.StringSlice("ticker"),
		Strategies:     cmd.StringSlice("strategy"),
		BuyStrategy:    cmd.String("buy"),
		SellStrategy:   cmd.String("sell"),
	})
	if err != nil {
		return err
	}

	return printYAML(info)
}

func listAction(ctx context.Context, _ *cli.Command, m *session.SessionManager) error {
	sessions, err := m.ListSessions(ctx)
	if err != nil {
		return err
	}

	return printYAML(sessions)
}

func showAction(ctx context.Context, _ *cli.Command, m *session.SessionManager, id int64) error {
	info, err := m.GetSession(ctx, id)
	if err != nil {
		return err
	}

	account, err := m.Account(ctx, id)
	if err != nil {
		return err
	}

	holdings, err := m.Holdings(ctx, id)
	if err != nil {
		return err
	}

	performance, err := m.Performance(ctx, id)
	if err != nil {
		return err
	}

	return printYAML(map[string]any{
		"session":     info,
		"account":     account,
		"holdings":    holdings,
		"performance": performance,
	})
}

func tradesAction(ctx context.Context, cmd *cli.Command, m *session.SessionManager, id int64) error {
	trades, err := m.Trades(ctx, id, types.TradeFilter{
		Symbol: strings.ToUpper(cmd.String("ticker")),
		Limit:  int(cmd.Int("limit")),
	})
	if err != nil {
		return err
	}

	return printYAML(trades)
}

func toggleAction(ctx context.Context, cmd *cli.Command, m *session.SessionManager, id int64) error {
	name := cmd.Args().Get(1)
	if name == "" {
		return fmt.Errorf("strategy name is required")
	}

	active, err := m.ToggleStrategy(ctx, id, name)
	if err != nil {
		return err
	}

	fmt.Printf("%s active: %t\n", name, active)

	return nil
}

func backtestAction(ctx context.Context, cmd *cli.Command, m *session.SessionManager, id int64) error {
	req := session.BacktestRequest{
		StartDate:      optional.None[time.Time](),
		EndDate:        optional.None[time.Time](),
		Strategies:     cmd.StringSlice("strategy"),
		Tickers:        cmd.StringSlice("ticker"),
		InitialCapital: cmd.Float("capital"),
	}

	if cmd.IsSet("start") {
		req.StartDate = optional.Some(cmd.Timestamp("start"))
	}

	if cmd.IsSet("end") {
		req.EndDate = optional.Some(cmd.Timestamp("end"))
	}

	result, err := m.RunSessionBacktest(ctx, id, req, backtestengine.LifecycleCallbacks{})
	if err != nil {
		return err
	}

	return printYAML(result)
}
