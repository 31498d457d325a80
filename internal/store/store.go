// Package store persists sessions, strategy configurations and the trading
// ledger (accounts, holdings and the trade log) in DuckDB.
package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-stocks/internal/logger"
	"github.com/rxtech-lab/argo-stocks/internal/strategy"
	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/internal/version"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

const schemaVersionKey = "schema_version"

// LedgerTx is one ledger transaction. Every trade runs in its own
// transaction; any error must be followed by Rollback.
type LedgerTx interface {
	Account(key types.LedgerKey) (types.Account, error)
	Holding(key types.LedgerKey, strategyName string, symbol string) (optional.Option[types.Holding], error)
	UpdateCash(key types.LedgerKey, cash float64) error
	// SaveHolding inserts the holding when its ID is zero and updates it otherwise.
	SaveHolding(holding types.Holding) (types.Holding, error)
	InsertTrade(trade types.Trade) (types.Trade, error)
	Commit() error
	Rollback() error
}

// Ledger is the ledger access used by the trading engine.
type Ledger interface {
	Begin(ctx context.Context) (LedgerTx, error)
	EnsureAccount(ctx context.Context, key types.LedgerKey, initialBalance float64) (types.Account, error)
	GetAccount(ctx context.Context, key types.LedgerKey) (types.Account, error)
	Holdings(ctx context.Context, key types.LedgerKey) ([]types.Holding, error)
	UpdateEquity(ctx context.Context, key types.LedgerKey, totalEquity float64) error
}

// SessionStore is the persistence used by the session manager.
type SessionStore interface {
	Ledger
	CreateSession(ctx context.Context, params CreateSessionParams) (types.Session, error)
	GetSession(ctx context.Context, id int64) (types.Session, error)
	ListSessions(ctx context.Context) ([]types.Session, error)
	UpdateSessionStatus(ctx context.Context, id int64, status types.SessionStatus) error
	DeleteSession(ctx context.Context, id int64) error
	SessionTickers(ctx context.Context, id int64) ([]string, error)
	AddSessionTicker(ctx context.Context, id int64, ticker string) error
	RemoveSessionTicker(ctx context.Context, id int64, ticker string) error
	SessionStrategies(ctx context.Context, id int64) ([]types.SessionStrategy, error)
	SetSessionStrategyActive(ctx context.Context, id int64, name string, active bool) error
	Trades(ctx context.Context, key types.LedgerKey, filter types.TradeFilter) ([]types.Trade, error)
	ListStrategyConfigs(ctx context.Context) ([]strategy.Config, error)
}

// Store is the DuckDB implementation of SessionStore.
type Store struct {
	db     *sql.DB
	sq     squirrel.StatementBuilderType
	logger *logger.Logger
	now    func() time.Time
}

// Open opens the database at path and creates the schema. An empty path
// or ":memory:" opens an in-memory database.
func Open(path string, log *logger.Logger) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorageFailed, "failed to open database", err)
	}

	s := &Store{
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}

	if err := s.migrate(); err != nil {
		db.Close()

		return nil, err
	}

	log.Debug("Opened ledger store", zap.String("path", path))

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS schema_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE SEQUENCE IF NOT EXISTS session_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS account_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS holding_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS trade_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS strategies (
		name TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		parameters TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id BIGINT PRIMARY KEY DEFAULT nextval('session_id_seq'),
		name TEXT NOT NULL UNIQUE,
		mode TEXT NOT NULL,
		initial_balance DOUBLE NOT NULL,
		status TEXT NOT NULL,
		buy_strategy TEXT NOT NULL DEFAULT '',
		sell_strategy TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS session_tickers (
		session_id BIGINT NOT NULL,
		ticker TEXT NOT NULL,
		PRIMARY KEY (session_id, ticker)
	)`,
	`CREATE TABLE IF NOT EXISTS session_strategies (
		session_id BIGINT NOT NULL,
		name TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		seq INTEGER NOT NULL,
		PRIMARY KEY (session_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGINT PRIMARY KEY DEFAULT nextval('account_id_seq'),
		session_id BIGINT NOT NULL,
		mode TEXT NOT NULL,
		cash_balance DOUBLE NOT NULL,
		total_equity DOUBLE NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS holdings (
		id BIGINT PRIMARY KEY DEFAULT nextval('holding_id_seq'),
		session_id BIGINT NOT NULL,
		mode TEXT NOT NULL,
		strategy TEXT NOT NULL,
		ticker TEXT NOT NULL,
		quantity DOUBLE NOT NULL,
		average_price DOUBLE NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trades (
		id BIGINT PRIMARY KEY DEFAULT nextval('trade_id_seq'),
		session_id BIGINT NOT NULL,
		order_id TEXT NOT NULL UNIQUE,
		mode TEXT NOT NULL,
		ticker TEXT NOT NULL,
		action TEXT NOT NULL,
		quantity DOUBLE NOT NULL,
		price DOUBLE NOT NULL,
		total_cost DOUBLE NOT NULL,
		fees DOUBLE NOT NULL DEFAULT 0,
		strategy TEXT NOT NULL,
		status TEXT NOT NULL,
		timestamp TIMESTAMP NOT NULL
	)`,
}

func (s *Store) migrate() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.Wrap(errors.ErrCodeStorageFailed, "failed to create schema", err)
		}
	}

	return s.checkSchemaVersion()
}

// checkSchemaVersion records the schema version of a new database and
// rejects databases written with an incompatible schema.
func (s *Store) checkSchemaVersion() error {
	var stored string

	err := s.sq.Select("value").From("schema_meta").Where(squirrel.Eq{"key": schemaVersionKey}).
		RunWith(s.db).QueryRow().Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.sq.Insert("schema_meta").Columns("key", "value").
			Values(schemaVersionKey, version.SchemaVersion).RunWith(s.db).Exec()
		if err != nil {
			return errors.Wrap(errors.ErrCodeStorageFailed, "failed to record schema version", err)
		}

		return nil
	}

	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to read schema version", err)
	}

	return version.CheckSchemaCompatibility(stored, version.SchemaVersion)
}

// ledgerWhere scopes ledger rows by session, or by mode for the legacy
// ledger that lives outside sessions.
func ledgerWhere(key types.LedgerKey) squirrel.Eq {
	if key.SessionID == 0 {
		return squirrel.Eq{"session_id": 0, "mode": string(key.Mode)}
	}

	return squirrel.Eq{"session_id": key.SessionID}
}

func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	return strings.Contains(msg, "Duplicate key") || strings.Contains(msg, "Constraint Error")
}

const (
	sessionColumns = "id, name, mode, initial_balance, status, buy_strategy, sell_strategy, created_at, updated_at"
	accountColumns = "id, session_id, mode, cash_balance, total_equity, updated_at"
	holdingColumns = "id, session_id, mode, strategy, ticker, quantity, average_price, updated_at"
	tradeColumns   = "id, session_id, order_id, mode, ticker, action, quantity, price, total_cost, fees, strategy, status, timestamp"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (types.Session, error) {
	var session types.Session
	err := row.Scan(
		&session.ID,
		&session.Name,
		&session.Mode,
		&session.InitialBalance,
		&session.Status,
		&session.BuyStrategy,
		&session.SellStrategy,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	return session, err
}

func scanAccount(row scanner) (types.Account, error) {
	var account types.Account
	err := row.Scan(
		&account.ID,
		&account.SessionID,
		&account.Mode,
		&account.CashBalance,
		&account.TotalEquity,
		&account.UpdatedAt,
	)

	return account, err
}

func scanHolding(row scanner) (types.Holding, error) {
	var holding types.Holding
	err := row.Scan(
		&holding.ID,
		&holding.SessionID,
		&holding.Mode,
		&holding.Strategy,
		&holding.Symbol,
		&holding.Quantity,
		&holding.AveragePrice,
		&holding.UpdatedAt,
	)

	return holding, err
}

func scanTrade(row scanner) (types.Trade, error) {
	var trade types.Trade
	err := row.Scan(
		&trade.ID,
		&trade.SessionID,
		&trade.OrderID,
		&trade.Mode,
		&trade.Symbol,
		&trade.Action,
		&trade.Quantity,
		&trade.Price,
		&trade.TotalCost,
		&trade.Fees,
		&trade.Strategy,
		&trade.Status,
		&trade.Timestamp,
	)

	return trade, err
}
