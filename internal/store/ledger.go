package store

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

type ledgerTx struct {
	ctx   context.Context
	tx    *sql.Tx
	store *Store
}

// Begin starts a ledger transaction.
func (s *Store) Begin(ctx context.Context) (LedgerTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTransactionFailed, "failed to begin ledger transaction", err)
	}

	return &ledgerTx{ctx: ctx, tx: tx, store: s}, nil
}

func (t *ledgerTx) Account(key types.LedgerKey) (types.Account, error) {
	return t.store.account(t.ctx, t.tx, key)
}

func (t *ledgerTx) Holding(key types.LedgerKey, strategyName string, symbol string) (optional.Option[types.Holding], error) {
	where := ledgerWhere(key)
	where["strategy"] = strategyName
	where["ticker"] = symbol

	row := t.store.sq.Select(holdingColumns).
		From("holdings").
		Where(where).
		RunWith(t.tx).
		QueryRowContext(t.ctx)

	holding, err := scanHolding(row)
	if errors.Is(err, sql.ErrNoRows) {
		return optional.None[types.Holding](), nil
	}

	if err != nil {
		return optional.None[types.Holding](), errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query %s holding of %s", symbol, strategyName)
	}

	return optional.Some(holding), nil
}

func (t *ledgerTx) UpdateCash(key types.LedgerKey, cash float64) error {
	_, err := t.store.sq.Update("accounts").
		Set("cash_balance", cash).
		Set("updated_at", t.store.now()).
		Where(ledgerWhere(key)).
		RunWith(t.tx).
		ExecContext(t.ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to update cash balance", err)
	}

	return nil
}

func (t *ledgerTx) SaveHolding(holding types.Holding) (types.Holding, error) {
	holding.UpdatedAt = t.store.now()

	if holding.ID != 0 {
		_, err := t.store.sq.Update("holdings").
			Set("quantity", holding.Quantity).
			Set("average_price", holding.AveragePrice).
			Set("updated_at", holding.UpdatedAt).
			Where(squirrel.Eq{"id": holding.ID}).
			RunWith(t.tx).
			ExecContext(t.ctx)
		if err != nil {
			return holding, errors.Wrapf(errors.ErrCodeStorageFailed, err, "failed to update holding %d", holding.ID)
		}

		return holding, nil
	}

	err := t.store.sq.Insert("holdings").
		Columns("session_id", "mode", "strategy", "ticker", "quantity", "average_price", "updated_at").
		Values(holding.SessionID, string(holding.Mode), holding.Strategy, holding.Symbol,
			holding.Quantity, holding.AveragePrice, holding.UpdatedAt).
		Suffix("RETURNING id").
		RunWith(t.tx).
		QueryRowContext(t.ctx).
		Scan(&holding.ID)
	if err != nil {
		return holding, errors.Wrapf(errors.ErrCodeStorageFailed, err, "failed to insert %s holding", holding.Symbol)
	}

	return holding, nil
}

func (t *ledgerTx) InsertTrade(trade types.Trade) (types.Trade, error) {
	err := t.store.sq.Insert("trades").
		Columns("session_id", "order_id", "mode", "ticker", "action", "quantity", "price",
			"total_cost", "fees", "strategy", "status", "timestamp").
		Values(trade.SessionID, trade.OrderID, string(trade.Mode), trade.Symbol, string(trade.Action),
			trade.Quantity, trade.Price, trade.TotalCost, trade.Fees, trade.Strategy,
			string(trade.Status), trade.Timestamp).
		Suffix("RETURNING id").
		RunWith(t.tx).
		QueryRowContext(t.ctx).
		Scan(&trade.ID)
	if err != nil {
		if isConstraintViolation(err) {
			return trade, errors.Wrapf(errors.ErrCodeOrderFailed, err, "duplicate order id %s", trade.OrderID)
		}

		return trade, errors.Wrap(errors.ErrCodeStorageFailed, "failed to insert trade", err)
	}

	return trade, nil
}

func (t *ledgerTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeTransactionFailed, "failed to commit ledger transaction", err)
	}

	return nil
}

func (t *ledgerTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return errors.Wrap(errors.ErrCodeTransactionFailed, "failed to roll back ledger transaction", err)
	}

	return nil
}

// EnsureAccount returns the account of key, creating it with
// initialBalance as cash and equity when it does not exist.
func (s *Store) EnsureAccount(ctx context.Context, key types.LedgerKey, initialBalance float64) (types.Account, error) {
	account, err := s.account(ctx, s.db, key)
	if err == nil {
		return account, nil
	}

	if !errors.HasCode(err, errors.ErrCodeDataNotFound) {
		return types.Account{}, err
	}

	now := s.now()
	account = types.Account{
		SessionID:   key.SessionID,
		Mode:        key.Mode,
		CashBalance: initialBalance,
		TotalEquity: initialBalance,
		UpdatedAt:   now,
	}

	err = s.sq.Insert("accounts").
		Columns("session_id", "mode", "cash_balance", "total_equity", "updated_at").
		Values(account.SessionID, string(account.Mode), account.CashBalance, account.TotalEquity, now).
		Suffix("RETURNING id").
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&account.ID)
	if err != nil {
		return types.Account{}, errors.Wrap(errors.ErrCodeStorageFailed, "failed to create account", err)
	}

	s.logger.Info("Created account",
		zap.Int64("session_id", key.SessionID),
		zap.String("mode", string(key.Mode)),
		zap.Float64("initial_balance", initialBalance),
	)

	return account, nil
}

func (s *Store) GetAccount(ctx context.Context, key types.LedgerKey) (types.Account, error) {
	return s.account(ctx, s.db, key)
}

func (s *Store) account(ctx context.Context, runner squirrel.BaseRunner, key types.LedgerKey) (types.Account, error) {
	row := s.sq.Select(accountColumns).
		From("accounts").
		Where(ledgerWhere(key)).
		OrderBy("id").
		Limit(1).
		RunWith(runner).
		QueryRowContext(ctx)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Account{}, errors.Newf(errors.ErrCodeDataNotFound, "no account for session %d (%s)", key.SessionID, key.Mode)
	}

	if err != nil {
		return types.Account{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query account", err)
	}

	return account, nil
}

// Holdings returns the open holdings of key, ordered by ticker and strategy.
func (s *Store) Holdings(ctx context.Context, key types.LedgerKey) ([]types.Holding, error) {
	rows, err := s.sq.Select(holdingColumns).
		From("holdings").
		Where(ledgerWhere(key)).
		Where(squirrel.Gt{"quantity": 0}).
		OrderBy("ticker", "strategy").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query holdings", err)
	}
	defer rows.Close()

	var holdings []types.Holding

	for rows.Next() {
		holding, err := scanHolding(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan holding", err)
		}

		holdings = append(holdings, holding)
	}

	return holdings, rows.Err()
}

// UpdateEquity records a valuation checkpoint.
func (s *Store) UpdateEquity(ctx context.Context, key types.LedgerKey, totalEquity float64) error {
	_, err := s.sq.Update("accounts").
		Set("total_equity", totalEquity).
		Set("updated_at", s.now()).
		Where(ledgerWhere(key)).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageFailed, "failed to update total equity", err)
	}

	return nil
}

// Trades returns the trade log of key, newest first.
func (s *Store) Trades(ctx context.Context, key types.LedgerKey, filter types.TradeFilter) ([]types.Trade, error) {
	query := s.sq.Select(tradeColumns).
		From("trades").
		Where(ledgerWhere(key)).
		OrderBy("timestamp DESC", "id DESC")

	if filter.Symbol != "" {
		query = query.Where(squirrel.Eq{"ticker": filter.Symbol})
	}

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": string(filter.Status)})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	var trades []types.Trade

	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan trade", err)
		}

		trades = append(trades, trade)
	}

	return trades, rows.Err()
}
