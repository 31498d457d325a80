package store

import (
	"context"
	"database/sql"
	"slices"
	"strings"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-stocks/internal/strategy"
	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// CreateSessionParams describes a new session. Either Strategies or the
// BuyStrategy/SellStrategy pair selects what the session trades.
type CreateSessionParams struct {
	Name           string            `validate:"required"`
	Mode           types.TradingMode `validate:"required,oneof=PAPER LIVE"`
	InitialBalance float64           `validate:"gt=0"`
	Tickers        []string
	Strategies     []string
	BuyStrategy    string `validate:"required_with=SellStrategy"`
	SellStrategy   string `validate:"required_with=BuyStrategy"`
}

// CreateSession inserts the session with its tickers, strategy selection
// and account in one transaction. A composite selection is recorded as a
// single marker row in the strategy list. A taken name fails with
// ErrCodeSessionConflict.
func (s *Store) CreateSession(ctx context.Context, params CreateSessionParams) (types.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Session{}, errors.Wrap(errors.ErrCodeTransactionFailed, "failed to begin transaction", err)
	}

	session, err := s.createSession(ctx, tx, params)
	if err != nil {
		tx.Rollback()

		return types.Session{}, err
	}

	if err := tx.Commit(); err != nil {
		if isConstraintViolation(err) {
			return types.Session{}, errors.Wrapf(errors.ErrCodeSessionConflict, err, "session %q already exists", params.Name)
		}

		return types.Session{}, errors.Wrap(errors.ErrCodeTransactionFailed, "failed to commit session", err)
	}

	s.logger.Info("Created session",
		zap.Int64("session_id", session.ID),
		zap.String("name", session.Name),
		zap.String("mode", string(session.Mode)),
	)

	return session, nil
}

func (s *Store) createSession(ctx context.Context, tx *sql.Tx, params CreateSessionParams) (types.Session, error) {
	var existing int

	err := s.sq.Select("COUNT(*)").
		From("sessions").
		Where(squirrel.Eq{"name": params.Name}).
		RunWith(tx).
		QueryRowContext(ctx).
		Scan(&existing)
	if err != nil {
		return types.Session{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to check session name", err)
	}

	if existing > 0 {
		return types.Session{}, errors.Newf(errors.ErrCodeSessionConflict, "session %q already exists", params.Name)
	}

	now := s.now()
	session := types.Session{
		Name:           params.Name,
		Mode:           params.Mode,
		InitialBalance: params.InitialBalance,
		Status:         types.SessionCreated,
		BuyStrategy:    params.BuyStrategy,
		SellStrategy:   params.SellStrategy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.sq.Insert("sessions").
		Columns("name", "mode", "initial_balance", "status", "buy_strategy", "sell_strategy", "created_at", "updated_at").
		Values(session.Name, string(session.Mode), session.InitialBalance, string(session.Status),
			session.BuyStrategy, session.SellStrategy, session.CreatedAt, session.UpdatedAt).
		Suffix("RETURNING id").
		RunWith(tx).
		QueryRowContext(ctx).
		Scan(&session.ID)
	if err != nil {
		if isConstraintViolation(err) {
			return types.Session{}, errors.Wrapf(errors.ErrCodeSessionConflict, err, "session %q already exists", params.Name)
		}

		return types.Session{}, errors.Wrap(errors.ErrCodeStorageFailed, "failed to insert session", err)
	}

	for _, ticker := range params.Tickers {
		_, err := s.sq.Insert("session_tickers").
			Columns("session_id", "ticker").
			Values(session.ID, ticker).
			Suffix("ON CONFLICT DO NOTHING").
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return types.Session{}, errors.Wrapf(errors.ErrCodeStorageFailed, err, "failed to insert ticker %s", ticker)
		}
	}

	names := params.Strategies
	if session.IsComposite() {
		names = []string{strategy.CompositeName(session.BuyStrategy, session.SellStrategy)}
	}

	for i, name := range names {
		_, err := s.sq.Insert("session_strategies").
			Columns("session_id", "name", "is_active", "seq").
			Values(session.ID, name, true, i).
			Suffix("ON CONFLICT DO NOTHING").
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return types.Session{}, errors.Wrapf(errors.ErrCodeStorageFailed, err, "failed to insert strategy %s", name)
		}
	}

	_, err = s.sq.Insert("accounts").
		Columns("session_id", "mode", "cash_balance", "total_equity", "updated_at").
		Values(session.ID, string(session.Mode), session.InitialBalance, session.InitialBalance, now).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return types.Session{}, errors.Wrap(errors.ErrCodeStorageFailed, "failed to insert account", err)
	}

	return session, nil
}

// GetSession returns the session with id, or ErrCodeSessionNotFound.
func (s *Store) GetSession(ctx context.Context, id int64) (types.Session, error) {
	row := s.sq.Select(sessionColumns).
		From("sessions").
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db).
		QueryRowContext(ctx)

	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Session{}, errors.Newf(errors.ErrCodeSessionNotFound, "session %d not found", id)
	}

	if err != nil {
		return types.Session{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query session %d", id)
	}

	return session, nil
}

// ListSessions returns every session, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]types.Session, error) {
	rows, err := s.sq.Select(sessionColumns).
		From("sessions").
		OrderBy("created_at DESC", "id DESC").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query sessions", err)
	}
	defer rows.Close()

	var sessions []types.Session

	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan session", err)
		}

		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

func (s *Store) UpdateSessionStatus(ctx context.Context, id int64, status types.SessionStatus) error {
	result, err := s.sq.Update("sessions").
		Set("status", string(status)).
		Set("updated_at", s.now()).
		Where(squirrel.Eq{"id": id}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStorageFailed, err, "failed to update session %d status", id)
	}

	return requireAffected(result, id)
}

// DeleteSession removes the session and all its ledger rows in one transaction.
func (s *Store) DeleteSession(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeTransactionFailed, "failed to begin transaction", err)
	}

	for _, table := range []string{"trades", "holdings", "accounts", "session_tickers", "session_strategies"} {
		if _, err := s.sq.Delete(table).Where(squirrel.Eq{"session_id": id}).RunWith(tx).ExecContext(ctx); err != nil {
			tx.Rollback()

			return errors.Wrapf(errors.ErrCodeStorageFailed, err, "failed to delete %s of session %d", table, id)
		}
	}

	result, err := s.sq.Delete("sessions").Where(squirrel.Eq{"id": id}).RunWith(tx).ExecContext(ctx)
	if err != nil {
		tx.Rollback()

		return errors.Wrapf(errors.ErrCodeStorageFailed, err, "failed to delete session %d", id)
	}

	if err := requireAffected(result, id); err != nil {
		tx.Rollback()

		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeTransactionFailed, "failed to commit session delete", err)
	}

	s.logger.Info("Deleted session", zap.Int64("session_id", id))

	return nil
}

// SessionTickers returns the tickers of a session, sorted.
func (s *Store) SessionTickers(ctx context.Context, id int64) ([]string, error) {
	rows, err := s.sq.Select("ticker").
		From("session_tickers").
		Where(squirrel.Eq{"session_id": id}).
		OrderBy("ticker").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query tickers of session %d", id)
	}
	defer rows.Close()

	var tickers []string

	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan ticker", err)
		}

		tickers = append(tickers, ticker)
	}

	return tickers, rows.Err()
}

func (s *Store) AddSessionTicker(ctx context.Context, id int64, ticker string) error {
	_, err := s.sq.Insert("session_tickers").
		Columns("session_id", "ticker").
		Values(id, ticker).
		Suffix("ON CONFLICT DO NOTHING").
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStorageFailed, err, "failed to add ticker %s to session %d", ticker, id)
	}

	return nil
}

func (s *Store) RemoveSessionTicker(ctx context.Context, id int64, ticker string) error {
	_, err := s.sq.Delete("session_tickers").
		Where(squirrel.Eq{"session_id": id, "ticker": ticker}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStorageFailed, err, "failed to remove ticker %s from session %d", ticker, id)
	}

	return nil
}

// SessionStrategies returns the strategy selection of a session in selection order.
func (s *Store) SessionStrategies(ctx context.Context, id int64) ([]types.SessionStrategy, error) {
	rows, err := s.sq.Select("session_id", "name", "is_active").
		From("session_strategies").
		Where(squirrel.Eq{"session_id": id}).
		OrderBy("seq").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query strategies of session %d", id)
	}
	defer rows.Close()

	var selected []types.SessionStrategy

	for rows.Next() {
		var st types.SessionStrategy
		if err := rows.Scan(&st.SessionID, &st.Name, &st.IsActive); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan session strategy", err)
		}

		selected = append(selected, st)
	}

	return selected, rows.Err()
}

func (s *Store) SetSessionStrategyActive(ctx context.Context, id int64, name string, active bool) error {
	result, err := s.sq.Update("session_strategies").
		Set("is_active", active).
		Where(squirrel.Eq{"session_id": id, "name": name}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStorageFailed, err, "failed to update strategy %s of session %d", name, id)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return errors.Newf(errors.ErrCodeDataNotFound, "session %d has no strategy %s", id, name)
	}

	return nil
}

// ActiveStrategyNames returns the active, non-marker strategy names of a selection.
func ActiveStrategyNames(selected []types.SessionStrategy) []string {
	names := make([]string, 0, len(selected))

	for _, st := range selected {
		if !st.IsActive || isCompositeMarker(st.Name) {
			continue
		}

		if !slices.Contains(names, st.Name) {
			names = append(names, st.Name)
		}
	}

	return names
}

func isCompositeMarker(name string) bool {
	return strings.HasPrefix(name, strategy.CompositeMarkerPrefix)
}

func requireAffected(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return errors.Newf(errors.ErrCodeSessionNotFound, "session %d not found", id)
	}

	return nil
}
