// Package session manages trading sessions: their persisted configuration,
// the engines that trade them and the loops those engines run in.
package session

import (
	"context"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-stocks/internal/logger"
	"github.com/rxtech-lab/argo-stocks/internal/store"
	"github.com/rxtech-lab/argo-stocks/internal/strategy"
	"github.com/rxtech-lab/argo-stocks/internal/trading/engine"
	"github.com/rxtech-lab/argo-stocks/internal/trading/engine/engine_v1"
	tradingprovider "github.com/rxtech-lab/argo-stocks/internal/trading/provider"
	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
	"github.com/rxtech-lab/argo-stocks/pkg/marketdata/provider"
)

const (
	DefaultInitialBalance = 10000.0
	// DefaultTradeLimit caps trade log reads that do not set a limit.
	DefaultTradeLimit = 50
)

// FallbackTickers are traded by sessions that have no tickers of their own.
var FallbackTickers = []string{"AAPL", "GOOGL", "TSLA"}

// Config holds the dependencies of a SessionManager.
type Config struct {
	Store  store.SessionStore
	Prices provider.PriceSource
	// Factory builds strategy instances; its catalog is refreshed from Store.
	Factory *strategy.Factory
	// Broker receives LIVE orders. LIVE sessions are rejected without one.
	Broker tradingprovider.Broker
	// InitialBalance is given to sessions created without one (default: DefaultInitialBalance).
	InitialBalance float64
	// Interval is the scan interval of every session loop (default: engine.DefaultInterval).
	Interval time.Duration
	// Callbacks are handed to every session loop.
	Callbacks engine.Callbacks
	// NewEngine builds the engine of a session (default: engine_v1.NewTradingEngineV1).
	NewEngine func(log *logger.Logger) engine.TradingEngine
}

// CreateSessionRequest describes a new session. A BuyStrategy/SellStrategy
// pair makes a composite session and takes precedence over Strategies.
type CreateSessionRequest struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	// Mode defaults to PAPER.
	Mode types.TradingMode `json:"mode" yaml:"mode" validate:"omitempty,oneof=PAPER LIVE"`
	// InitialBalance defaults to Config.InitialBalance.
	InitialBalance float64  `json:"initial_balance" yaml:"initial_balance" validate:"gte=0"`
	Tickers        []string `json:"tickers" yaml:"tickers"`
	Strategies     []string `json:"strategies" yaml:"strategies"`
	BuyStrategy    string   `json:"buy_strategy" yaml:"buy_strategy" validate:"required_with=SellStrategy"`
	SellStrategy   string   `json:"sell_strategy" yaml:"sell_strategy" validate:"required_with=BuyStrategy"`
}

// SessionManager owns the engine registry of every session. Run must be
// running for any other method to be served: each one is a request handled
// by the Run goroutine, which is the only one touching the registry.
type SessionManager struct {
	cfg Config
	log *logger.Logger

	requests chan request
	exits    chan loopExit
	ready    chan struct{}
	done     chan struct{}
	started  atomic.Bool

	// owned by the Run goroutine
	ctx     context.Context
	engines map[int64]engine.TradingEngine
	loops   map[int64]*loop
}

// loop is a running session loop. cancel is its cancellation token and
// done is closed once the engine returned.
type loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

type loopExit struct {
	sessionID int64
	loop      *loop
	err       error
}

type request struct {
	ctx   context.Context
	fn    func(ctx context.Context) (any, error)
	reply chan response
}

type response struct {
	value any
	err   error
}

// exited is returned for sessions that have no loop to wait for.
var exited = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)

	return ch
}()

// NewSessionManager creates a session manager. Call Run to serve it.
func NewSessionManager(cfg Config, log *logger.Logger) (*SessionManager, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if cfg.Store == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "session store is required")
	}

	if cfg.Prices == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "price source is required")
	}

	if cfg.Factory == nil {
		cfg.Factory = strategy.NewFactory(nil)
	}

	if cfg.InitialBalance == 0 {
		cfg.InitialBalance = DefaultInitialBalance
	}

	if cfg.Interval == 0 {
		cfg.Interval = engine.DefaultInterval
	}

	if cfg.NewEngine == nil {
		cfg.NewEngine = func(log *logger.Logger) engine.TradingEngine {
			return engine_v1.NewTradingEngineV1(log)
		}
	}

	return &SessionManager{
		cfg:      cfg,
		log:      log,
		requests: make(chan request),
		exits:    make(chan loopExit),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
		engines:  make(map[int64]engine.TradingEngine),
		loops:    make(map[int64]*loop),
	}, nil
}

// Run serves the manager until ctx is cancelled. Session loops run under
// ctx; when Run returns every loop has exited and was marked STOPPED.
func (m *SessionManager) Run(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return errors.New(errors.ErrCodeEngineRunning, "session manager is already running")
	}
	defer close(m.done)

	m.ctx = ctx

	if err := m.ReloadStrategies(ctx); err != nil {
		m.log.Warn("Failed to load strategy configurations", zap.Error(err))
	}

	m.log.Info("Session manager started")
	close(m.ready)

	for {
		select {
		case <-ctx.Done():
			m.stopAll(context.WithoutCancel(ctx))
			m.log.Info("Session manager stopped")

			return nil
		case req := <-m.requests:
			value, err := req.fn(req.ctx)
			req.reply <- response{value: value, err: err}
		case exit := <-m.exits:
			m.handleExit(exit)
		}
	}
}

// Ready is closed once Run serves requests.
func (m *SessionManager) Ready() <-chan struct{} {
	return m.ready
}

// Done is closed when Run has returned.
func (m *SessionManager) Done() <-chan struct{} {
	return m.done
}

// call runs fn on the Run goroutine and returns its result.
func call[T any](ctx context.Context, m *SessionManager, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if !m.started.Load() {
		return zero, errors.New(errors.ErrCodeSessionClosed, "session manager is not running")
	}

	req := request{
		ctx:   ctx,
		fn:    func(ctx context.Context) (any, error) { return fn(ctx) },
		reply: make(chan response, 1),
	}

	select {
	case m.requests <- req:
	case <-m.done:
		return zero, errors.New(errors.ErrCodeSessionClosed, "session manager is closed")
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		if resp.err != nil {
			return zero, resp.err
		}

		return resp.value.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func wait(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReloadStrategies loads the stored strategy configurations into the
// factory's catalog. Invalid rows are skipped.
func (m *SessionManager) ReloadStrategies(ctx context.Context) error {
	configs, err := m.cfg.Store.ListStrategyConfigs(ctx)
	if err != nil {
		return err
	}

	for _, cfg := range configs {
		if err := m.cfg.Factory.Catalog().Put(cfg); err != nil {
			m.log.Warn("Skipping invalid strategy configuration", zap.String("strategy", cfg.Name), zap.Error(err))
		}
	}

	return nil
}

// CreateSession validates the request, persists the session and registers
// an engine for it. The session is not started.
func (m *SessionManager) CreateSession(ctx context.Context, req CreateSessionRequest) (types.SessionInfo, error) {
	if err := validator.New().Struct(req); err != nil {
		return types.SessionInfo{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid session request", err)
	}

	if req.Mode == "" {
		req.Mode = types.ModePaper
	}

	if req.InitialBalance == 0 {
		req.InitialBalance = m.cfg.InitialBalance
	}

	if req.Mode == types.ModeLive && m.cfg.Broker == nil {
		return types.SessionInfo{}, errors.New(errors.ErrCodeInvalidConfiguration, "LIVE sessions need a broker")
	}

	tickers, err := m.validateTickers(ctx, req.Tickers)
	if err != nil {
		return types.SessionInfo{}, err
	}

	req.Tickers = tickers

	return call(ctx, m, func(ctx context.Context) (types.SessionInfo, error) {
		return m.create(ctx, req)
	})
}

func (m *SessionManager) create(ctx context.Context, req CreateSessionRequest) (types.SessionInfo, error) {
	params := store.CreateSessionParams{
		Name:           req.Name,
		Mode:           req.Mode,
		InitialBalance: req.InitialBalance,
		Tickers:        req.Tickers,
	}

	var configs []strategy.Config

	if req.BuyStrategy != "" {
		cfg, err := m.compositeConfig(req.BuyStrategy, req.SellStrategy)
		if err != nil {
			return types.SessionInfo{}, err
		}

		configs = []strategy.Config{cfg}
		params.BuyStrategy = req.BuyStrategy
		params.SellStrategy = req.SellStrategy
	} else {
		configs = withDefault(m.cfg.Factory.Catalog(), m.resolveStrategies(req.Strategies))
		for _, cfg := range configs {
			params.Strategies = append(params.Strategies, cfg.Name)
		}
	}

	session, err := m.cfg.Store.CreateSession(ctx, params)
	if err != nil {
		return types.SessionInfo{}, err
	}

	eng, err := m.newEngine(session, tickersOrFallback(req.Tickers), configs)
	if err != nil {
		return types.SessionInfo{}, err
	}

	m.engines[session.ID] = eng

	return m.info(ctx, session, false)
}

// StartSession starts the loop of a session. Starting a running session is
// a no-op. Sessions without a resident engine are rebuilt from storage.
func (m *SessionManager) StartSession(ctx context.Context, id int64) error {
	_, err := call(ctx, m, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.start(ctx, id)
	})

	return err
}

func (m *SessionManager) start(ctx context.Context, id int64) error {
	if _, ok := m.loops[id]; ok {
		return nil
	}

	session, err := m.cfg.Store.GetSession(ctx, id)
	if err != nil {
		return err
	}

	eng, ok := m.engines[id]
	// an engine still finishing a stopped loop cannot be run again
	if !ok || eng.Status() == engine.StatusRunning {
		eng, err = m.rebuild(ctx, session)
		if err != nil {
			return err
		}

		m.engines[id] = eng
	}

	if err := m.cfg.Store.UpdateSessionStatus(ctx, id, types.SessionRunning); err != nil {
		return err
	}

	m.launch(id, eng)

	m.log.Info("Session started",
		zap.Int64("session_id", id),
		zap.String("name", session.Name),
		zap.Strings("tickers", eng.Tickers()),
	)

	return nil
}

func (m *SessionManager) launch(id int64, eng engine.TradingEngine) {
	loopCtx, cancel := context.WithCancel(m.ctx)
	l := &loop{cancel: cancel, done: make(chan struct{})}
	m.loops[id] = l
	callbacks := m.callbacks(id)

	go func() {
		err := eng.Run(loopCtx, callbacks)
		cancel()
		close(l.done)

		select {
		case m.exits <- loopExit{sessionID: id, loop: l, err: err}:
		case <-m.done:
		}
	}()
}

func (m *SessionManager) callbacks(id int64) engine.Callbacks {
	callbacks := m.cfg.Callbacks
	if callbacks.OnError == nil {
		onError := engine.OnErrorCallback(func(err error) {
			m.log.Warn("Session cycle error", zap.Int64("session_id", id), zap.Error(err))
		})
		callbacks.OnError = &onError
	}

	return callbacks
}

// handleExit drops a loop that ended on its own. Loops that were stopped
// or replaced are already gone from the registry.
func (m *SessionManager) handleExit(exit loopExit) {
	current, ok := m.loops[exit.sessionID]
	if !ok || current != exit.loop {
		return
	}

	delete(m.loops, exit.sessionID)

	if exit.err != nil {
		m.log.Error("Session loop failed", zap.Int64("session_id", exit.sessionID), zap.Error(exit.err))
	} else {
		m.log.Info("Session loop exited", zap.Int64("session_id", exit.sessionID))
	}

	if err := m.cfg.Store.UpdateSessionStatus(context.WithoutCancel(m.ctx), exit.sessionID, types.SessionStopped); err != nil {
		m.log.Warn("Failed to mark session stopped", zap.Int64("session_id", exit.sessionID), zap.Error(err))
	}
}

// detach cancels the loop of a session and removes it from the registry.
// The returned channel is closed once the loop has exited.
func (m *SessionManager) detach(id int64) (<-chan struct{}, bool) {
	l, ok := m.loops[id]
	if !ok {
		return exited, false
	}

	l.cancel()
	delete(m.loops, id)

	return l.done, true
}

// StopSession cancels the loop of a session, marks it STOPPED and waits
// for the cycle in flight to finish.
func (m *SessionManager) StopSession(ctx context.Context, id int64) error {
	done, err := call(ctx, m, func(ctx context.Context) (<-chan struct{}, error) {
		if _, err := m.cfg.Store.GetSession(ctx, id); err != nil {
			return nil, err
		}

		done, _ := m.detach(id)
		if err := m.cfg.Store.UpdateSessionStatus(ctx, id, types.SessionStopped); err != nil {
			return done, err
		}

		m.log.Info("Session stopped", zap.Int64("session_id", id))

		return done, nil
	})
	if err != nil {
		return err
	}

	return wait(ctx, done)
}

// RemoveSession drops a session from memory. A running loop is stopped;
// persisted rows are kept.
func (m *SessionManager) RemoveSession(ctx context.Context, id int64) error {
	done, err := call(ctx, m, func(ctx context.Context) (<-chan struct{}, error) {
		done, wasRunning := m.detach(id)
		delete(m.engines, id)

		if wasRunning {
			if err := m.cfg.Store.UpdateSessionStatus(ctx, id, types.SessionStopped); err != nil {
				return done, err
			}
		}

		return done, nil
	})
	if err != nil {
		return err
	}

	return wait(ctx, done)
}

// DeleteSession stops a session and deletes it with its trades, holdings
// and account.
func (m *SessionManager) DeleteSession(ctx context.Context, id int64) error {
	done, err := call(ctx, m, func(ctx context.Context) (<-chan struct{}, error) {
		if _, err := m.cfg.Store.GetSession(ctx, id); err != nil {
			return nil, err
		}

		done, _ := m.detach(id)

		return done, nil
	})
	if err != nil {
		return err
	}

	// the loop must be gone before its rows are deleted
	if err := wait(ctx, done); err != nil {
		return err
	}

	_, err = call(ctx, m, func(ctx context.Context) (struct{}, error) {
		if _, ok := m.loops[id]; ok {
			return struct{}{}, errors.Newf(errors.ErrCodeSessionConflict, "session %d was restarted while being deleted", id)
		}

		if err := m.cfg.Store.DeleteSession(ctx, id); err != nil {
			return struct{}{}, err
		}

		delete(m.engines, id)

		return struct{}{}, nil
	})

	return err
}

// Shutdown stops every session loop and waits for all of them to exit.
// The manager keeps serving requests.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	pending, err := call(ctx, m, func(ctx context.Context) ([]<-chan struct{}, error) {
		var pending []<-chan struct{}

		for _, id := range m.runningIDs() {
			done, _ := m.detach(id)
			pending = append(pending, done)
			m.markStopped(ctx, id)
		}

		return pending, nil
	})
	if err != nil {
		return err
	}

	for _, done := range pending {
		if err := wait(ctx, done); err != nil {
			return err
		}
	}

	return nil
}

func (m *SessionManager) stopAll(ctx context.Context) {
	for _, id := range m.runningIDs() {
		done, _ := m.detach(id)
		<-done
		m.markStopped(ctx, id)
	}
}

func (m *SessionManager) markStopped(ctx context.Context, id int64) {
	if err := m.cfg.Store.UpdateSessionStatus(ctx, id, types.SessionStopped); err != nil {
		m.log.Warn("Failed to mark session stopped", zap.Int64("session_id", id), zap.Error(err))
	}
}

func (m *SessionManager) runningIDs() []int64 {
	ids := make([]int64, 0, len(m.loops))
	for id := range m.loops {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// ActiveSessions returns the ids of the sessions whose loop is running.
func (m *SessionManager) ActiveSessions(ctx context.Context) ([]int64, error) {
	return call(ctx, m, func(_ context.Context) ([]int64, error) {
		return m.runningIDs(), nil
	})
}

// AddTicker validates symbol and adds it to a session. A resident engine
// picks it up from its next cycle.
func (m *SessionManager) AddTicker(ctx context.Context, id int64, symbol string) error {
	valid, err := m.validateTickers(ctx, []string{symbol})
	if err != nil {
		return err
	}

	if len(valid) == 0 {
		return errors.New(errors.ErrCodeInvalidSymbol, "ticker is required")
	}

	_, err = call(ctx, m, func(ctx context.Context) (struct{}, error) {
		if _, err := m.cfg.Store.GetSession(ctx, id); err != nil {
			return struct{}{}, err
		}

		if err := m.cfg.Store.AddSessionTicker(ctx, id, valid[0]); err != nil {
			return struct{}{}, err
		}

		return struct{}{}, m.refreshTickers(ctx, id)
	})

	return err
}

// RemoveTicker removes symbol from a session. A resident engine stops
// scanning it from its next cycle.
func (m *SessionManager) RemoveTicker(ctx context.Context, id int64, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return errors.New(errors.ErrCodeInvalidSymbol, "ticker is required")
	}

	_, err := call(ctx, m, func(ctx context.Context) (struct{}, error) {
		if _, err := m.cfg.Store.GetSession(ctx, id); err != nil {
			return struct{}{}, err
		}

		if err := m.cfg.Store.RemoveSessionTicker(ctx, id, symbol); err != nil {
			return struct{}{}, err
		}

		return struct{}{}, m.refreshTickers(ctx, id)
	})

	return err
}

func (m *SessionManager) refreshTickers(ctx context.Context, id int64) error {
	eng, ok := m.engines[id]
	if !ok {
		return nil
	}

	tickers, err := m.sessionTickers(ctx, id)
	if err != nil {
		return err
	}

	eng.SetTickers(tickers)

	return nil
}

// ToggleStrategy flips whether a strategy of the session is active and
// returns the new state. Running loops keep their strategies until rebuilt.
func (m *SessionManager) ToggleStrategy(ctx context.Context, id int64, name string) (bool, error) {
	if _, err := m.cfg.Store.GetSession(ctx, id); err != nil {
		return false, err
	}

	selected, err := m.cfg.Store.SessionStrategies(ctx, id)
	if err != nil {
		return false, err
	}

	idx := slices.IndexFunc(selected, func(st types.SessionStrategy) bool { return st.Name == name })
	if idx < 0 {
		return false, errors.Newf(errors.ErrCodeDataNotFound, "session %d has no strategy %s", id, name)
	}

	active := !selected[idx].IsActive
	if err := m.cfg.Store.SetSessionStrategyActive(ctx, id, name, active); err != nil {
		return false, err
	}

	m.log.Info("Toggled session strategy",
		zap.Int64("session_id", id),
		zap.String("strategy", name),
		zap.Bool("active", active),
	)

	return active, nil
}

// GetSession returns a session with its tickers, strategies and running flag.
func (m *SessionManager) GetSession(ctx context.Context, id int64) (types.SessionInfo, error) {
	session, err := m.cfg.Store.GetSession(ctx, id)
	if err != nil {
		return types.SessionInfo{}, err
	}

	running, err := m.ActiveSessions(ctx)
	if err != nil {
		return types.SessionInfo{}, err
	}

	return m.info(ctx, session, slices.Contains(running, id))
}

// ListSessions returns every session, newest first.
func (m *SessionManager) ListSessions(ctx context.Context) ([]types.SessionInfo, error) {
	sessions, err := m.cfg.Store.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	running, err := m.ActiveSessions(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]types.SessionInfo, 0, len(sessions))

	for _, session := range sessions {
		info, err := m.info(ctx, session, slices.Contains(running, session.ID))
		if err != nil {
			return nil, err
		}

		infos = append(infos, info)
	}

	return infos, nil
}

func (m *SessionManager) info(ctx context.Context, session types.Session, running bool) (types.SessionInfo, error) {
	tickers, err := m.cfg.Store.SessionTickers(ctx, session.ID)
	if err != nil {
		return types.SessionInfo{}, err
	}

	selected, err := m.cfg.Store.SessionStrategies(ctx, session.ID)
	if err != nil {
		return types.SessionInfo{}, err
	}

	return types.SessionInfo{
		Session:    session,
		Tickers:    tickers,
		Strategies: selected,
		Running:    running,
	}, nil
}
