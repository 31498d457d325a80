package types

import "time"

// SessionStatus is the lifecycle status of a trading session.
type SessionStatus string

const (
	SessionCreated SessionStatus = "CREATED"
	SessionRunning SessionStatus = "RUNNING"
	SessionStopped SessionStatus = "STOPPED"
	// SessionCompleted is never assigned by the session manager.
	SessionCompleted SessionStatus = "COMPLETED"
)

// Session is the persisted configuration of a trading session.
type Session struct {
	ID             int64         `json:"id" yaml:"id"`
	Name           string        `json:"name" yaml:"name"`
	Mode           TradingMode   `json:"mode" yaml:"mode"`
	InitialBalance float64       `json:"initial_balance" yaml:"initial_balance"`
	Status         SessionStatus `json:"status" yaml:"status"`
	// BuyStrategy and SellStrategy are set together for composite sessions.
	BuyStrategy  string    `json:"buy_strategy,omitempty" yaml:"buy_strategy,omitempty"`
	SellStrategy string    `json:"sell_strategy,omitempty" yaml:"sell_strategy,omitempty"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// IsComposite reports whether the session trades a buy/sell strategy pair.
func (s Session) IsComposite() bool {
	return s.BuyStrategy != "" && s.SellStrategy != ""
}

// Key returns the ledger key of the session.
func (s Session) Key() LedgerKey {
	return LedgerKey{SessionID: s.ID, Mode: s.Mode}
}

// SessionStrategy is one strategy selected for a session.
type SessionStrategy struct {
	SessionID int64  `json:"session_id" yaml:"session_id"`
	Name      string `json:"name" yaml:"name"`
	IsActive  bool   `json:"is_active" yaml:"is_active"`
}

// SessionInfo is a session together with its in-memory state.
type SessionInfo struct {
	Session    `yaml:",inline"`
	Tickers    []string          `json:"tickers" yaml:"tickers"`
	Strategies []SessionStrategy `json:"strategies" yaml:"strategies"`
	// Running is true when the session's loop is live in this process.
	Running bool `json:"is_running_memory" yaml:"is_running_memory"`
}
