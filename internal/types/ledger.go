package types

import "time"

// LedgerKey scopes ledger rows. A zero SessionID addresses the legacy
// per-mode ledger that exists outside any session.
type LedgerKey struct {
	SessionID int64
	Mode      TradingMode
}

// Account holds the cash side of a ledger.
type Account struct {
	ID          int64       `json:"id" yaml:"id"`
	SessionID   int64       `json:"session_id" yaml:"session_id"`
	Mode        TradingMode `json:"mode" yaml:"mode"`
	CashBalance float64     `json:"cash_balance" yaml:"cash_balance"`
	// TotalEquity is cash plus mark-to-market holdings as of the last valuation checkpoint.
	TotalEquity float64   `json:"total_equity" yaml:"total_equity"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// Key returns the ledger key of the account.
func (a Account) Key() LedgerKey {
	return LedgerKey{SessionID: a.SessionID, Mode: a.Mode}
}

// Holding is the position of one strategy in one ticker.
// AveragePrice is meaningless once Quantity is zero.
type Holding struct {
	ID           int64       `json:"id" yaml:"id"`
	SessionID    int64       `json:"session_id" yaml:"session_id"`
	Mode         TradingMode `json:"mode" yaml:"mode"`
	Strategy     string      `json:"strategy" yaml:"strategy"`
	Symbol       string      `json:"ticker" yaml:"ticker"`
	Quantity     float64     `json:"quantity" yaml:"quantity"`
	AveragePrice float64     `json:"average_price" yaml:"average_price"`
	UpdatedAt    time.Time   `json:"updated_at" yaml:"updated_at"`
}

// HoldingValuation is a holding marked to the latest price.
type HoldingValuation struct {
	Symbol        string  `json:"ticker" yaml:"ticker"`
	Strategy      string  `json:"strategy" yaml:"strategy"`
	Quantity      float64 `json:"quantity" yaml:"quantity"`
	AveragePrice  float64 `json:"average_price" yaml:"average_price"`
	CurrentPrice  float64 `json:"current_price" yaml:"current_price"`
	Value         float64 `json:"value" yaml:"value"`
	UnrealizedPnL float64 `json:"unrealized_pnl" yaml:"unrealized_pnl"`
}

// WatchlistStrategy labels valuation rows for watched tickers without a holding.
const WatchlistStrategy = "Watchlist"
