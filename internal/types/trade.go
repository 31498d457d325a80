package types

import "time"

// TradeAction is the side of an executed trade.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// TradeStatus is the status recorded with a trade.
type TradeStatus string

const (
	// TradeStatusFilled is recorded for paper trades.
	TradeStatusFilled TradeStatus = "FILLED"
	// TradeStatusSubmitted is recorded for trades forwarded to a broker.
	TradeStatusSubmitted TradeStatus = "SUBMITTED"
)

// TradingMode selects whether trades are simulated or forwarded to a broker.
type TradingMode string

const (
	ModePaper TradingMode = "PAPER"
	ModeLive  TradingMode = "LIVE"
)

// OrderType is the order type passed to a broker.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
)

// Trade is an append-only record of one executed buy or sell.
type Trade struct {
	ID int64 `json:"id" yaml:"id"`
	// SessionID is zero for trades recorded outside a session.
	SessionID int64       `json:"session_id" yaml:"session_id"`
	OrderID   string      `json:"order_id" yaml:"order_id"`
	Symbol    string      `json:"ticker" yaml:"ticker"`
	Action    TradeAction `json:"action" yaml:"action"`
	Quantity  float64     `json:"quantity" yaml:"quantity"`
	Price     float64     `json:"price" yaml:"price"`
	// TotalCost is quantity*price.
	TotalCost float64     `json:"total_cost" yaml:"total_cost"`
	Fees      float64     `json:"fees" yaml:"fees"`
	Strategy  string      `json:"strategy" yaml:"strategy"`
	Status    TradeStatus `json:"status" yaml:"status"`
	Mode      TradingMode `json:"mode" yaml:"mode"`
	Timestamp time.Time   `json:"timestamp" yaml:"timestamp"`
}

// TradeFilter narrows a trade log query.
type TradeFilter struct {
	// Symbol filters trades by ticker (empty means no filter)
	Symbol string
	// Status filters trades by status (empty means no filter)
	Status TradeStatus
	// Limit limits the number of trades returned, newest first (0 means no limit)
	Limit int
}

// TradeSummary is the performance summary of a trade log.
type TradeSummary struct {
	TotalTrades  int     `json:"total_trades" yaml:"total_trades"`
	BuyOrders    int     `json:"total_buy_orders" yaml:"total_buy_orders"`
	SellOrders   int     `json:"total_sell_orders" yaml:"total_sell_orders"`
	AvgBuyPrice  float64 `json:"avg_buy_price" yaml:"avg_buy_price"`
	AvgSellPrice float64 `json:"avg_sell_price" yaml:"avg_sell_price"`
	// LastTradeTime is zero when no trade was summarized.
	LastTradeTime time.Time `json:"last_trade_time" yaml:"last_trade_time"`
}

// Empty reports whether the summary covers no trade.
func (s TradeSummary) Empty() bool {
	return s.TotalTrades == 0
}
