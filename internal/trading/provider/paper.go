package tradingprovider

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
)

// PaperBroker accepts every valid order and confirms it with a random order id.
type PaperBroker struct {
	mu       sync.Mutex
	declined map[string]bool
	orders   []OrderConfirmation
	now      func() time.Time
}

func NewPaperBroker() *PaperBroker {
	return &PaperBroker{
		declined: make(map[string]bool),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Decline makes the broker decline every later order for symbol.
func (p *PaperBroker) Decline(symbol string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.declined[symbol] = true
}

// Orders returns the confirmations issued so far.
func (p *PaperBroker) Orders() []OrderConfirmation {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]OrderConfirmation(nil), p.orders...)
}

func (p *PaperBroker) PlaceOrder(_ context.Context, order OrderRequest) (optional.Option[OrderConfirmation], error) {
	if err := validateOrder(order); err != nil {
		return optional.None[OrderConfirmation](), err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.declined[order.Symbol] {
		return optional.None[OrderConfirmation](), nil
	}

	confirmation := OrderConfirmation{
		OrderID:     uuid.NewString(),
		Symbol:      order.Symbol,
		Side:        order.Side,
		Quantity:    order.Quantity,
		Status:      "accepted",
		SubmittedAt: p.now(),
	}
	p.orders = append(p.orders, confirmation)

	return optional.Some(confirmation), nil
}
