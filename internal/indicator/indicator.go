// Package indicator implements the technical indicator math used by the
// strategies. Every function works on a price slice ordered oldest first.
package indicator

import "github.com/rxtech-lab/argo-stocks/pkg/errors"

// Window is a bounded rolling window of prices. Pushing onto a full window
// evicts the oldest price.
type Window struct {
	values   []float64
	capacity int
}

// NewWindow creates a window holding at most capacity prices.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}

	return &Window{
		values:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Push appends a price, evicting the oldest one when the window is full.
func (w *Window) Push(value float64) {
	if len(w.values) == w.capacity {
		copy(w.values, w.values[1:])
		w.values = w.values[:len(w.values)-1]
	}

	w.values = append(w.values, value)
}

// Values returns the window contents, oldest first. The slice is owned by
// the window and is only valid until the next Push.
func (w *Window) Values() []float64 {
	return w.values
}

func (w *Window) Len() int {
	return len(w.values)
}

func (w *Window) Cap() int {
	return w.capacity
}

// Full reports whether the window holds capacity prices.
func (w *Window) Full() bool {
	return len(w.values) == w.capacity
}

// Reset empties the window.
func (w *Window) Reset() {
	w.values = w.values[:0]
}

// Last returns the newest price, or 0 when the window is empty.
func (w *Window) Last() float64 {
	if len(w.values) == 0 {
		return 0
	}

	return w.values[len(w.values)-1]
}

func requirePeriod(name string, period int) error {
	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "%s period must be a positive integer, got %d", name, period)
	}

	return nil
}

func requireData(name string, prices []float64, required int) error {
	if len(prices) < required {
		return errors.NewInsufficientDataErrorf(required, len(prices), "", "insufficient data points for %s: required %d, got %d", name, required, len(prices))
	}

	return nil
}
