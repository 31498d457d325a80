package strategy

import (
	"github.com/rxtech-lab/argo-stocks/internal/indicator"
	"github.com/rxtech-lab/argo-stocks/internal/types"
)

// RSIStrategy buys when the RSI drops below the oversold threshold and sells
// when it rises above the overbought threshold.
type RSIStrategy struct {
	position
	params  RSIParams
	history *indicator.Window
}

// NewRSIStrategy creates an RSI strategy.
func NewRSIStrategy(name string, params RSIParams) *RSIStrategy {
	return &RSIStrategy{
		position: position{name: name},
		params:   params,
		history:  indicator.NewWindow(params.Period + 1),
	}
}

func (s *RSIStrategy) Initialize(_ Context) error {
	s.history.Reset()
	s.position.position = Flat

	return nil
}

func (s *RSIStrategy) OnData(obs types.Observation) {
	if obs.Price == 0 {
		return
	}

	s.history.Push(obs.Price)
}

// Value returns the current RSI, neutral while the window is short.
func (s *RSIStrategy) Value() float64 {
	return indicator.RSI(s.history.Values(), s.params.Period)
}

func (s *RSIStrategy) ShouldBuy(_ types.Observation) bool {
	if !s.history.Full() {
		return false
	}

	return s.enter(s.Value() < s.params.Oversold)
}

func (s *RSIStrategy) ShouldSell(_ types.Observation) bool {
	if !s.history.Full() {
		return false
	}

	return s.exit(s.Value() > s.params.Overbought)
}
