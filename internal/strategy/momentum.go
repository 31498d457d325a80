package strategy

import (
	"github.com/rxtech-lab/argo-stocks/internal/indicator"
	"github.com/rxtech-lab/argo-stocks/internal/types"
)

// MomentumStrategy buys when the lookback return exceeds the threshold and
// sells when it falls below the negative threshold.
type MomentumStrategy struct {
	position
	params  MomentumParams
	history *indicator.Window
}

// NewMomentumStrategy creates a momentum strategy.
func NewMomentumStrategy(name string, params MomentumParams) *MomentumStrategy {
	return &MomentumStrategy{
		position: position{name: name},
		params:   params,
		history:  indicator.NewWindow(params.LookbackPeriod + 1),
	}
}

func (s *MomentumStrategy) Initialize(_ Context) error {
	s.history.Reset()
	s.position.position = Flat

	return nil
}

func (s *MomentumStrategy) OnData(obs types.Observation) {
	if obs.Price == 0 {
		return
	}

	s.history.Push(obs.Price)
}

// Value returns the current momentum, 0 until the window is full.
func (s *MomentumStrategy) Value() float64 {
	momentum, err := indicator.Momentum(s.history.Values(), s.params.LookbackPeriod)
	if err != nil {
		return 0
	}

	return momentum
}

func (s *MomentumStrategy) ShouldBuy(_ types.Observation) bool {
	if !s.history.Full() {
		return false
	}

	return s.enter(s.Value() > s.params.Threshold)
}

func (s *MomentumStrategy) ShouldSell(_ types.Observation) bool {
	if !s.history.Full() {
		return false
	}

	return s.exit(s.Value() < -s.params.Threshold)
}
