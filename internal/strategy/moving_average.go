package strategy

import (
	"github.com/rxtech-lab/argo-stocks/internal/indicator"
	"github.com/rxtech-lab/argo-stocks/internal/types"
)

// MovingAverageCrossover buys when the short SMA rises above the long SMA
// and sells when it falls below.
type MovingAverageCrossover struct {
	position
	params  MovingAverageParams
	history *indicator.Window
}

// NewMovingAverageCrossover creates a crossover strategy.
func NewMovingAverageCrossover(name string, params MovingAverageParams) *MovingAverageCrossover {
	return &MovingAverageCrossover{
		position: position{name: name},
		params:   params,
		history:  indicator.NewWindow(params.LongWindow + 1),
	}
}

func (s *MovingAverageCrossover) Initialize(_ Context) error {
	s.history.Reset()
	s.position.position = Flat

	return nil
}

func (s *MovingAverageCrossover) OnData(obs types.Observation) {
	if obs.Price == 0 {
		return
	}

	s.history.Push(obs.Price)
}

// averages returns the short and long SMA, ok is false before long_window prices.
func (s *MovingAverageCrossover) averages() (short, long float64, ok bool) {
	prices := s.history.Values()
	if len(prices) < s.params.LongWindow {
		return 0, 0, false
	}

	short, err := indicator.SMA(prices, s.params.ShortWindow)
	if err != nil {
		return 0, 0, false
	}

	long, err = indicator.SMA(prices, s.params.LongWindow)
	if err != nil {
		return 0, 0, false
	}

	return short, long, true
}

func (s *MovingAverageCrossover) ShouldBuy(_ types.Observation) bool {
	short, long, ok := s.averages()

	return ok && s.enter(short > long)
}

func (s *MovingAverageCrossover) ShouldSell(_ types.Observation) bool {
	short, long, ok := s.averages()

	return ok && s.exit(short < long)
}
