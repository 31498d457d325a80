package strategy

import "github.com/rxtech-lab/argo-stocks/internal/types"

// NoActionStrategy never signals. Sessions use it to watch tickers.
type NoActionStrategy struct {
	name string
}

func NewNoActionStrategy(name string) *NoActionStrategy {
	return &NoActionStrategy{name: name}
}

func (s *NoActionStrategy) Name() string { return s.name }
func (s *NoActionStrategy) Initialize(_ Context) error { return nil }
func (s *NoActionStrategy) OnData(_ types.Observation) {}
func (s *NoActionStrategy) ShouldBuy(_ types.Observation) bool { return false }
func (s *NoActionStrategy) ShouldSell(_ types.Observation) bool { return false }
