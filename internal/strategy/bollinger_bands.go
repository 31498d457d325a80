package strategy

import (
	"github.com/rxtech-lab/argo-stocks/internal/indicator"
	"github.com/rxtech-lab/argo-stocks/internal/types"
)

// BollingerBandsStrategy buys at or below the lower band and sells at or
// above the upper band.
type BollingerBandsStrategy struct {
	position
	params  BollingerParams
	history *indicator.Window
}

// NewBollingerBandsStrategy creates a Bollinger band strategy.
func NewBollingerBandsStrategy(name string, params BollingerParams) *BollingerBandsStrategy {
	return &BollingerBandsStrategy{
		position: position{name: name},
		params:   params,
		history:  indicator.NewWindow(params.Period),
	}
}

func (s *BollingerBandsStrategy) Initialize(_ Context) error {
	s.history.Reset()
	s.position.position = Flat

	return nil
}

func (s *BollingerBandsStrategy) OnData(obs types.Observation) {
	if obs.Price == 0 {
		return
	}

	s.history.Push(obs.Price)
}

// Bands returns the current bands, ok is false until the window is full.
func (s *BollingerBandsStrategy) Bands() (indicator.Bands, bool) {
	bands, err := indicator.BollingerBands(s.history.Values(), s.params.Period, s.params.NumStd)

	return bands, err == nil
}

func (s *BollingerBandsStrategy) ShouldBuy(obs types.Observation) bool {
	bands, ok := s.Bands()
	if !ok || obs.Price == 0 {
		return false
	}

	return s.enter(obs.Price <= bands.Lower)
}

func (s *BollingerBandsStrategy) ShouldSell(obs types.Observation) bool {
	bands, ok := s.Bands()
	if !ok || obs.Price == 0 {
		return false
	}

	return s.exit(obs.Price >= bands.Upper)
}
