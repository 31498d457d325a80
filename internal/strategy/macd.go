package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-stocks/internal/indicator"
	"github.com/rxtech-lab/argo-stocks/internal/types"
)

type macdPair struct {
	macd   float64
	signal float64
}

// MACDStrategy trades MACD crossings of its signal line.
type MACDStrategy struct {
	position
	params      MACDParams
	history     *indicator.Window
	macdHistory *indicator.Window
	// previous is the pair computed before the latest observation.
	previous optional.Option[macdPair]
	latest   optional.Option[macdPair]
}

// NewMACDStrategy creates a MACD strategy.
func NewMACDStrategy(name string, params MACDParams) *MACDStrategy {
	return &MACDStrategy{
		position:    position{name: name},
		params:      params,
		history:     indicator.NewWindow(params.SlowPeriod + params.SignalPeriod),
		macdHistory: indicator.NewWindow(params.SignalPeriod),
	}
}

func (s *MACDStrategy) Initialize(_ Context) error {
	s.history.Reset()
	s.macdHistory.Reset()
	s.previous = optional.None[macdPair]()
	s.latest = optional.None[macdPair]()
	s.position.position = Flat

	return nil
}

func (s *MACDStrategy) OnData(obs types.Observation) {
	if obs.Price == 0 {
		return
	}

	s.history.Push(obs.Price)

	s.previous = s.latest
	s.latest = s.calculate()
}

func (s *MACDStrategy) calculate() optional.Option[macdPair] {
	macd, err := indicator.MACD(s.history.Values(), s.params.FastPeriod, s.params.SlowPeriod)
	if err != nil {
		return optional.None[macdPair]()
	}

	s.macdHistory.Push(macd)
	if !s.macdHistory.Full() {
		return optional.None[macdPair]()
	}

	signal, err := indicator.EMA(s.macdHistory.Values(), s.params.SignalPeriod)
	if err != nil {
		return optional.None[macdPair]()
	}

	return optional.Some(macdPair{macd: macd, signal: signal})
}

// Latest returns the current MACD and signal values.
func (s *MACDStrategy) Latest() (macd, signal float64, ok bool) {
	pair, err := s.latest.Take()
	if err != nil {
		return 0, 0, false
	}

	return pair.macd, pair.signal, true
}

func (s *MACDStrategy) pairs() (previous, latest macdPair, ok bool) {
	previous, errPrev := s.previous.Take()
	latest, errLatest := s.latest.Take()

	return previous, latest, errPrev == nil && errLatest == nil
}

func (s *MACDStrategy) ShouldBuy(_ types.Observation) bool {
	previous, latest, ok := s.pairs()

	return ok && s.enter(previous.macd <= previous.signal && latest.macd > latest.signal)
}

func (s *MACDStrategy) ShouldSell(_ types.Observation) bool {
	previous, latest, ok := s.pairs()

	return ok && s.exit(previous.macd >= previous.signal && latest.macd < latest.signal)
}
