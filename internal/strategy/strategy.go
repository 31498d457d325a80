// Package strategy implements the stateful signal generators evaluated by
// the backtest and live trading engines.
//
// A strategy keeps a bounded rolling window of prices and a position flag.
// OnData only updates the window; the position flag flips inside the
// ShouldBuy or ShouldSell call that returns true, so a strategy never
// signals a buy while long nor a sell while flat.
package strategy

import (
	"fmt"

	"github.com/rxtech-lab/argo-stocks/internal/logger"
	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// Strategy classifies each price observation into buy, sell or hold.
type Strategy interface {
	// Name returns the configured name of the strategy.
	Name() string
	// Initialize resets the rolling state and the position flag.
	Initialize(ctx Context) error
	// OnData records a new observation. Observations with a zero price are ignored.
	OnData(obs types.Observation)
	// ShouldBuy reports a buy signal and marks the strategy long when it does.
	ShouldBuy(obs types.Observation) bool
	// ShouldSell reports a sell signal and marks the strategy flat when it does.
	ShouldSell(obs types.Observation) bool
}

// Context is passed to Initialize.
type Context struct {
	// Symbol is the ticker the instance is bound to, empty when it serves several.
	Symbol string
	Logger *logger.Logger
}

// Position is a strategy's view of whether it holds the asset.
type Position int

const (
	Flat Position = iota
	Long
)

func (p Position) String() string {
	if p == Long {
		return "long"
	}

	return "flat"
}

// Positioned is implemented by strategies that track a position flag.
type Positioned interface {
	Position() Position
}

// position carries the name and the position flag shared by the indicator strategies.
type position struct {
	name     string
	position Position
}

func (p *position) Name() string {
	return p.name
}

func (p *position) Position() Position {
	return p.position
}

// enter flips flat to long and reports whether it did.
func (p *position) enter(signal bool) bool {
	if !signal || p.position != Flat {
		return false
	}

	p.position = Long

	return true
}

// exit flips long to flat and reports whether it did.
func (p *position) exit(signal bool) bool {
	if !signal || p.position != Long {
		return false
	}

	p.position = Flat

	return true
}

// Decision is the outcome of evaluating one strategy on one observation.
type Decision struct {
	Buy  bool
	Sell bool
}

// Evaluate feeds obs to s and queries it. ShouldSell is only consulted when
// ShouldBuy returned false, so a buy wins when both would fire. A panic
// inside the strategy is recovered and returned as ErrCodeStrategyRuntimeError.
func Evaluate(s Strategy, obs types.Observation) (decision Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			decision = Decision{}
			err = errors.Newf(errors.ErrCodeStrategyRuntimeError, "strategy %s panicked on %s: %v", s.Name(), obs.Symbol, r)
		}
	}()

	s.OnData(obs)

	if s.ShouldBuy(obs) {
		return Decision{Buy: true}, nil
	}

	return Decision{Sell: s.ShouldSell(obs)}, nil
}

// Describe returns a short human readable description of a config.
func Describe(cfg Config) string {
	return fmt.Sprintf("%s (%s)", cfg.Name, cfg.Params.Summary())
}
