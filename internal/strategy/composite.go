package strategy

import (
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-stocks/internal/types"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// Composite takes buy decisions from one strategy and sell decisions from
// another. Both legs see every observation and keep their own position
// flags; the composite has none of its own, so both decisions can be true
// on the same observation.
//
// The sell leg is only ever asked ShouldSell, so its flag stays flat unless
// something calls its ShouldBuy. Driven through Evaluate alone, a composite
// never sells.
type Composite struct {
	name    string
	params  CompositeParams
	factory *Factory
	buy     Strategy
	sell    Strategy
}

func newComposite(name string, params CompositeParams, factory *Factory) *Composite {
	return &Composite{name: name, params: params, factory: factory}
}

func (c *Composite) Name() string {
	return c.name
}

// Initialize resolves both legs through the factory into fresh instances
// and initializes them.
func (c *Composite) Initialize(ctx Context) error {
	buy, err := c.factory.createLeg(c.params.BuyStrategy)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "composite %s: buy strategy", c.name)
	}

	sell, err := c.factory.createLeg(c.params.SellStrategy)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "composite %s: sell strategy", c.name)
	}

	if err := buy.Initialize(ctx); err != nil {
		return err
	}

	if err := sell.Initialize(ctx); err != nil {
		return err
	}

	c.buy = buy
	c.sell = sell

	if ctx.Logger != nil {
		ctx.Logger.Debug("Initialized composite strategy",
			zap.String("name", c.name),
			zap.String("buy", c.params.BuyStrategy),
			zap.String("sell", c.params.SellStrategy),
		)
	}

	return nil
}

// Legs returns the buy and sell strategies, nil before Initialize.
func (c *Composite) Legs() (buy, sell Strategy) {
	return c.buy, c.sell
}

func (c *Composite) OnData(obs types.Observation) {
	if c.buy != nil {
		c.buy.OnData(obs)
	}

	if c.sell != nil {
		c.sell.OnData(obs)
	}
}

func (c *Composite) ShouldBuy(obs types.Observation) bool {
	return c.buy != nil && c.buy.ShouldBuy(obs)
}

func (c *Composite) ShouldSell(obs types.Observation) bool {
	return c.sell != nil && c.sell.ShouldSell(obs)
}
