package strategy

import "github.com/rxtech-lab/argo-stocks/pkg/errors"

// Factory builds fresh strategy instances from configurations. Every call
// returns a new instance with its own rolling state.
type Factory struct {
	catalog *Catalog
}

// NewFactory creates a factory resolving names through catalog. A nil
// catalog resolves the built-in configurations only.
func NewFactory(catalog *Catalog) *Factory {
	if catalog == nil {
		catalog = NewCatalog()
	}

	return &Factory{catalog: catalog}
}

// Catalog returns the catalog the factory resolves names with.
func (f *Factory) Catalog() *Catalog {
	return f.catalog
}

// Create builds a strategy from cfg.
func (f *Factory) Create(cfg Config) (Strategy, error) {
	if cfg.Params == nil {
		params, err := DefaultParams(cfg.Kind)
		if err != nil {
			return nil, err
		}

		cfg.Params = params
	}

	if cfg.Params.Kind() != cfg.Kind {
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "strategy %s: parameters are for %s, not %s", cfg.Name, cfg.Params.Kind(), cfg.Kind)
	}

	if err := ValidateParams(cfg.Params); err != nil {
		return nil, err
	}

	switch params := cfg.Params.(type) {
	case MovingAverageParams:
		return NewMovingAverageCrossover(cfg.Name, params), nil
	case RSIParams:
		return NewRSIStrategy(cfg.Name, params), nil
	case MACDParams:
		return NewMACDStrategy(cfg.Name, params), nil
	case BollingerParams:
		return NewBollingerBandsStrategy(cfg.Name, params), nil
	case MomentumParams:
		return NewMomentumStrategy(cfg.Name, params), nil
	case NoActionParams:
		return NewNoActionStrategy(cfg.Name), nil
	case CompositeParams:
		return newComposite(cfg.Name, params, f), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy kind: %s", cfg.Kind)
	}
}

// CreateByName resolves name through the catalog and builds it.
func (f *Factory) CreateByName(name string) (Strategy, error) {
	cfg, err := f.catalog.Resolve(name)
	if err != nil {
		return nil, err
	}

	return f.Create(cfg)
}

// NewComposite builds a composite named name delegating buy decisions to
// buyName and sell decisions to sellName. The legs are resolved when the
// composite is initialized.
func (f *Factory) NewComposite(name, buyName, sellName string) (Strategy, error) {
	return f.Create(Config{
		Name:   name,
		Kind:   KindComposite,
		Params: CompositeParams{BuyStrategy: buyName, SellStrategy: sellName},
	})
}

// CompositeName is the name given to a composite built from a buy/sell pair.
func CompositeName(buyName, sellName string) string {
	return CompositeMarkerPrefix + buyName + "/" + sellName
}

func (f *Factory) createLeg(name string) (Strategy, error) {
	cfg, err := f.catalog.Resolve(name)
	if err != nil {
		return nil, err
	}

	if cfg.Kind == KindComposite {
		return nil, errors.Newf(errors.ErrCodeStrategyConfigError, "strategy %s is a composite and cannot be a composite leg", name)
	}

	return f.Create(cfg)
}
