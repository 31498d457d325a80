package strategy

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-stocks/pkg/errors"
)

// Kind is the closed set of strategy implementations.
type Kind string

const (
	KindMovingAverageCrossover Kind = "MovingAverageCrossover"
	KindRSI                    Kind = "RSIStrategy"
	KindMACD                   Kind = "MACDStrategy"
	KindBollingerBands         Kind = "BollingerBandsStrategy"
	KindMomentum               Kind = "MomentumStrategy"
	KindNoAction               Kind = "NoActionStrategy"
	KindComposite              Kind = "CompositeStrategy"
)

// Kinds lists every strategy kind.
func Kinds() []Kind {
	return []Kind{
		KindMovingAverageCrossover,
		KindRSI,
		KindMACD,
		KindBollingerBands,
		KindMomentum,
		KindNoAction,
		KindComposite,
	}
}

// Params is the typed parameter set of one strategy kind.
type Params interface {
	Kind() Kind
	// Summary renders the parameters for logs.
	Summary() string
}

var validate = validator.New()

// DefaultParams returns the default parameter set of kind.
func DefaultParams(kind Kind) (Params, error) {
	switch kind {
	case KindMovingAverageCrossover:
		return MovingAverageParams{ShortWindow: 10, LongWindow: 30}, nil
	case KindRSI:
		return RSIParams{Period: 14, Oversold: 30, Overbought: 70}, nil
	case KindMACD:
		return MACDParams{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}, nil
	case KindBollingerBands:
		return BollingerParams{Period: 20, NumStd: 2}, nil
	case KindMomentum:
		return MomentumParams{LookbackPeriod: 10, Threshold: 0.02}, nil
	case KindNoAction:
		return NoActionParams{}, nil
	case KindComposite:
		return CompositeParams{}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "unsupported strategy kind: %s", kind)
	}
}

// DecodeParams decodes raw JSON parameters of kind on top of the kind's
// defaults, so absent keys keep their default values. Empty input yields
// the defaults.
func DecodeParams(kind Kind, raw []byte) (Params, error) {
	defaults, err := DefaultParams(kind)
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 || string(raw) == "null" {
		return defaults, ValidateParams(defaults)
	}

	var params Params

	switch p := defaults.(type) {
	case MovingAverageParams:
		err = json.Unmarshal(raw, &p)
		params = p
	case RSIParams:
		err = json.Unmarshal(raw, &p)
		params = p
	case MACDParams:
		err = json.Unmarshal(raw, &p)
		params = p
	case BollingerParams:
		err = json.Unmarshal(raw, &p)
		params = p
	case MomentumParams:
		err = json.Unmarshal(raw, &p)
		params = p
	case NoActionParams:
		params = p
	case CompositeParams:
		err = json.Unmarshal(raw, &p)
		params = p
	}

	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to decode %s parameters", kind)
	}

	return params, ValidateParams(params)
}

// EncodeParams renders params as the JSON stored with a strategy config.
func EncodeParams(params Params) ([]byte, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to encode strategy parameters", err)
	}

	return data, nil
}

// ValidateParams checks the validate tags of params.
func ValidateParams(params Params) error {
	if params == nil {
		return errors.New(errors.ErrCodeMissingParameter, "strategy parameters are required")
	}

	if err := validate.Struct(params); err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "invalid %s parameters", params.Kind())
	}

	return nil
}
