package characteristics

import (
	"math"

	"golact/adapters/fitting"
	"golact/domain/core"
	"golact/domain/lactation"
	"golact/domain/model"
)

// persistency dispatches on the selected persistency method. "derived" is
// the default and always succeeds via the numeric definition; "literature"
// is defined only for Wood and MilkBot.
func (e *Engine) persistency(spec *model.Spec, params []float64, in *lactation.PreparedInputs) (float64, error) {
	method := in.PersistencyMethod
	if method == "" {
		method = lactation.PersistencyDerived
	}

	if method == lactation.PersistencyDerived {
		series := fitting.PredictSeries(spec, params, in.MaxDay())
		return PersistencyFromCurve(series, in.LactationLength.Resolve(in.Days)), nil
	}

	switch spec.Name {
	case model.Wood:
		return PersistencyWood(params[1], params[2]), nil
	case model.MilkBot:
		return PersistencyMilkBot(params[3])
	}
	return 0, core.NewValidationError(core.ErrUnsupportedPersistencyModel, "model", spec.Name)
}

// PersistencyFromCurve is the average slope of the predicted curve from the
// peak to the end of the lactation horizon.
func PersistencyFromCurve(series []float64, horizon int) float64 {
	if horizon > len(series) {
		horizon = len(series)
	}
	tPeak := NumericTimeToPeak(series)
	peakYield := series[tPeak-1]
	endYield := series[horizon-1]
	return (endYield - peakYield) / (float64(horizon) - float64(tPeak))
}

// PersistencyWood is the Wood et al. formula: -(b + 1) * ln(c).
func PersistencyWood(b, c float64) float64 {
	return -(b + 1) * math.Log(c)
}

// PersistencyMilkBot is the Ehrlich formula: 0.693 / d.
func PersistencyMilkBot(d float64) (float64, error) {
	if d == 0 {
		return 0, core.ErrZeroDecay
	}
	return 0.693 / d, nil
}
