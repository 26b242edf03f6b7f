package characteristics

import (
	"gonum.org/v1/gonum/integrate"

	"golact/adapters/fitting"
	"golact/domain/lactation"
	"golact/domain/model"
)

// numericFallback estimates a characteristic directly from the full
// predicted curve when the symbolic evaluator is unavailable or produced an
// invalid value.
func (e *Engine) numericFallback(spec *model.Spec, params []float64, in *lactation.PreparedInputs, ch Characteristic) float64 {
	series := fitting.PredictSeries(spec, params, in.MaxDay())
	switch ch {
	case TimeToPeak:
		return float64(NumericTimeToPeak(series))
	case PeakYield:
		return NumericPeakYield(series)
	case CumulativeMilkYield:
		return NumericCumulativeYield(series, in.LactationLength.Resolve(in.Days))
	}
	return 0
}

// NumericTimeToPeak is the 1-indexed day of the maximum predicted yield.
func NumericTimeToPeak(series []float64) int {
	peakIdx := 0
	for i, v := range series {
		if v > series[peakIdx] {
			peakIdx = i
		}
	}
	return peakIdx + 1
}

// NumericPeakYield is the maximum predicted yield.
func NumericPeakYield(series []float64) float64 {
	peak := series[0]
	for _, v := range series[1:] {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// NumericCumulativeYield is the trapezoidal sum of the first horizon
// predicted values with unit day spacing.
func NumericCumulativeYield(series []float64, horizon int) float64 {
	if horizon > len(series) {
		horizon = len(series)
	}
	xs := make([]float64, horizon)
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	return integrate.Trapezoidal(xs, series[:horizon])
}
