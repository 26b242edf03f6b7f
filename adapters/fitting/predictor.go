package fitting

import (
	"context"

	"golact/domain/core"
	"golact/domain/lactation"
	"golact/domain/model"
	"golact/ports"
)

// MilkBotMethod selects the frequentist MilkBot fitting path.
type MilkBotMethod string

const (
	// MilkBotMinimize is the primary path: bounded SSE minimisation.
	MilkBotMinimize MilkBotMethod = "minimize"
	// MilkBotLeastSquares is the alternative bounded least-squares path
	// with data-scaled bounds.
	MilkBotLeastSquares MilkBotMethod = "least_squares"
)

// FitOptions carries per-request settings that are not part of the
// canonical input bundle.
type FitOptions struct {
	APIKey        string
	MilkBotMethod MilkBotMethod
}

// Engine orchestrates frequentist and Bayesian fitting into a full
// prediction series.
type Engine struct {
	fitter *Fitter
	bayes  ports.BayesianFitter
}

// NewEngine creates a fitting engine. The Bayesian fitter may be nil when
// only frequentist fitting is needed.
func NewEngine(bayes ports.BayesianFitter) *Engine {
	return &Engine{fitter: NewFitter(), bayes: bayes}
}

// Fitter exposes the frequentist fitter for direct parameter access.
func (e *Engine) Fitter() *Fitter {
	return e.fitter
}

// PredictSeries evaluates the model over days 1..max(305, maxObservedDay).
func PredictSeries(spec *model.Spec, params []float64, maxObservedDay int) []float64 {
	end := lactation.DefaultHorizonDays
	if maxObservedDay > end {
		end = maxObservedDay
	}
	return spec.EvalSeries(params, end)
}

// FitCurve fits the model in the bundle's fitting mode and returns predicted
// yields for days 1 through max(305, max observed day).
func (e *Engine) FitCurve(ctx context.Context, in *lactation.PreparedInputs, opts FitOptions) ([]float64, error) {
	_, params, err := e.FitCurveParameters(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	spec, err := model.Parse(in.Model)
	if err != nil {
		return nil, err
	}
	return PredictSeries(spec, params, in.MaxDay()), nil
}

// FitCurveParameters resolves the fitting mode and returns the model spec
// together with the fitted parameter tuple.
func (e *Engine) FitCurveParameters(ctx context.Context, in *lactation.PreparedInputs, opts FitOptions) (*model.Spec, []float64, error) {
	spec, err := model.Parse(in.Model)
	if err != nil {
		return nil, nil, err
	}

	if in.Fitting == lactation.FittingBayesian {
		if spec.Name != model.MilkBot {
			return nil, nil, core.ErrUnsupportedBayesianModel
		}
		params, err := e.fitBayesian(ctx, in, opts.APIKey)
		if err != nil {
			return nil, nil, err
		}
		return spec, params, nil
	}

	if spec.Name == model.MilkBot && opts.MilkBotMethod == MilkBotLeastSquares {
		params, err := e.fitter.FitMilkBotLeastSquares(in)
		return spec, params, err
	}
	params, err := e.fitter.FitParameters(in, in.Model)
	return spec, params, err
}

func (e *Engine) fitBayesian(ctx context.Context, in *lactation.PreparedInputs, apiKey string) ([]float64, error) {
	if apiKey == "" {
		return nil, core.ErrMissingAPIKey
	}

	req := ports.MilkBotFitRequest{
		Days:     in.Days,
		Yields:   in.Yields,
		Breed:    in.Breed,
		Parity:   in.Parity,
		Region:   in.Region,
		MilkUnit: in.MilkUnit,
		APIKey:   apiKey,
	}
	if req.Breed == "" {
		req.Breed = lactation.BreedHolstein
	}
	if req.Parity == 0 {
		req.Parity = 3
	}
	if req.Region == "" {
		req.Region = lactation.RegionUSA
	}
	if req.MilkUnit == "" {
		req.MilkUnit = lactation.UnitKg
	}
	switch {
	case in.CustomPriors != nil:
		req.Priors = in.CustomPriors
	case in.PriorToken == lactation.ChenPriorToken:
		priors := lactation.ChenPriors(req.Parity)
		req.Priors = &priors
	}

	fitted, err := e.bayes.FitLactation(ctx, req)
	if err != nil {
		return nil, err
	}
	return fitted.Tuple(), nil
}
