// Package characteristics derives lactation curve characteristics (time to
// peak, peak yield, cumulative 305-day yield, persistency) symbolically,
// caches the derived evaluators per (model, characteristic), and falls back
// to numeric estimation from the predicted curve when the symbolic result
// is unavailable or invalid.
package characteristics

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"golact/adapters/fitting"
	"golact/domain/core"
	"golact/domain/lactation"
	"golact/domain/model"
	"golact/internal/symbolic"
)

// Characteristic names one derivable curve characteristic.
type Characteristic string

const (
	TimeToPeak          Characteristic = "time_to_peak"
	PeakYield           Characteristic = "peak_yield"
	CumulativeMilkYield Characteristic = "cumulative_milk_yield"
	Persistency         Characteristic = "persistency"
)

// integrationBound is the fixed upper bound of the cumulative-yield
// integral. The cache is sound because every entry is a pure function of
// (model, characteristic) and this constant.
const integrationBound = lactation.DefaultHorizonDays

// quadNodes is the fixed-order Gauss-Legendre node count for the
// cumulative-yield evaluator.
const quadNodes = 240

// ParseCharacteristic resolves a characteristic name.
func ParseCharacteristic(name string) (Characteristic, error) {
	switch Characteristic(name) {
	case TimeToPeak, PeakYield, CumulativeMilkYield, Persistency:
		return Characteristic(name), nil
	}
	return "", core.NewValidationError(core.ErrUnknownCharacteristic, "characteristic", name)
}

// Engine computes characteristic values for fitted lactation curves.
type Engine struct {
	cache *Cache
	fits  *fitting.Engine
}

// NewEngine creates a characteristic engine around an injected cache and
// fitting engine.
func NewEngine(cache *Cache, fits *fitting.Engine) *Engine {
	return &Engine{cache: cache, fits: fits}
}

// Calculate fits the model in the bundle and evaluates one characteristic.
func (e *Engine) Calculate(ctx context.Context, in *lactation.PreparedInputs, characteristic string, opts fitting.FitOptions) (float64, error) {
	ch, err := ParseCharacteristic(characteristic)
	if err != nil {
		return 0, err
	}
	spec, params, err := e.fitSupported(ctx, in, opts)
	if err != nil {
		return 0, err
	}
	return e.evaluate(spec, params, in, ch)
}

// CalculateAll fits once and evaluates all four characteristics.
// Persistency uses the bundle's persistency method (derived by default).
func (e *Engine) CalculateAll(ctx context.Context, in *lactation.PreparedInputs, opts fitting.FitOptions) (map[Characteristic]float64, error) {
	spec, params, err := e.fitSupported(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	out := make(map[Characteristic]float64, 4)
	for _, ch := range []Characteristic{TimeToPeak, PeakYield, CumulativeMilkYield, Persistency} {
		v, err := e.evaluate(spec, params, in, ch)
		if err != nil {
			return nil, err
		}
		out[ch] = v
	}
	return out, nil
}

// fitSupported restricts the engine to the five fit-supporting models and
// returns the fitted parameter tuple.
func (e *Engine) fitSupported(ctx context.Context, in *lactation.PreparedInputs, opts fitting.FitOptions) (*model.Spec, []float64, error) {
	spec, err := model.Parse(in.Model)
	if err != nil {
		return nil, nil, err
	}
	if !spec.Fittable {
		return nil, nil, core.NewValidationError(core.ErrUnsupportedModel, "model", in.Model)
	}
	return e.fits.FitCurveParameters(ctx, in, opts)
}

func (e *Engine) evaluate(spec *model.Spec, params []float64, in *lactation.PreparedInputs, ch Characteristic) (float64, error) {
	if ch == Persistency {
		return e.persistency(spec, params, in)
	}

	d, err := e.Derivation(spec, ch)
	if err != nil {
		// Models without a closed-form peak are served by the numeric
		// estimate from the predicted curve.
		if !errors.Is(err, core.ErrNoPeakSolution) {
			return 0, err
		}
		d = Derivation{}
	}

	value := math.NaN()
	if d.Available {
		value = d.Eval(params)
	}
	if !isFinite(value) || (ch == TimeToPeak && value <= 0) {
		value = e.numericFallback(spec, params, in, ch)
	}
	if !isFinite(value) {
		return 0, core.ErrCharacteristicInvalid
	}
	return value, nil
}

// Derivation returns the cached symbolic derivation for the pair, deriving
// and caching it on first use.
func (e *Engine) Derivation(spec *model.Spec, ch Characteristic) (Derivation, error) {
	key := cacheKey{model: spec.Name, characteristic: ch}
	return e.cache.getOrDerive(key, func() (Derivation, error) {
		return derive(spec, ch)
	})
}

// derive performs the symbolic work for one (model, characteristic) pair:
// differentiate, take the positive root of the derivative where the model
// admits one, substitute, simplify, validate, and compile.
func derive(spec *model.Spec, ch Characteristic) (Derivation, error) {
	fn := spec.Expr()

	var peak symbolic.Expr
	if spec.PeakTime != nil {
		peak = spec.PeakTime()
	}

	switch ch {
	case TimeToPeak:
		if peak == nil {
			return Derivation{}, core.NewValidationError(core.ErrNoPeakSolution, "model", spec.Name)
		}
		return compileDerivation(symbolic.Simplify(peak), spec.Params)
	case PeakYield:
		if peak == nil {
			return Derivation{}, core.NewValidationError(core.ErrNoPeakSolution, "model", spec.Name)
		}
		expr := symbolic.Simplify(symbolic.Subst(fn, model.TimeSymbol, peak))
		return compileDerivation(expr, spec.Params)
	case CumulativeMilkYield:
		// The antiderivatives of these models are largely non-elementary,
		// so the compiled evaluator integrates the symbolic expression by
		// fixed-order quadrature over [0, integrationBound]. Always
		// derivable; no peak required.
		eval := func(p []float64) float64 {
			return quad.Fixed(func(t float64) float64 {
				return spec.Eval(t, p)
			}, 0, integrationBound, quadNodes, nil, 0)
		}
		return Derivation{Expr: fn, Params: spec.Params, Eval: eval, Available: true}, nil
	case Persistency:
		// Best effort: the algebraic average slope after the peak. Models
		// without a peak record persistency as unavailable, not an error.
		if peak == nil {
			return Derivation{Params: spec.Params}, nil
		}
		horizon := symbolic.Num(integrationBound)
		expr := symbolic.Simplify(symbolic.Div(
			symbolic.Sub(symbolic.Subst(fn, model.TimeSymbol, horizon), symbolic.Subst(fn, model.TimeSymbol, peak)),
			symbolic.Sub(horizon, peak)))
		d, err := compileDerivation(expr, spec.Params)
		if err != nil {
			return Derivation{Params: spec.Params}, nil
		}
		return d, nil
	}
	return Derivation{}, core.NewValidationError(core.ErrUnknownCharacteristic, "characteristic", string(ch))
}

// compileDerivation applies the validity gate and builds the evaluator. An
// invalid expression is recorded as unavailable so evaluation takes the
// numeric path.
func compileDerivation(expr symbolic.Expr, params []string) (Derivation, error) {
	if !symbolic.IsValid(expr) {
		return Derivation{Params: params}, nil
	}
	eval, err := symbolic.Compile(expr, params)
	if err != nil {
		return Derivation{Params: params}, nil
	}
	return Derivation{Expr: expr, Params: params, Eval: eval, Available: true}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
