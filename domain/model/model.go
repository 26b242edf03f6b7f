// Package model defines the fixed set of lactation curve models. Each model
// is a tagged variant carrying its closed-form function of time, its ordered
// parameter tuple (alphabetical, excluding the time variable), and - for the
// fittable models - initial guesses and box constraints.
package model

import (
	"math"
	"strings"

	"golact/domain/core"
	"golact/internal/symbolic"
)

// Name identifies a lactation curve model.
type Name string

const (
	Wood         Name = "wood"
	Wilmink      Name = "wilmink"
	AliSchaeffer Name = "ali_schaeffer"
	Fischer      Name = "fischer"
	MilkBot      Name = "milkbot"
	Brody        Name = "brody"
	Sikka        Name = "sikka"
	Nelder       Name = "nelder"
	Dhanoa       Name = "dhanoa"
	Emmans       Name = "emmans"
	Hayashi      Name = "hayashi"
	Rook         Name = "rook"
	Dijkstra     Name = "dijkstra"
	Prasad       Name = "prasad"
)

// WilminkK is the fixed exponential rate used when fitting the Wilmink model.
const WilminkK = -0.05

// TimeSymbol is the symbol for days in milk in every model expression.
const TimeSymbol = "t"

// Bound is a box constraint on one parameter.
type Bound struct {
	Lo, Hi float64
}

// Spec describes one model: evaluation, symbolic form, and fitting data.
type Spec struct {
	Name   Name
	Params []string

	// Eval computes the predicted yield at time t for the given parameter
	// tuple (same order as Params).
	Eval func(t float64, p []float64) float64

	// Expr builds the symbolic expression of the model in TimeSymbol and
	// the parameter symbols.
	Expr func() symbolic.Expr

	// PeakTime builds the closed-form peak-time expression (the positive
	// root of the time derivative) over the parameter symbols, or nil when
	// no such closed form exists for the model.
	PeakTime func() symbolic.Expr

	// Fittable marks the five models supported by the frequentist fitter.
	Fittable bool

	// Guess returns the initial parameter guess; maxYield is the largest
	// observed milk recording (some guesses are data-scaled).
	Guess func(maxYield float64) []float64

	// Bounds are box constraints per parameter; nil for unbounded fits.
	Bounds []Bound
}

var registry = map[Name]*Spec{
	Wood: {
		Name:   Wood,
		Params: []string{"a", "b", "c"},
		Eval: func(t float64, p []float64) float64 {
			return p[0] * math.Pow(t, p[1]) * math.Exp(-p[2]*t)
		},
		Expr: func() symbolic.Expr {
			a, b, c, t := sym4("a", "b", "c", TimeSymbol)
			return symbolic.Mul(symbolic.Mul(a, symbolic.Pow(t, b)), symbolic.Exp(symbolic.Neg(symbolic.Mul(c, t))))
		},
		PeakTime: func() symbolic.Expr {
			return symbolic.Div(symbolic.Sym("b"), symbolic.Sym("c"))
		},
		Fittable: true,
		Guess:    func(float64) []float64 { return []float64{30, 0.2, 0.01} },
		Bounds:   []Bound{{1, 100}, {0.01, 1.5}, {0.0001, 0.1}},
	},
	Wilmink: {
		Name:   Wilmink,
		Params: []string{"a", "b", "c", "k"},
		Eval: func(t float64, p []float64) float64 {
			return p[0] + p[1]*t + p[2]*math.Exp(p[3]*t)
		},
		Expr: func() symbolic.Expr {
			a, b, c, t := sym4("a", "b", "c", TimeSymbol)
			k := symbolic.Sym("k")
			return symbolic.Add(symbolic.Add(a, symbolic.Mul(b, t)), symbolic.Mul(c, symbolic.Exp(symbolic.Mul(k, t))))
		},
		PeakTime: func() symbolic.Expr {
			// b + c*k*exp(k*t) = 0  =>  t = log(-b/(c*k)) / k
			b, c, k := symbolic.Sym("b"), symbolic.Sym("c"), symbolic.Sym("k")
			return symbolic.Div(symbolic.Log(symbolic.Div(symbolic.Neg(b), symbolic.Mul(c, k))), k)
		},
		Fittable: true,
		Guess:    func(float64) []float64 { return []float64{10, 0.1, 30} },
	},
	AliSchaeffer: {
		Name:   AliSchaeffer,
		Params: []string{"a", "b", "c", "d", "k"},
		Eval: func(t float64, p []float64) float64 {
			ts := t / 305
			lt := math.Log(305 / t)
			return p[0] + p[1]*ts + p[2]*ts*ts + p[3]*lt + p[4]*lt*lt
		},
		Expr: func() symbolic.Expr {
			a, b, c, t := sym4("a", "b", "c", TimeSymbol)
			d, k := symbolic.Sym("d"), symbolic.Sym("k")
			ts := symbolic.Div(t, symbolic.Num(305))
			lt := symbolic.Log(symbolic.Div(symbolic.Num(305), t))
			return symbolic.Add(
				symbolic.Add(symbolic.Add(a, symbolic.Mul(b, ts)), symbolic.Mul(c, symbolic.Mul(ts, ts))),
				symbolic.Add(symbolic.Mul(d, lt), symbolic.Mul(k, symbolic.Mul(lt, lt))))
		},
		// The derivative mixes polynomial and logarithmic terms; no closed
		// form for the root.
		PeakTime: nil,
		Fittable: true,
		Guess:    func(float64) []float64 { return []float64{10, 10, -5, 1, 1} },
	},
	Fischer: {
		Name:   Fischer,
		Params: []string{"a", "b", "c"},
		Eval: func(t float64, p []float64) float64 {
			return p[0] - p[1]*t - p[0]*math.Exp(-p[2]*t)
		},
		Expr: func() symbolic.Expr {
			a, b, c, t := sym4("a", "b", "c", TimeSymbol)
			return symbolic.Sub(symbolic.Sub(a, symbolic.Mul(b, t)), symbolic.Mul(a, symbolic.Exp(symbolic.Neg(symbolic.Mul(c, t)))))
		},
		PeakTime: func() symbolic.Expr {
			// a*c*exp(-c*t) = b  =>  t = log(a*c/b) / c
			a, b, c := symbolic.Sym("a"), symbolic.Sym("b"), symbolic.Sym("c")
			return symbolic.Div(symbolic.Log(symbolic.Div(symbolic.Mul(a, c), b)), c)
		},
		Fittable: true,
		Guess:    func(maxYield float64) []float64 { return []float64{maxYield, 0.01, 0.01} },
		Bounds:   []Bound{{0, 100}, {0, 1}, {0.0001, 1}},
	},
	MilkBot: {
		Name:   MilkBot,
		Params: []string{"a", "b", "c", "d"},
		Eval: func(t float64, p []float64) float64 {
			return p[0] * (1 - math.Exp((p[2]-t)/p[1])/2) * math.Exp(-p[3]*t)
		},
		Expr: func() symbolic.Expr {
			a, b, c, t := sym4("a", "b", "c", TimeSymbol)
			d := symbolic.Sym("d")
			ramp := symbolic.Sub(symbolic.Num(1), symbolic.Div(symbolic.Exp(symbolic.Div(symbolic.Sub(c, t), b)), symbolic.Num(2)))
			return symbolic.Mul(symbolic.Mul(a, ramp), symbolic.Exp(symbolic.Neg(symbolic.Mul(d, t))))
		},
		PeakTime: func() symbolic.Expr {
			// exp((c-t)/b) = 2bd/(1+bd)  =>  t = c - b*log(2bd/(1+bd))
			b, c, d := symbolic.Sym("b"), symbolic.Sym("c"), symbolic.Sym("d")
			bd := symbolic.Mul(b, d)
			ratio := symbolic.Div(symbolic.Mul(symbolic.Num(2), bd), symbolic.Add(symbolic.Num(1), bd))
			return symbolic.Sub(c, symbolic.Mul(b, symbolic.Log(ratio)))
		},
		Fittable: true,
		Guess:    func(maxYield float64) []float64 { return []float64{maxYield, 20.0, -0.7, 0.022} },
		Bounds:   []Bound{{1, 100}, {1, 100}, {-600, 300}, {0.0001, 0.1}},
	},
	Brody: {
		Name:   Brody,
		Params: []string{"a", "b", "k1", "k2"},
		Eval: func(t float64, p []float64) float64 {
			return p[0]*math.Exp(-p[2]*t) - p[1]*math.Exp(-p[3]*t)
		},
		Expr: func() symbolic.Expr {
			a, b, t := symbolic.Sym("a"), symbolic.Sym("b"), symbolic.Sym(TimeSymbol)
			k1, k2 := symbolic.Sym("k1"), symbolic.Sym("k2")
			return symbolic.Sub(
				symbolic.Mul(a, symbolic.Exp(symbolic.Neg(symbolic.Mul(k1, t)))),
				symbolic.Mul(b, symbolic.Exp(symbolic.Neg(symbolic.Mul(k2, t)))))
		},
		PeakTime: func() symbolic.Expr {
			// a*k1*exp(-k1 t) = b*k2*exp(-k2 t)  =>  t = log(a k1/(b k2))/(k1-k2)
			a, b := symbolic.Sym("a"), symbolic.Sym("b")
			k1, k2 := symbolic.Sym("k1"), symbolic.Sym("k2")
			return symbolic.Div(symbolic.Log(symbolic.Div(symbolic.Mul(a, k1), symbolic.Mul(b, k2))), symbolic.Sub(k1, k2))
		},
	},
	Sikka: {
		Name:   Sikka,
		Params: []string{"a", "b", "c"},
		Eval: func(t float64, p []float64) float64 {
			return p[0] * math.Exp(p[1]*t-p[2]*t*t)
		},
		Expr: func() symbolic.Expr {
			a, b, c, t := sym4("a", "b", "c", TimeSymbol)
			return symbolic.Mul(a, symbolic.Exp(symbolic.Sub(symbolic.Mul(b, t), symbolic.Mul(c, symbolic.Mul(t, t)))))
		},
		PeakTime: func() symbolic.Expr {
			return symbolic.Div(symbolic.Sym("b"), symbolic.Mul(symbolic.Num(2), symbolic.Sym("c")))
		},
	},
	Nelder: {
		Name:   Nelder,
		Params: []string{"a", "b", "c"},
		Eval: func(t float64, p []float64) float64 {
			return t / (p[0] + p[1]*t + p[2]*t*t)
		},
		Expr: func() symbolic.Expr {
			a, b, c, t := sym4("a", "b", "c", TimeSymbol)
			return symbolic.Div(t, symbolic.Add(symbolic.Add(a, symbolic.Mul(b, t)), symbolic.Mul(c, symbolic.Mul(t, t))))
		},
		PeakTime: func() symbolic.Expr {
			return symbolic.Sqrt(symbolic.Div(symbolic.Sym("a"), symbolic.Sym("c")))
		},
	},
	Dhanoa: {
		Name:   Dhanoa,
		Params: []string{"a", "b", "c"},
		Eval: func(t float64, p []float64) float64 {
			return p[0] * math.Pow(t, p[1]*p[2]) * math.Exp(-p[2]*t)
		},
		Expr: func() symbolic.Expr {
			a, b, c, t := sym4("a", "b", "c", TimeSymbol)
			return symbolic.Mul(symbolic.Mul(a, symbolic.Pow(t, symbolic.Mul(b, c))), symbolic.Exp(symbolic.Neg(symbolic.Mul(c, t))))
		},
		PeakTime: func() symbolic.Expr {
			// bc/t = c  =>  t = b
			return symbolic.Sym("b")
		},
	},
	Emmans: {
		Name:   Emmans,
		Params: []string{"a", "b", "c", "d"},
		Eval: func(t float64, p []float64) float64 {
			return p[0] * math.Exp(-math.Exp(p[3]-p[1]*t)) * math.Exp(-p[2]*t)
		},
		Expr: func() symbolic.Expr {
			a, b, c, t := sym4("a", "b", "c", TimeSymbol)
			d := symbolic.Sym("d")
			return symbolic.Mul(
				symbolic.Mul(a, symbolic.Exp(symbolic.Neg(symbolic.Exp(symbolic.Sub(d, symbolic.Mul(b, t)))))),
				symbolic.Exp(symbolic.Neg(symbolic.Mul(c, t))))
		},
		PeakTime: func() symbolic.Expr {
			// b*exp(d-b*t) = c  =>  t = (d - log(c/b)) / b
			b, c, d := symbolic.Sym("b"), symbolic.Sym("c"), symbolic.Sym("d")
			return symbolic.Div(symbolic.Sub(d, symbolic.Log(symbolic.Div(c, b))), b)
		},
	},
	Hayashi: {
		Name:   Hayashi,
		Params: []string{"a", "b", "c", "d"},
		Eval: func(t float64, p []float64) float64 {
			return p[1] * (math.Exp(-t/p[2]) - math.Exp(-t/(p[0]*p[2])))
		},
		Expr: func() symbolic.Expr {
			a, b, c, t := sym4("a", "b", "c", TimeSymbol)
			return symbolic.Mul(b, symbolic.Sub(
				symbolic.Exp(symbolic.Neg(symbolic.Div(t, c))),
				symbolic.Exp(symbolic.Neg(symbolic.Div(t, symbolic.Mul(a, c))))))
		},
		PeakTime: func() symbolic.Expr {
			// t = a*c*log(a)/(a-1)
			a, c := symbolic.Sym("a"), symbolic.Sym("c")
			return symbolic.Div(symbolic.Mul(symbolic.Mul(a, c), symbolic.Log(a)), symbolic.Sub(a, symbolic.Num(1)))
		},
	},
	Rook: {
		Name:   Rook,
		Params: []string{"a", "b", "c", "d"},
		Eval: func(t float64, p []float64) float64 {
			return p[0] * (1 / (1 + p[1]/(p[2]+t))) * math.Exp(-p[3]*t)
		},
		Expr: func() symbolic.Expr {
			a, b, c, t := sym4("a", "b", "c", TimeSymbol)
			d := symbolic.Sym("d")
			frac := symbolic.Div(symbolic.Num(1), symbolic.Add(symbolic.Num(1), symbolic.Div(b, symbolic.Add(c, t))))
			return symbolic.Mul(symbolic.Mul(a, frac), symbolic.Exp(symbolic.Neg(symbolic.Mul(d, t))))
		},
		PeakTime: func() symbolic.Expr {
			// With s = c+t the stationarity condition is d*s^2 + d*b*s - b = 0,
			// so t = (sqrt(d^2 b^2 + 4bd) - d*b)/(2d) - c.
			b, c, d := symbolic.Sym("b"), symbolic.Sym("c"), symbolic.Sym("d")
			db := symbolic.Mul(d, b)
			disc := symbolic.Add(symbolic.Mul(db, db), symbolic.Mul(symbolic.Num(4), symbolic.Mul(b, d)))
			s := symbolic.Div(symbolic.Sub(symbolic.Sqrt(disc), db), symbolic.Mul(symbolic.Num(2), d))
			return symbolic.Sub(s, c)
		},
	},
	Dijkstra: {
		Name:   Dijkstra,
		Params: []string{"a", "b", "c", "d"},
		Eval: func(t float64, p []float64) float64 {
			return p[0] * math.Exp(p[1]*(1-math.Exp(-p[2]*t))/p[2]-p[3]*t)
		},
		Expr: func() symbolic.Expr {
			a, b, c, t := sym4("a", "b", "c", TimeSymbol)
			d := symbolic.Sym("d")
			growth := symbolic.Div(symbolic.Mul(b, symbolic.Sub(symbolic.Num(1), symbolic.Exp(symbolic.Neg(symbolic.Mul(c, t))))), c)
			return symbolic.Mul(a, symbolic.Exp(symbolic.Sub(growth, symbolic.Mul(d, t))))
		},
		PeakTime: func() symbolic.Expr {
			// b*exp(-c*t) = d  =>  t = log(b/d)/c
			b, c, d := symbolic.Sym("b"), symbolic.Sym("c"), symbolic.Sym("d")
			return symbolic.Div(symbolic.Log(symbolic.Div(b, d)), c)
		},
	},
	Prasad: {
		Name:   Prasad,
		Params: []string{"a", "b", "c", "d"},
		Eval: func(t float64, p []float64) float64 {
			return p[0] + p[1]*t + p[2]*t*t + p[3]/t
		},
		Expr: func() symbolic.Expr {
			a, b, c, t := sym4("a", "b", "c", TimeSymbol)
			d := symbolic.Sym("d")
			return symbolic.Add(
				symbolic.Add(a, symbolic.Mul(b, t)),
				symbolic.Add(symbolic.Mul(c, symbolic.Mul(t, t)), symbolic.Div(d, t)))
		},
		// Stationarity reduces to the cubic 2c*t^3 + b*t^2 - d = 0; no
		// usable closed form, numeric fallback applies.
		PeakTime: nil,
	},
}

// Parse resolves a normalized (lowercase, trimmed) model name.
func Parse(name string) (*Spec, error) {
	spec, ok := registry[Name(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return nil, core.NewValidationError(core.ErrUnknownModel, "model", name)
	}
	return spec, nil
}

// All returns every registered model spec.
func All() []*Spec {
	specs := make([]*Spec, 0, len(registry))
	for _, name := range []Name{
		Wood, Wilmink, AliSchaeffer, Fischer, MilkBot,
		Brody, Sikka, Nelder, Dhanoa, Emmans, Hayashi, Rook, Dijkstra, Prasad,
	} {
		specs = append(specs, registry[name])
	}
	return specs
}

// FittableNames lists the five models supported by the frequentist fitter.
func FittableNames() []Name {
	return []Name{Wood, Wilmink, AliSchaeffer, Fischer, MilkBot}
}

// EvalSeries evaluates the model over integer days 1..maxDay.
func (s *Spec) EvalSeries(p []float64, maxDay int) []float64 {
	out := make([]float64, maxDay)
	for i := range out {
		out[i] = s.Eval(float64(i+1), p)
	}
	return out
}

func sym4(a, b, c, t string) (symbolic.Expr, symbolic.Expr, symbolic.Expr, symbolic.Expr) {
	return symbolic.Sym(a), symbolic.Sym(b), symbolic.Sym(c), symbolic.Sym(t)
}
