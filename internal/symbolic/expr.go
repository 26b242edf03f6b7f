// Package symbolic implements a small expression tree for lactation curve
// formulas: symbolic differentiation, substitution, light simplification,
// and compilation into numeric evaluators over an ordered parameter tuple.
package symbolic

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// MaxOps is the operation-count ceiling for a derived expression. Anything
// larger is treated as symbolically unavailable rather than evaluated.
const MaxOps = 5000

// Expr is an immutable expression tree node.
type Expr interface {
	String() string
}

type num struct{ v float64 }
type sym struct{ name string }
type add struct{ x, y Expr }
type sub struct{ x, y Expr }
type mul struct{ x, y Expr }
type div struct{ x, y Expr }
type pow struct{ base, exp Expr }
type exps struct{ x Expr }
type logs struct{ x Expr }
type neg struct{ x Expr }

// Num returns a numeric constant.
func Num(v float64) Expr { return num{v} }

// Sym returns a named symbol.
func Sym(name string) Expr { return sym{name} }

// Add returns x + y.
func Add(x, y Expr) Expr { return add{x, y} }

// Sub returns x - y.
func Sub(x, y Expr) Expr { return sub{x, y} }

// Mul returns x * y.
func Mul(x, y Expr) Expr { return mul{x, y} }

// Div returns x / y.
func Div(x, y Expr) Expr { return div{x, y} }

// Pow returns base ** exp.
func Pow(base, exp Expr) Expr { return pow{base, exp} }

// Exp returns e ** x.
func Exp(x Expr) Expr { return exps{x} }

// Log returns the natural logarithm of x.
func Log(x Expr) Expr { return logs{x} }

// Neg returns -x.
func Neg(x Expr) Expr { return neg{x} }

// Sqrt returns x ** 0.5.
func Sqrt(x Expr) Expr { return pow{x, num{0.5}} }

func (n num) String() string { return strconv.FormatFloat(n.v, 'g', -1, 64) }
func (s sym) String() string { return s.name }
func (e add) String() string { return fmt.Sprintf("(%s + %s)", e.x, e.y) }
func (e sub) String() string { return fmt.Sprintf("(%s - %s)", e.x, e.y) }
func (e mul) String() string { return fmt.Sprintf("(%s * %s)", e.x, e.y) }
func (e div) String() string { return fmt.Sprintf("(%s / %s)", e.x, e.y) }
func (e pow) String() string { return fmt.Sprintf("(%s ^ %s)", e.base, e.exp) }
func (e exps) String() string { return fmt.Sprintf("exp(%s)", e.x) }
func (e logs) String() string { return fmt.Sprintf("log(%s)", e.x) }
func (e neg) String() string { return fmt.Sprintf("-(%s)", e.x) }

// Diff returns the derivative of e with respect to the symbol v.
func Diff(e Expr, v string) Expr {
	switch t := e.(type) {
	case num:
		return num{0}
	case sym:
		if t.name == v {
			return num{1}
		}
		return num{0}
	case add:
		return Add(Diff(t.x, v), Diff(t.y, v))
	case sub:
		return Sub(Diff(t.x, v), Diff(t.y, v))
	case mul:
		return Add(Mul(Diff(t.x, v), t.y), Mul(t.x, Diff(t.y, v)))
	case div:
		// (x'y - xy') / y^2
		return Div(Sub(Mul(Diff(t.x, v), t.y), Mul(t.x, Diff(t.y, v))), Mul(t.y, t.y))
	case pow:
		// General rule: d(u^w) = u^w * (w' ln u + w u'/u)
		if isConst(t.exp) {
			// u^c -> c * u^(c-1) * u'
			c := t.exp.(num).v
			return Mul(Mul(num{c}, Pow(t.base, num{c - 1})), Diff(t.base, v))
		}
		return Mul(t, Add(Mul(Diff(t.exp, v), Log(t.base)), Mul(t.exp, Div(Diff(t.base, v), t.base))))
	case exps:
		return Mul(t, Diff(t.x, v))
	case logs:
		return Div(Diff(t.x, v), t.x)
	case neg:
		return Neg(Diff(t.x, v))
	}
	panic("symbolic: unknown node")
}

// Subst replaces every occurrence of symbol v in e with r.
func Subst(e Expr, v string, r Expr) Expr {
	switch t := e.(type) {
	case num:
		return t
	case sym:
		if t.name == v {
			return r
		}
		return t
	case add:
		return Add(Subst(t.x, v, r), Subst(t.y, v, r))
	case sub:
		return Sub(Subst(t.x, v, r), Subst(t.y, v, r))
	case mul:
		return Mul(Subst(t.x, v, r), Subst(t.y, v, r))
	case div:
		return Div(Subst(t.x, v, r), Subst(t.y, v, r))
	case pow:
		return Pow(Subst(t.base, v, r), Subst(t.exp, v, r))
	case exps:
		return Exp(Subst(t.x, v, r))
	case logs:
		return Log(Subst(t.x, v, r))
	case neg:
		return Neg(Subst(t.x, v, r))
	}
	panic("symbolic: unknown node")
}

// Simplify performs constant folding and identity elimination. It is not a
// full canonicalizer; it exists to keep derived expressions small enough for
// the MaxOps gate and cheap to evaluate.
func Simplify(e Expr) Expr {
	switch t := e.(type) {
	case num, sym:
		return e
	case add:
		x, y := Simplify(t.x), Simplify(t.y)
		if isZero(x) {
			return y
		}
		if isZero(y) {
			return x
		}
		if a, ok := x.(num); ok {
			if b, ok := y.(num); ok {
				return num{a.v + b.v}
			}
		}
		return Add(x, y)
	case sub:
		x, y := Simplify(t.x), Simplify(t.y)
		if isZero(y) {
			return x
		}
		if isZero(x) {
			return Neg(y)
		}
		if a, ok := x.(num); ok {
			if b, ok := y.(num); ok {
				return num{a.v - b.v}
			}
		}
		return Sub(x, y)
	case mul:
		x, y := Simplify(t.x), Simplify(t.y)
		if isZero(x) || isZero(y) {
			return num{0}
		}
		if isOne(x) {
			return y
		}
		if isOne(y) {
			return x
		}
		if a, ok := x.(num); ok {
			if b, ok := y.(num); ok {
				return num{a.v * b.v}
			}
		}
		return Mul(x, y)
	case div:
		x, y := Simplify(t.x), Simplify(t.y)
		if isZero(x) && !isZero(y) {
			return num{0}
		}
		if isOne(y) {
			return x
		}
		if a, ok := x.(num); ok {
			if b, ok := y.(num); ok && b.v != 0 {
				return num{a.v / b.v}
			}
		}
		return Div(x, y)
	case pow:
		base, exp := Simplify(t.base), Simplify(t.exp)
		if isZero(exp) {
			return num{1}
		}
		if isOne(exp) {
			return base
		}
		if a, ok := base.(num); ok {
			if b, ok := exp.(num); ok {
				return num{math.Pow(a.v, b.v)}
			}
		}
		return Pow(base, exp)
	case exps:
		x := Simplify(t.x)
		if isZero(x) {
			return num{1}
		}
		if a, ok := x.(num); ok {
			return num{math.Exp(a.v)}
		}
		return Exp(x)
	case logs:
		x := Simplify(t.x)
		if isOne(x) {
			return num{0}
		}
		if a, ok := x.(num); ok {
			return num{math.Log(a.v)}
		}
		return Log(x)
	case neg:
		x := Simplify(t.x)
		if a, ok := x.(num); ok {
			return num{-a.v}
		}
		if inner, ok := x.(neg); ok {
			return inner.x
		}
		return Neg(x)
	}
	panic("symbolic: unknown node")
}

// CountOps counts the operation nodes in e.
func CountOps(e Expr) int {
	switch t := e.(type) {
	case num, sym:
		return 0
	case add:
		return 1 + CountOps(t.x) + CountOps(t.y)
	case sub:
		return 1 + CountOps(t.x) + CountOps(t.y)
	case mul:
		return 1 + CountOps(t.x) + CountOps(t.y)
	case div:
		return 1 + CountOps(t.x) + CountOps(t.y)
	case pow:
		return 1 + CountOps(t.base) + CountOps(t.exp)
	case exps:
		return 1 + CountOps(t.x)
	case logs:
		return 1 + CountOps(t.x)
	case neg:
		return 1 + CountOps(t.x)
	}
	panic("symbolic: unknown node")
}

// Vars returns the sorted symbol names occurring in e.
func Vars(e Expr) []string {
	seen := map[string]bool{}
	collectVars(e, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectVars(e Expr, seen map[string]bool) {
	switch t := e.(type) {
	case num:
	case sym:
		seen[t.name] = true
	case add:
		collectVars(t.x, seen)
		collectVars(t.y, seen)
	case sub:
		collectVars(t.x, seen)
		collectVars(t.y, seen)
	case mul:
		collectVars(t.x, seen)
		collectVars(t.y, seen)
	case div:
		collectVars(t.x, seen)
		collectVars(t.y, seen)
	case pow:
		collectVars(t.base, seen)
		collectVars(t.exp, seen)
	case exps:
		collectVars(t.x, seen)
	case logs:
		collectVars(t.x, seen)
	case neg:
		collectVars(t.x, seen)
	}
}

// IsValid reports whether e is safe to compile: no non-finite constants and
// an operation count within MaxOps.
func IsValid(e Expr) bool {
	if e == nil {
		return false
	}
	if hasNonFinite(e) {
		return false
	}
	return CountOps(e) <= MaxOps
}

func hasNonFinite(e Expr) bool {
	switch t := e.(type) {
	case num:
		return math.IsNaN(t.v) || math.IsInf(t.v, 0)
	case sym:
		return false
	case add:
		return hasNonFinite(t.x) || hasNonFinite(t.y)
	case sub:
		return hasNonFinite(t.x) || hasNonFinite(t.y)
	case mul:
		return hasNonFinite(t.x) || hasNonFinite(t.y)
	case div:
		return hasNonFinite(t.x) || hasNonFinite(t.y)
	case pow:
		return hasNonFinite(t.base) || hasNonFinite(t.exp)
	case exps:
		return hasNonFinite(t.x)
	case logs:
		return hasNonFinite(t.x)
	case neg:
		return hasNonFinite(t.x)
	}
	panic("symbolic: unknown node")
}

// Evaluator is a compiled numeric function of an ordered parameter tuple.
type Evaluator func(params []float64) float64

// Compile turns e into a fast evaluator over the given parameter order.
// Every symbol in e must appear in params.
func Compile(e Expr, params []string) (Evaluator, error) {
	index := make(map[string]int, len(params))
	for i, name := range params {
		index[name] = i
	}
	fn, err := compile(e, index)
	if err != nil {
		return nil, err
	}
	return fn, nil
}

func compile(e Expr, index map[string]int) (Evaluator, error) {
	switch t := e.(type) {
	case num:
		v := t.v
		return func([]float64) float64 { return v }, nil
	case sym:
		i, ok := index[t.name]
		if !ok {
			return nil, fmt.Errorf("symbolic: unbound symbol %q", t.name)
		}
		return func(p []float64) float64 { return p[i] }, nil
	case add:
		return compileBinary(t.x, t.y, index, func(a, b float64) float64 { return a + b })
	case sub:
		return compileBinary(t.x, t.y, index, func(a, b float64) float64 { return a - b })
	case mul:
		return compileBinary(t.x, t.y, index, func(a, b float64) float64 { return a * b })
	case div:
		return compileBinary(t.x, t.y, index, func(a, b float64) float64 { return a / b })
	case pow:
		return compileBinary(t.base, t.exp, index, math.Pow)
	case exps:
		return compileUnary(t.x, index, math.Exp)
	case logs:
		return compileUnary(t.x, index, math.Log)
	case neg:
		return compileUnary(t.x, index, func(a float64) float64 { return -a })
	}
	panic("symbolic: unknown node")
}

func compileBinary(x, y Expr, index map[string]int, op func(a, b float64) float64) (Evaluator, error) {
	fx, err := compile(x, index)
	if err != nil {
		return nil, err
	}
	fy, err := compile(y, index)
	if err != nil {
		return nil, err
	}
	return func(p []float64) float64 { return op(fx(p), fy(p)) }, nil
}

func compileUnary(x Expr, index map[string]int, op func(a float64) float64) (Evaluator, error) {
	fx, err := compile(x, index)
	if err != nil {
		return nil, err
	}
	return func(p []float64) float64 { return op(fx(p)) }, nil
}

func isConst(e Expr) bool {
	_, ok := e.(num)
	return ok
}

func isZero(e Expr) bool {
	n, ok := e.(num)
	return ok && n.v == 0
}

func isOne(e Expr) bool {
	n, ok := e.(num)
	return ok && n.v == 1
}
