package symbolic

import (
	"math"
	"testing"
)

func evalAt(t *testing.T, e Expr, params []string, values []float64) float64 {
	t.Helper()
	fn, err := Compile(e, params)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return fn(values)
}

func TestDiffPolynomial(t *testing.T) {
	// d/dt (a*t^2 + b*t) = 2*a*t + b
	a, b, tt := Sym("a"), Sym("b"), Sym("t")
	e := Add(Mul(a, Pow(tt, Num(2))), Mul(b, tt))
	d := Simplify(Diff(e, "t"))

	params := []string{"a", "b", "t"}
	got := evalAt(t, d, params, []float64{3, 5, 2})
	want := 2.0*3*2 + 5
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("derivative at (a=3,b=5,t=2) = %v, want %v", got, want)
	}
}

func TestDiffExpChain(t *testing.T) {
	// d/dt exp(-c*t) = -c * exp(-c*t)
	c, tt := Sym("c"), Sym("t")
	e := Exp(Neg(Mul(c, tt)))
	d := Simplify(Diff(e, "t"))

	params := []string{"c", "t"}
	cv, tv := 0.1, 7.0
	got := evalAt(t, d, params, []float64{cv, tv})
	want := -cv * math.Exp(-cv*tv)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("derivative = %v, want %v", got, want)
	}
}

func TestDiffLogAndDiv(t *testing.T) {
	// d/dt log(a/t) = -1/t
	a, tt := Sym("a"), Sym("t")
	e := Log(Div(a, tt))
	d := Simplify(Diff(e, "t"))

	got := evalAt(t, d, []string{"a", "t"}, []float64{305, 10})
	if math.Abs(got-(-0.1)) > 1e-12 {
		t.Errorf("derivative = %v, want -0.1", got)
	}
}

func TestDiffGeneralPower(t *testing.T) {
	// d/dt t^b = b * t^(b-1) via the general u^w rule when the exponent is
	// symbolic.
	b, tt := Sym("b"), Sym("t")
	e := Pow(tt, b)
	d := Simplify(Diff(e, "t"))

	bv, tv := 0.3, 50.0
	got := evalAt(t, d, []string{"b", "t"}, []float64{bv, tv})
	want := bv * math.Pow(tv, bv-1)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("derivative = %v, want %v", got, want)
	}
}

func TestSimplifyIdentities(t *testing.T) {
	x := Sym("x")
	cases := []struct {
		name string
		in   Expr
		want string
	}{
		{"add zero", Add(x, Num(0)), "x"},
		{"mul one", Mul(Num(1), x), "x"},
		{"mul zero", Mul(x, Num(0)), "0"},
		{"pow zero", Pow(x, Num(0)), "1"},
		{"double neg", Neg(Neg(x)), "x"},
		{"const fold", Add(Num(2), Num(3)), "5"},
		{"log one", Log(Num(1)), "0"},
	}
	for _, tc := range cases {
		if got := Simplify(tc.in).String(); got != tc.want {
			t.Errorf("%s: Simplify(%s) = %s, want %s", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	e := Diff(Mul(Sym("a"), Exp(Neg(Mul(Sym("c"), Sym("t"))))), "t")
	once := Simplify(e)
	twice := Simplify(once)
	if once.String() != twice.String() {
		t.Errorf("Simplify not idempotent: %s vs %s", once, twice)
	}
}

func TestSubst(t *testing.T) {
	// Substituting the peak expression b/c for t in a*t gives a*(b/c).
	e := Mul(Sym("a"), Sym("t"))
	s := Subst(e, "t", Div(Sym("b"), Sym("c")))

	got := evalAt(t, s, []string{"a", "b", "c"}, []float64{2, 6, 3})
	if got != 4 {
		t.Errorf("substituted value = %v, want 4", got)
	}
}

func TestVars(t *testing.T) {
	e := Add(Mul(Sym("b"), Sym("t")), Exp(Sym("a")))
	vars := Vars(e)
	want := []string{"a", "b", "t"}
	if len(vars) != len(want) {
		t.Fatalf("Vars = %v, want %v", vars, want)
	}
	for i := range want {
		if vars[i] != want[i] {
			t.Errorf("Vars[%d] = %s, want %s", i, vars[i], want[i])
		}
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(Add(Sym("a"), Num(1))) {
		t.Error("finite expression should be valid")
	}
	if IsValid(nil) {
		t.Error("nil expression should be invalid")
	}
	if IsValid(Num(math.Inf(1))) {
		t.Error("infinite constant should be invalid")
	}
	if IsValid(Num(math.NaN())) {
		t.Error("NaN constant should be invalid")
	}

	// Exceeding the op ceiling makes an expression invalid.
	big := Expr(Sym("x"))
	for i := 0; i < MaxOps+1; i++ {
		big = Add(big, Num(1))
	}
	if IsValid(big) {
		t.Error("oversized expression should be invalid")
	}
}

func TestCompileUnboundSymbol(t *testing.T) {
	_, err := Compile(Sym("q"), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error for unbound symbol")
	}
}

func TestCountOps(t *testing.T) {
	e := Add(Mul(Sym("a"), Sym("t")), Num(1))
	if n := CountOps(e); n != 2 {
		t.Errorf("CountOps = %d, want 2", n)
	}
}
