// Package solver turns classified problem text into typed solutions with
// reproducible, steppable derivations. One solving strategy per domain
// sits behind the Solve dispatcher; all of them are deterministic — no
// wall-clock time and no randomness feed a mathematical result.
package solver

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Expr is a parsed mathematical expression node.
type Expr interface {
	String() string
}

// Number is an exact rational constant.
type Number struct {
	Val *big.Rat
}

func (n *Number) String() string { return ratString(n.Val) }

// Variable is a single named unknown.
type Variable struct {
	Name string
}

func (v *Variable) String() string { return v.Name }

// Neg is unary negation.
type Neg struct {
	X Expr
}

func (n *Neg) String() string { return "-" + parenthesize(n.X) }

// Binary is one of + - * / ^.
type Binary struct {
	Op byte
	L  Expr
	R  Expr
}

func (b *Binary) String() string {
	l, r := parenthesize(b.L), parenthesize(b.R)
	switch b.Op {
	case '+', '-':
		return fmt.Sprintf("%s %c %s", b.L.String(), b.Op, b.R.String())
	case '*':
		// Render coefficient-variable products tightly: 3x, 2sin(x).
		if ln, ok := b.L.(*Number); ok {
			if _, isNum := b.R.(*Number); !isNum {
				return ratString(ln.Val) + tightOperand(b.R)
			}
		}
		return fmt.Sprintf("%s*%s", l, r)
	default:
		return fmt.Sprintf("%s%c%s", l, b.Op, r)
	}
}

// Call is a named function application: sin, cos, tan, sqrt, exp, ln, log.
type Call struct {
	Fn  string
	Arg Expr
}

func (c *Call) String() string { return fmt.Sprintf("%s(%s)", c.Fn, c.Arg.String()) }

func parenthesize(e Expr) string {
	switch e.(type) {
	case *Binary, *Neg:
		return "(" + e.String() + ")"
	}
	return e.String()
}

func tightOperand(e Expr) string {
	switch e.(type) {
	case *Variable, *Call:
		return e.String()
	}
	return "(" + e.String() + ")"
}

// newInt builds an exact integer Number.
func newInt(n int64) *Number {
	return &Number{Val: big.NewRat(n, 1)}
}

// Eval evaluates e numerically with the given variable bindings.
func Eval(e Expr, vars map[string]float64) (float64, error) {
	switch n := e.(type) {
	case *Number:
		f, _ := n.Val.Float64()
		return f, nil
	case *Variable:
		if v, ok := vars[n.Name]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("unbound variable %q", n.Name)
	case *Neg:
		v, err := Eval(n.X, vars)
		return -v, err
	case *Binary:
		l, err := Eval(n.L, vars)
		if err != nil {
			return 0, err
		}
		r, err := Eval(n.R, vars)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case '+':
			return l + r, nil
		case '-':
			return l - r, nil
		case '*':
			return l * r, nil
		case '/':
			if r == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return l / r, nil
		case '^':
			return math.Pow(l, r), nil
		}
		return 0, fmt.Errorf("unknown operator %q", string(n.Op))
	case *Call:
		v, err := Eval(n.Arg, vars)
		if err != nil {
			return 0, err
		}
		switch n.Fn {
		case "sin":
			return math.Sin(v), nil
		case "cos":
			return math.Cos(v), nil
		case "tan":
			return math.Tan(v), nil
		case "sqrt":
			if v < 0 {
				return 0, fmt.Errorf("square root of negative number")
			}
			return math.Sqrt(v), nil
		case "exp":
			return math.Exp(v), nil
		case "ln":
			if v <= 0 {
				return 0, fmt.Errorf("log of non-positive number")
			}
			return math.Log(v), nil
		case "log":
			if v <= 0 {
				return 0, fmt.Errorf("log of non-positive number")
			}
			return math.Log10(v), nil
		}
		return 0, fmt.Errorf("unknown function %q", n.Fn)
	}
	return 0, fmt.Errorf("unknown expression node %T", e)
}

// Variables collects the distinct variable names in e, in first-seen order.
func Variables(e Expr) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case *Variable:
			if !seen[n.Name] {
				seen[n.Name] = true
				names = append(names, n.Name)
			}
		case *Neg:
			walk(n.X)
		case *Binary:
			walk(n.L)
			walk(n.R)
		case *Call:
			walk(n.Arg)
		}
	}
	walk(e)
	return names
}

// ratString renders an exact rational: integers plainly, otherwise p/q.
func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	return r.RatString()
}

// formatAnswer renders a numeric result for submission: exact-looking
// integers without a decimal point, otherwise up to four decimals with
// trailing zeros trimmed.
func formatAnswer(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
