package solver

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// Poly is a univariate polynomial with exact rational coefficients,
// keyed by degree. The zero map is the zero polynomial.
type Poly map[int]*big.Rat

// PolyFromExpr converts an expression tree to a polynomial in varName.
// Fails when the expression is not polynomial in that variable
// (division by the variable, fractional powers, function calls).
func PolyFromExpr(e Expr, varName string) (Poly, error) {
	switch n := e.(type) {
	case *Number:
		return Poly{0: new(big.Rat).Set(n.Val)}, nil
	case *Variable:
		if n.Name == varName {
			return Poly{1: big.NewRat(1, 1)}, nil
		}
		return nil, fmt.Errorf("unexpected variable %q (solving in %q)", n.Name, varName)
	case *Neg:
		p, err := PolyFromExpr(n.X, varName)
		if err != nil {
			return nil, err
		}
		return p.Scale(big.NewRat(-1, 1)), nil
	case *Binary:
		switch n.Op {
		case '+', '-':
			l, err := PolyFromExpr(n.L, varName)
			if err != nil {
				return nil, err
			}
			r, err := PolyFromExpr(n.R, varName)
			if err != nil {
				return nil, err
			}
			if n.Op == '-' {
				r = r.Scale(big.NewRat(-1, 1))
			}
			return l.Add(r), nil
		case '*':
			l, err := PolyFromExpr(n.L, varName)
			if err != nil {
				return nil, err
			}
			r, err := PolyFromExpr(n.R, varName)
			if err != nil {
				return nil, err
			}
			return l.Mul(r), nil
		case '/':
			l, err := PolyFromExpr(n.L, varName)
			if err != nil {
				return nil, err
			}
			r, err := PolyFromExpr(n.R, varName)
			if err != nil {
				return nil, err
			}
			c, ok := r.Constant()
			if !ok || c.Sign() == 0 {
				return nil, fmt.Errorf("non-constant divisor")
			}
			return l.Scale(new(big.Rat).Inv(c)), nil
		case '^':
			base, err := PolyFromExpr(n.L, varName)
			if err != nil {
				return nil, err
			}
			expPoly, err := PolyFromExpr(n.R, varName)
			if err != nil {
				return nil, err
			}
			c, ok := expPoly.Constant()
			if !ok || !c.IsInt() || c.Sign() < 0 {
				return nil, fmt.Errorf("exponent must be a non-negative integer")
			}
			k := c.Num().Int64()
			if k > 16 {
				return nil, fmt.Errorf("exponent %d too large", k)
			}
			result := Poly{0: big.NewRat(1, 1)}
			for i := int64(0); i < k; i++ {
				result = result.Mul(base)
			}
			return result, nil
		}
		return nil, fmt.Errorf("unsupported operator %q", string(n.Op))
	case *Call:
		return nil, fmt.Errorf("function %q is not polynomial", n.Fn)
	}
	return nil, fmt.Errorf("unsupported node %T", e)
}

// Add returns p + q.
func (p Poly) Add(q Poly) Poly {
	out := Poly{}
	for d, c := range p {
		out[d] = new(big.Rat).Set(c)
	}
	for d, c := range q {
		if cur, ok := out[d]; ok {
			cur.Add(cur, c)
		} else {
			out[d] = new(big.Rat).Set(c)
		}
	}
	return out.compact()
}

// Mul returns p * q.
func (p Poly) Mul(q Poly) Poly {
	out := Poly{}
	for dp, cp := range p {
		for dq, cq := range q {
			term := new(big.Rat).Mul(cp, cq)
			if cur, ok := out[dp+dq]; ok {
				cur.Add(cur, term)
			} else {
				out[dp+dq] = term
			}
		}
	}
	return out.compact()
}

// Scale returns p multiplied by the constant k.
func (p Poly) Scale(k *big.Rat) Poly {
	out := Poly{}
	for d, c := range p {
		out[d] = new(big.Rat).Mul(c, k)
	}
	return out.compact()
}

// Constant reports the constant value of p when it has degree zero.
func (p Poly) Constant() (*big.Rat, bool) {
	for d, c := range p {
		if d != 0 && c.Sign() != 0 {
			return nil, false
		}
	}
	if c, ok := p[0]; ok {
		return c, true
	}
	return big.NewRat(0, 1), true
}

// Degree returns the highest degree with a nonzero coefficient, or 0 for
// the zero polynomial.
func (p Poly) Degree() int {
	deg := 0
	for d, c := range p {
		if c.Sign() != 0 && d > deg {
			deg = d
		}
	}
	return deg
}

// Coeff returns the coefficient at degree d (zero when absent).
func (p Poly) Coeff(d int) *big.Rat {
	if c, ok := p[d]; ok {
		return c
	}
	return big.NewRat(0, 1)
}

// EvalAt evaluates the polynomial numerically.
func (p Poly) EvalAt(x float64) float64 {
	sum := 0.0
	for d, c := range p {
		f, _ := c.Float64()
		sum += f * math.Pow(x, float64(d))
	}
	return sum
}

// Derivative returns dp/dx.
func (p Poly) Derivative() Poly {
	out := Poly{}
	for d, c := range p {
		if d == 0 {
			continue
		}
		out[d-1] = new(big.Rat).Mul(c, big.NewRat(int64(d), 1))
	}
	return out.compact()
}

// Integral returns the antiderivative with zero constant term.
func (p Poly) Integral() Poly {
	out := Poly{}
	for d, c := range p {
		out[d+1] = new(big.Rat).Mul(c, big.NewRat(1, int64(d+1)))
	}
	return out.compact()
}

// String renders the polynomial in varName, highest degree first.
func (p Poly) String(varName string) string {
	degrees := make([]int, 0, len(p))
	for d, c := range p {
		if c.Sign() != 0 {
			degrees = append(degrees, d)
		}
	}
	if len(degrees) == 0 {
		return "0"
	}
	sort.Sort(sort.Reverse(sort.IntSlice(degrees)))

	var b strings.Builder
	for i, d := range degrees {
		c := p[d]
		neg := c.Sign() < 0
		abs := new(big.Rat).Abs(c)
		if i == 0 {
			if neg {
				b.WriteString("-")
			}
		} else if neg {
			b.WriteString(" - ")
		} else {
			b.WriteString(" + ")
		}
		switch {
		case d == 0:
			b.WriteString(ratString(abs))
		case abs.Cmp(big.NewRat(1, 1)) == 0:
			b.WriteString(varTerm(varName, d))
		default:
			b.WriteString(ratString(abs))
			b.WriteString(varTerm(varName, d))
		}
	}
	return b.String()
}

func varTerm(varName string, d int) string {
	if d == 1 {
		return varName
	}
	return fmt.Sprintf("%s^%d", varName, d)
}

// compact drops zero coefficients.
func (p Poly) compact() Poly {
	for d, c := range p {
		if c.Sign() == 0 {
			delete(p, d)
		}
	}
	return p
}
