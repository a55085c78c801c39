package solver

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/abhisek/mathpilot/internal/problem"
)

var (
	integralMarkerRe   = regexp.MustCompile(`(?i)integra(l|te)|antiderivative|∫`)
	derivativeMarkerRe = regexp.MustCompile(`(?i)derivative|differentiate|d/d([a-z])`)
	respectToRe        = regexp.MustCompile(`(?i)with respect to\s+([a-z])`)
)

// solveCalculus differentiates or integrates the parsed expression with
// respect to the detected variable. Differentiation works on the full
// expression tree; integration covers polynomials term by term.
func solveCalculus(text string, withSteps bool) (*problem.Solution, error) {
	integrate := integralMarkerRe.MatchString(text)

	varName := detectVariable(text)
	cleaned := stripCalculusMarkers(text)

	mathText := ExtractMath(cleaned)
	if mathText == "" {
		return nil, &problem.UnsolvableError{Domain: problem.DomainCalculus, Reason: "no expression found in problem text"}
	}

	e, err := Parse(mathText)
	if err != nil {
		return nil, err
	}

	// Fall back to the expression's own variable if the text named none.
	if varName == "" {
		if vars := Variables(e); len(vars) > 0 {
			varName = vars[0]
		} else {
			varName = "x"
		}
	}

	sol := &problem.Solution{Domain: problem.DomainCalculus, Confidence: 1}
	steps := stepList{enabled: withSteps}

	if integrate {
		p, err := PolyFromExpr(e, varName)
		if err != nil {
			return nil, &problem.UnsolvableError{
				Domain: problem.DomainCalculus,
				Reason: fmt.Sprintf("only polynomial integration is supported: %v", err),
			}
		}
		steps.add("Integrand", p.String(varName), "")
		for _, d := range sortedDegrees(p) {
			c := p.Coeff(d)
			termIn := Poly{d: c}.String(varName)
			termOut := Poly{d + 1: new(big.Rat).Mul(c, big.NewRat(1, int64(d+1)))}.String(varName)
			steps.add(fmt.Sprintf("Power rule: ∫%s d%s", termIn, varName),
				fmt.Sprintf("∫%s d%s = %s", termIn, varName, termOut), "")
		}
		result := p.Integral().String(varName) + " + C"
		steps.add("Collect terms and add the constant of integration", result, "")
		sol.FinalAnswer = result
		sol.Steps = steps.steps
		return sol, nil
	}

	steps.add("Function to differentiate", e.String(), "")

	// Prefer the exact polynomial path: cleaner output and per-term steps.
	if p, perr := PolyFromExpr(e, varName); perr == nil {
		for _, d := range sortedDegrees(p) {
			if d == 0 {
				steps.add("Constant rule", fmt.Sprintf("d/d%s %s = 0", varName, ratString(p.Coeff(d))), "")
				continue
			}
			termIn := Poly{d: p.Coeff(d)}.String(varName)
			termOut := Poly{d - 1: new(big.Rat).Mul(p.Coeff(d), big.NewRat(int64(d), 1))}.String(varName)
			steps.add(fmt.Sprintf("Power rule: d/d%s %s", varName, termIn),
				fmt.Sprintf("d/d%s %s = %s", varName, termIn, termOut), "")
		}
		result := p.Derivative().String(varName)
		steps.add("Collect terms", result, "")
		sol.FinalAnswer = result
		sol.Steps = steps.steps
		return sol, nil
	}

	deriv, err := differentiate(e, varName, &steps)
	if err != nil {
		return nil, &problem.UnsolvableError{Domain: problem.DomainCalculus, Reason: err.Error()}
	}
	simplified := simplifyExpr(deriv)
	sol.FinalAnswer = simplified.String()
	steps.add("Simplify", simplified.String(), "")
	sol.Steps = steps.steps
	return sol, nil
}

// differentiate applies symbolic rules to the expression tree, recording
// the rule used at each node.
func differentiate(e Expr, v string, steps *stepList) (Expr, error) {
	switch n := e.(type) {
	case *Number:
		return newInt(0), nil
	case *Variable:
		if n.Name == v {
			return newInt(1), nil
		}
		// Other symbols (π, e, foreign variables) are constants here.
		return newInt(0), nil
	case *Neg:
		d, err := differentiate(n.X, v, steps)
		if err != nil {
			return nil, err
		}
		return &Neg{X: d}, nil
	case *Binary:
		switch n.Op {
		case '+', '-':
			dl, err := differentiate(n.L, v, steps)
			if err != nil {
				return nil, err
			}
			dr, err := differentiate(n.R, v, steps)
			if err != nil {
				return nil, err
			}
			return &Binary{Op: n.Op, L: dl, R: dr}, nil
		case '*':
			dl, err := differentiate(n.L, v, steps)
			if err != nil {
				return nil, err
			}
			dr, err := differentiate(n.R, v, steps)
			if err != nil {
				return nil, err
			}
			steps.add("Product rule", fmt.Sprintf("d(%s · %s) = %s'·%s + %s·%s'",
				n.L.String(), n.R.String(), n.L.String(), n.R.String(), n.L.String(), n.R.String()), "")
			return &Binary{Op: '+',
				L: &Binary{Op: '*', L: dl, R: n.R},
				R: &Binary{Op: '*', L: n.L, R: dr},
			}, nil
		case '^':
			exp, ok := n.R.(*Number)
			if !ok || !exp.Val.IsInt() {
				return nil, fmt.Errorf("only constant integer exponents are supported")
			}
			du, err := differentiate(n.L, v, steps)
			if err != nil {
				return nil, err
			}
			k := exp.Val.Num().Int64()
			steps.add("Power rule with chain rule",
				fmt.Sprintf("d(u^%d) = %d·u^%d · u', u = %s", k, k, k-1, n.L.String()), "")
			return &Binary{Op: '*',
				L: &Binary{Op: '*', L: newInt(k), R: &Binary{Op: '^', L: n.L, R: newInt(k - 1)}},
				R: du,
			}, nil
		case '/':
			c, isConst := n.R.(*Number)
			if !isConst {
				return nil, fmt.Errorf("quotient rule with variable divisors is not supported")
			}
			dl, err := differentiate(n.L, v, steps)
			if err != nil {
				return nil, err
			}
			return &Binary{Op: '/', L: dl, R: c}, nil
		}
		return nil, fmt.Errorf("unsupported operator %q", string(n.Op))
	case *Call:
		du, err := differentiate(n.Arg, v, steps)
		if err != nil {
			return nil, err
		}
		var outer Expr
		switch n.Fn {
		case "sin":
			steps.add("Derivative of sine", "d(sin u) = cos(u) · u'", "")
			outer = &Call{Fn: "cos", Arg: n.Arg}
		case "cos":
			steps.add("Derivative of cosine", "d(cos u) = -sin(u) · u'", "")
			outer = &Neg{X: &Call{Fn: "sin", Arg: n.Arg}}
		case "exp":
			steps.add("Derivative of the exponential", "d(e^u) = e^u · u'", "")
			outer = &Call{Fn: "exp", Arg: n.Arg}
		case "ln":
			steps.add("Derivative of the natural log", "d(ln u) = u' / u", "")
			return &Binary{Op: '/', L: du, R: n.Arg}, nil
		case "sqrt":
			steps.add("Derivative of the square root", "d(√u) = u' / (2√u)", "")
			return &Binary{Op: '/', L: du, R: &Binary{Op: '*', L: newInt(2), R: &Call{Fn: "sqrt", Arg: n.Arg}}}, nil
		case "tan":
			steps.add("Derivative of tangent", "d(tan u) = u' / cos²(u)", "")
			cos2 := &Binary{Op: '^', L: &Call{Fn: "cos", Arg: n.Arg}, R: newInt(2)}
			return &Binary{Op: '/', L: du, R: cos2}, nil
		default:
			return nil, fmt.Errorf("cannot differentiate %q", n.Fn)
		}
		return &Binary{Op: '*', L: outer, R: du}, nil
	}
	return nil, fmt.Errorf("unsupported node %T", e)
}

// simplifyExpr folds constants and drops multiplicative/additive
// identities. Shallow, bottom-up; enough to make derivative output readable.
func simplifyExpr(e Expr) Expr {
	switch n := e.(type) {
	case *Neg:
		x := simplifyExpr(n.X)
		if num, ok := x.(*Number); ok {
			return &Number{Val: new(big.Rat).Neg(num.Val)}
		}
		return &Neg{X: x}
	case *Binary:
		l := simplifyExpr(n.L)
		r := simplifyExpr(n.R)
		ln, lIsNum := l.(*Number)
		rn, rIsNum := r.(*Number)
		switch n.Op {
		case '+':
			if lIsNum && ln.Val.Sign() == 0 {
				return r
			}
			if rIsNum && rn.Val.Sign() == 0 {
				return l
			}
			if lIsNum && rIsNum {
				return &Number{Val: new(big.Rat).Add(ln.Val, rn.Val)}
			}
		case '-':
			if rIsNum && rn.Val.Sign() == 0 {
				return l
			}
			if lIsNum && rIsNum {
				return &Number{Val: new(big.Rat).Sub(ln.Val, rn.Val)}
			}
		case '*':
			if lIsNum && ln.Val.Sign() == 0 || rIsNum && rn.Val.Sign() == 0 {
				return newInt(0)
			}
			if lIsNum && ln.Val.Cmp(big.NewRat(1, 1)) == 0 {
				return r
			}
			if rIsNum && rn.Val.Cmp(big.NewRat(1, 1)) == 0 {
				return l
			}
			if lIsNum && rIsNum {
				return &Number{Val: new(big.Rat).Mul(ln.Val, rn.Val)}
			}
			// Normalize constants to the left for tight rendering.
			if rIsNum && !lIsNum {
				return &Binary{Op: '*', L: r, R: l}
			}
		case '^':
			if rIsNum && rn.Val.Cmp(big.NewRat(1, 1)) == 0 {
				return l
			}
			if rIsNum && rn.Val.Sign() == 0 {
				return newInt(1)
			}
		case '/':
			if rIsNum && rn.Val.Cmp(big.NewRat(1, 1)) == 0 {
				return l
			}
		}
		return &Binary{Op: n.Op, L: l, R: r}
	}
	return e
}

// detectVariable finds the variable of differentiation/integration named
// in the text: "d/dt", "with respect to t".
func detectVariable(text string) string {
	if m := respectToRe.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1])
	}
	if m := derivativeMarkerRe.FindStringSubmatch(text); m != nil && m[1] != "" {
		return strings.ToLower(m[1])
	}
	return ""
}

// stripCalculusMarkers removes operation words so they do not pollute
// expression extraction ("d/dx" would otherwise parse as d/d·x).
func stripCalculusMarkers(text string) string {
	text = derivativeMarkerRe.ReplaceAllString(text, " ")
	text = integralMarkerRe.ReplaceAllString(text, " ")
	text = respectToRe.ReplaceAllString(text, " ")
	return text
}

func sortedDegrees(p Poly) []int {
	var ds []int
	for d, c := range p {
		if c.Sign() != 0 {
			ds = append(ds, d)
		}
	}
	for i := 1; i < len(ds); i++ {
		for j := i; j > 0 && ds[j] > ds[j-1]; j-- {
			ds[j], ds[j-1] = ds[j-1], ds[j]
		}
	}
	return ds
}
