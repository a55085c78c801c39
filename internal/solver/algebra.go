package solver

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/abhisek/mathpilot/internal/problem"
)

// solveAlgebra handles equations and plain expressions. Equations are
// solved exactly over the rationals where a closed form exists (linear,
// quadratic with rational roots); everything else falls back to a
// deterministic numeric approximation.
func solveAlgebra(text string, withSteps bool) (*problem.Solution, error) {
	mathText := ExtractMath(text)
	if mathText == "" {
		return nil, &problem.UnsolvableError{Domain: problem.DomainAlgebra, Reason: "no expression found in problem text"}
	}

	if strings.Contains(mathText, "=") {
		return solveEquation(mathText, withSteps)
	}
	return simplifyExpression(mathText, withSteps)
}

// solveEquation solves a single-variable polynomial equation.
func solveEquation(eqText string, withSteps bool) (*problem.Solution, error) {
	lhs, rhs, err := ParseEquation(eqText)
	if err != nil {
		return nil, err
	}

	varName := unknownIn(lhs, rhs)
	if varName == "" {
		return nil, &problem.UnsolvableError{Domain: problem.DomainAlgebra, Reason: "no unknown to solve for"}
	}

	lp, err := PolyFromExpr(lhs, varName)
	if err != nil {
		return nil, &problem.UnsolvableError{Domain: problem.DomainAlgebra, Reason: err.Error()}
	}
	rp, err := PolyFromExpr(rhs, varName)
	if err != nil {
		return nil, &problem.UnsolvableError{Domain: problem.DomainAlgebra, Reason: err.Error()}
	}

	// Move everything to the left: p(x) = 0.
	p := lp.Add(rp.Scale(big.NewRat(-1, 1)))

	sol := &problem.Solution{Domain: problem.DomainAlgebra, Confidence: 1}
	steps := stepList{enabled: withSteps}
	steps.add("Original equation", eqText, "")
	steps.add("Collect all terms on one side", p.String(varName)+" = 0", "")

	switch p.Degree() {
	case 0:
		c, _ := p.Constant()
		if c.Sign() == 0 {
			sol.FinalAnswer = "all values of " + varName
		} else {
			return nil, &problem.UnsolvableError{Domain: problem.DomainAlgebra, Reason: "equation has no solution"}
		}
	case 1:
		root := solveLinear(p, varName, &steps)
		sol.FinalAnswer = fmt.Sprintf("%s = %s", varName, root)
	case 2:
		answers, err := solveQuadratic(p, varName, &steps)
		if err != nil {
			return nil, err
		}
		sol.FinalAnswer = answers[0]
		sol.AltAnswers = answers[1:]
	default:
		root, ok := newtonRoot(p)
		if !ok {
			return nil, &problem.UnsolvableError{Domain: problem.DomainAlgebra, Reason: fmt.Sprintf("no real root found for degree-%d equation", p.Degree())}
		}
		steps.add(fmt.Sprintf("No closed form for degree %d; approximate numerically", p.Degree()),
			p.String(varName)+" = 0", fmt.Sprintf("%s ≈ %s", varName, formatAnswer(root)))
		sol.FinalAnswer = fmt.Sprintf("%s = %s", varName, formatAnswer(root))
		sol.Confidence = 0.9
	}

	sol.Steps = steps.steps
	return sol, nil
}

// solveLinear isolates the unknown in a*x + b = 0 exactly.
func solveLinear(p Poly, varName string, steps *stepList) string {
	a, b := p.Coeff(1), p.Coeff(0)
	negB := new(big.Rat).Neg(b)
	steps.add("Isolate the "+varName+" term",
		fmt.Sprintf("%s%s = %s", coeffPrefix(a), varName, ratString(negB)), "")

	root := new(big.Rat).Quo(negB, a)
	steps.add("Divide both sides by "+ratString(a),
		fmt.Sprintf("%s = %s / %s", varName, ratString(negB), ratString(a)),
		fmt.Sprintf("%s = %s", varName, ratString(root)))
	return ratString(root)
}

// solveQuadratic applies the quadratic formula, keeping exact roots when
// the discriminant is a perfect rational square.
func solveQuadratic(p Poly, varName string, steps *stepList) ([]string, error) {
	a, b, c := p.Coeff(2), p.Coeff(1), p.Coeff(0)

	// D = b² − 4ac
	disc := new(big.Rat).Mul(b, b)
	fourAC := new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c))
	disc.Sub(disc, fourAC)

	steps.add("Apply the quadratic formula",
		fmt.Sprintf("%s = (-b ± √(b² - 4ac)) / 2a, with a = %s, b = %s, c = %s",
			varName, ratString(a), ratString(b), ratString(c)), "")
	steps.add("Compute the discriminant", fmt.Sprintf("b² - 4ac = %s", ratString(disc)), "")

	if disc.Sign() < 0 {
		return nil, &problem.UnsolvableError{Domain: problem.DomainAlgebra, Reason: "negative discriminant: no real solutions"}
	}

	if sq, exact := ratSqrt(disc); exact {
		twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
		negB := new(big.Rat).Neg(b)
		r1 := new(big.Rat).Quo(new(big.Rat).Sub(negB, sq), twoA)
		r2 := new(big.Rat).Quo(new(big.Rat).Add(negB, sq), twoA)
		if r1.Cmp(r2) > 0 {
			r1, r2 = r2, r1
		}
		if r1.Cmp(r2) == 0 {
			steps.add("Single repeated root", fmt.Sprintf("%s = %s", varName, ratString(r1)), "")
			return []string{fmt.Sprintf("%s = %s", varName, ratString(r1))}, nil
		}
		steps.add("Two exact roots",
			fmt.Sprintf("%s = %s or %s = %s", varName, ratString(r1), varName, ratString(r2)), "")
		return []string{
			fmt.Sprintf("%s = %s", varName, ratString(r1)),
			fmt.Sprintf("%s = %s", varName, ratString(r2)),
		}, nil
	}

	// Irrational discriminant: numeric roots.
	af, _ := a.Float64()
	bf, _ := b.Float64()
	df, _ := disc.Float64()
	sq := math.Sqrt(df)
	r1 := (-bf - sq) / (2 * af)
	r2 := (-bf + sq) / (2 * af)
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	steps.add("Discriminant is not a perfect square; approximate numerically",
		fmt.Sprintf("√%s ≈ %s", ratString(disc), formatAnswer(sq)),
		fmt.Sprintf("%s ≈ %s or %s ≈ %s", varName, formatAnswer(r1), varName, formatAnswer(r2)))
	return []string{
		fmt.Sprintf("%s = %s", varName, formatAnswer(r1)),
		fmt.Sprintf("%s = %s", varName, formatAnswer(r2)),
	}, nil
}

// simplifyExpression combines like terms in a plain expression, or
// evaluates it when it is constant.
func simplifyExpression(mathText string, withSteps bool) (*problem.Solution, error) {
	e, err := Parse(mathText)
	if err != nil {
		return nil, err
	}

	sol := &problem.Solution{Domain: problem.DomainAlgebra, Confidence: 1}
	steps := stepList{enabled: withSteps}
	steps.add("Parse expression", e.String(), "")

	varName := unknownIn(e)
	if varName == "" {
		v, err := Eval(e, constants())
		if err != nil {
			return nil, &problem.UnsolvableError{Domain: problem.DomainAlgebra, Reason: err.Error()}
		}
		steps.add("Evaluate", mathText, formatAnswer(v))
		sol.FinalAnswer = formatAnswer(v)
		sol.Steps = steps.steps
		return sol, nil
	}

	p, err := PolyFromExpr(e, varName)
	if err != nil {
		return nil, &problem.UnsolvableError{Domain: problem.DomainAlgebra, Reason: err.Error()}
	}
	simplified := p.String(varName)
	steps.add("Combine like terms", simplified, "")
	sol.FinalAnswer = simplified
	sol.Steps = steps.steps
	return sol, nil
}

// unknownIn picks the variable to solve for: the first variable that is
// not a named constant, preferring x when present.
func unknownIn(exprs ...Expr) string {
	var all []string
	seen := map[string]bool{}
	for _, e := range exprs {
		for _, v := range Variables(e) {
			if v == "π" || v == "e" || seen[v] {
				continue
			}
			seen[v] = true
			all = append(all, v)
		}
	}
	if len(all) == 0 {
		return ""
	}
	if seen["x"] {
		return "x"
	}
	return all[0]
}

// ratSqrt returns the exact square root of r when both numerator and
// denominator are perfect squares.
func ratSqrt(r *big.Rat) (*big.Rat, bool) {
	if r.Sign() < 0 {
		return nil, false
	}
	num, den := r.Num(), r.Denom()
	sn := new(big.Int).Sqrt(num)
	sd := new(big.Int).Sqrt(den)
	if new(big.Int).Mul(sn, sn).Cmp(num) != 0 || new(big.Int).Mul(sd, sd).Cmp(den) != 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(sn, sd), true
}

// newtonRoot finds one real root of p deterministically: Newton's method
// from a fixed ladder of seeds, smallest converged root wins.
func newtonRoot(p Poly) (float64, bool) {
	d := p.Derivative()
	var roots []float64
	for seed := -10.0; seed <= 10.0; seed += 1.0 {
		x := seed
		converged := false
		for i := 0; i < 200; i++ {
			fx := p.EvalAt(x)
			if math.Abs(fx) < 1e-12 {
				converged = true
				break
			}
			dx := d.EvalAt(x)
			if dx == 0 || math.IsNaN(dx) || math.IsInf(dx, 0) {
				break
			}
			x -= fx / dx
		}
		if converged && !math.IsNaN(x) && !math.IsInf(x, 0) {
			roots = append(roots, x)
		}
	}
	if len(roots) == 0 {
		return 0, false
	}
	sort.Float64s(roots)
	// Snap near-integer roots so output is stable across seeds.
	r := roots[0]
	if snapped := math.Round(r); math.Abs(p.EvalAt(snapped)) < 1e-9 && math.Abs(r-snapped) < 1e-6 {
		r = snapped
	}
	return r, true
}

func coeffPrefix(a *big.Rat) string {
	if a.Cmp(big.NewRat(1, 1)) == 0 {
		return ""
	}
	if a.Cmp(big.NewRat(-1, 1)) == 0 {
		return "-"
	}
	return ratString(a)
}

// stepList accumulates derivation steps only when enabled, so solving
// logic stays identical with and without step materialization.
type stepList struct {
	enabled bool
	steps   []problem.Step
}

func (s *stepList) add(description, expression, result string) {
	if !s.enabled {
		return
	}
	s.steps = append(s.steps, problem.Step{
		Description: description,
		Expression:  expression,
		Result:      result,
	})
}
