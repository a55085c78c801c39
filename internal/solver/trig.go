package solver

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/abhisek/mathpilot/internal/problem"
)

// degreeMarkerRe detects an explicit degree unit in the problem text.
// Radians are the default unit when no marker is present.
var degreeMarkerRe = regexp.MustCompile(`(?i)°|\bdegrees?\b|\bdeg\b`)

// exactTrigValues holds exact values for standard angles, keyed by
// function and angle in degrees.
var exactTrigValues = map[string]map[int]string{
	"sin": {0: "0", 30: "1/2", 45: "√2/2", 60: "√3/2", 90: "1", 120: "√3/2", 135: "√2/2", 150: "1/2", 180: "0", 270: "-1", 360: "0"},
	"cos": {0: "1", 30: "√3/2", 45: "√2/2", 60: "1/2", 90: "0", 120: "-1/2", 135: "-√2/2", 150: "-√3/2", 180: "-1", 270: "0", 360: "1"},
	"tan": {0: "0", 30: "√3/3", 45: "1", 60: "√3", 135: "-1", 180: "0", 225: "1", 315: "-1", 360: "0"},
}

// solveTrig evaluates a trigonometric expression. Inputs marked in
// degrees are converted to radians before evaluation; the reported
// answer of sin/cos/tan is a ratio either way.
func solveTrig(text string, withSteps bool) (*problem.Solution, error) {
	inDegrees := degreeMarkerRe.MatchString(text)
	cleaned := degreeMarkerRe.ReplaceAllString(text, " ")

	mathText := ExtractMath(cleaned)
	if mathText == "" {
		return nil, &problem.UnsolvableError{Domain: problem.DomainTrigonometry, Reason: "no trigonometric expression found"}
	}
	if strings.Contains(mathText, "=") {
		// Trig equations route through the algebra machinery when the
		// trig part is constant-valued; otherwise they are out of reach.
		return nil, &problem.UnsolvableError{Domain: problem.DomainTrigonometry, Reason: "trigonometric equations are not supported"}
	}

	e, err := Parse(mathText)
	if err != nil {
		return nil, err
	}

	sol := &problem.Solution{Domain: problem.DomainTrigonometry, Confidence: 1}
	steps := stepList{enabled: withSteps}
	steps.add("Parse expression", e.String(), "")

	// Exact table lookup for a single call on a standard angle.
	if call, ok := e.(*Call); ok {
		if exact, angleDeg, ok := exactLookup(call, inDegrees); ok {
			if inDegrees {
				steps.add("Convert to radians",
					fmt.Sprintf("%d° = %d·π/180 rad", angleDeg, angleDeg), "")
			}
			steps.add(fmt.Sprintf("Apply the standard value of %s(%d°)", call.Fn, angleDeg),
				fmt.Sprintf("%s(%d°) = %s", call.Fn, angleDeg, exact), "")
			sol.FinalAnswer = exact
			v, evalErr := evalTrig(e, inDegrees)
			if evalErr == nil {
				sol.AltAnswers = []string{formatAnswer(v)}
			}
			sol.Steps = steps.steps
			return sol, nil
		}
	}

	if inDegrees {
		steps.add("Convert degree inputs to radians", "multiply by π/180", "")
	}
	v, err := evalTrig(e, inDegrees)
	if err != nil {
		return nil, &problem.UnsolvableError{Domain: problem.DomainTrigonometry, Reason: err.Error()}
	}
	steps.add("Evaluate", mathText, formatAnswer(v))
	sol.FinalAnswer = formatAnswer(v)
	sol.Steps = steps.steps
	return sol, nil
}

// exactLookup finds the table value for a call with a constant angle
// argument. The angle is normalized into [0, 360).
func exactLookup(call *Call, inDegrees bool) (value string, angleDeg int, ok bool) {
	table, ok := exactTrigValues[call.Fn]
	if !ok {
		return "", 0, false
	}
	v, err := Eval(call.Arg, constants())
	if err != nil {
		return "", 0, false
	}
	deg := v
	if !inDegrees {
		deg = v * 180 / math.Pi
	}
	rounded := math.Round(deg)
	if math.Abs(deg-rounded) > 1e-9 {
		return "", 0, false
	}
	n := int(rounded)
	n = ((n % 360) + 360) % 360
	exact, ok := table[n]
	return exact, n, ok
}

// evalTrig evaluates numerically, converting function arguments from
// degrees first when the text carried a degree marker.
func evalTrig(e Expr, inDegrees bool) (float64, error) {
	if inDegrees {
		e = convertDegreeArgs(e)
	}
	return Eval(e, constants())
}

// convertDegreeArgs rewrites trig call arguments from degrees to radians.
func convertDegreeArgs(e Expr) Expr {
	switch n := e.(type) {
	case *Neg:
		return &Neg{X: convertDegreeArgs(n.X)}
	case *Binary:
		return &Binary{Op: n.Op, L: convertDegreeArgs(n.L), R: convertDegreeArgs(n.R)}
	case *Call:
		arg := convertDegreeArgs(n.Arg)
		switch n.Fn {
		case "sin", "cos", "tan":
			factor := &Binary{Op: '/', L: &Variable{Name: "π"}, R: newInt(180)}
			return &Call{Fn: n.Fn, Arg: &Binary{Op: '*', L: arg, R: factor}}
		}
		return &Call{Fn: n.Fn, Arg: arg}
	}
	return e
}
