package solver

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhisek/mathpilot/internal/problem"
)

var (
	numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

	labeledNumRe = regexp.MustCompile(`(?i)\b(radius|diameter|base|height|width|length|side|legs?|hypotenuse)\b(?:\s+(?:of|is|are|=|:)?\s*)(-?\d+(?:\.\d+)?)`)
)

// shapeProblem carries the parameters lifted out of a geometry question.
type shapeProblem struct {
	text    string
	labeled map[string][]float64
	numbers []float64
}

// solveGeometry resolves a named shape and formula, substitutes the
// extracted parameters, and computes. Missing parameters are an
// UnsolvableError, not a guess.
func solveGeometry(text string, withSteps bool) (*problem.Solution, error) {
	sp := extractShapeParams(text)
	lower := strings.ToLower(text)

	steps := stepList{enabled: withSteps}

	var answer string
	var alt []string
	var err error
	switch {
	case strings.Contains(lower, "circle") || sp.has("radius") || sp.has("diameter"):
		answer, alt, err = solveCircle(sp, lower, &steps)
	case strings.Contains(lower, "pythagor") || strings.Contains(lower, "hypotenuse") ||
		(strings.Contains(lower, "right triangle") && strings.Contains(lower, "leg")):
		answer, err = solvePythagoras(sp, lower, &steps)
	case strings.Contains(lower, "triangle"):
		answer, err = solveTriangle(sp, lower, &steps)
	case strings.Contains(lower, "rectangle") || strings.Contains(lower, "square"):
		answer, err = solveRectangle(sp, lower, &steps)
	default:
		err = fmt.Errorf("no recognizable shape")
	}
	if err != nil {
		return nil, &problem.UnsolvableError{Domain: problem.DomainGeometry, Reason: err.Error()}
	}

	return &problem.Solution{
		Domain:      problem.DomainGeometry,
		FinalAnswer: answer,
		AltAnswers:  alt,
		Confidence:  1,
		Steps:       steps.steps,
	}, nil
}

func solveCircle(sp shapeProblem, lower string, steps *stepList) (string, []string, error) {
	r, ok := sp.first("radius")
	if !ok {
		if d, dok := sp.first("diameter"); dok {
			r = d / 2
			steps.add("Radius from diameter", fmt.Sprintf("r = %s / 2", fmtNum(d)), "r = "+fmtNum(r))
			ok = true
		}
	}
	if !ok {
		// A lone number in a circle question is taken as the radius.
		if len(sp.numbers) == 1 {
			r, ok = sp.numbers[0], true
		}
	}
	if !ok {
		return "", nil, fmt.Errorf("circle radius could not be extracted")
	}

	if strings.Contains(lower, "circumference") || strings.Contains(lower, "perimeter") {
		c := 2 * math.Pi * r
		steps.add("Circumference formula", "C = 2πr", "")
		steps.add("Substitute", fmt.Sprintf("C = 2π·%s", fmtNum(r)), "C = "+formatAnswer(c))
		return formatAnswer(c), []string{fmt.Sprintf("%sπ", fmtNum(2*r))}, nil
	}

	area := math.Pi * r * r
	steps.add("Area formula", "A = πr²", "")
	steps.add("Substitute", fmt.Sprintf("A = π·%s²", fmtNum(r)), "A = "+formatAnswer(area))
	return formatAnswer(area), []string{fmt.Sprintf("%sπ", fmtNum(r*r))}, nil
}

func solvePythagoras(sp shapeProblem, lower string, steps *stepList) (string, error) {
	legs := sp.labeled["leg"]
	hyp, hasHyp := sp.first("hypotenuse")

	// Unlabeled fallback: two bare numbers are the two legs.
	if len(legs) < 2 && !hasHyp && len(sp.numbers) >= 2 {
		legs = sp.numbers[:2]
	}

	// A labeled hypotenuse with no labeled leg: the first other number
	// is the leg ("hypotenuse 5 and one side 3").
	if hasHyp && len(legs) == 0 {
		for _, n := range sp.numbers {
			if n != hyp {
				legs = append(legs, n)
				break
			}
		}
	}

	switch {
	case len(legs) >= 2:
		a, b := legs[0], legs[1]
		c := math.Sqrt(a*a + b*b)
		steps.add("Pythagorean relation", "c² = a² + b²", "")
		steps.add("Substitute", fmt.Sprintf("c² = %s² + %s² = %s", fmtNum(a), fmtNum(b), fmtNum(a*a+b*b)), "")
		steps.add("Take the square root", fmt.Sprintf("c = √%s", fmtNum(a*a+b*b)), "c = "+formatAnswer(c))
		return formatAnswer(c), nil
	case hasHyp && len(legs) == 1:
		a := legs[0]
		if hyp <= a {
			return "", fmt.Errorf("hypotenuse %s not longer than leg %s", fmtNum(hyp), fmtNum(a))
		}
		b := math.Sqrt(hyp*hyp - a*a)
		steps.add("Pythagorean relation", "b² = c² - a²", "")
		steps.add("Substitute", fmt.Sprintf("b² = %s² - %s² = %s", fmtNum(hyp), fmtNum(a), fmtNum(hyp*hyp-a*a)), "")
		steps.add("Take the square root", fmt.Sprintf("b = √%s", fmtNum(hyp*hyp-a*a)), "b = "+formatAnswer(b))
		return formatAnswer(b), nil
	}
	return "", fmt.Errorf("need two sides of the right triangle")
}

func solveTriangle(sp shapeProblem, lower string, steps *stepList) (string, error) {
	wantPerimeter := strings.Contains(lower, "perimeter")

	base, hasBase := sp.first("base")
	height, hasHeight := sp.first("height")
	if !wantPerimeter && hasBase && hasHeight {
		area := base * height / 2
		steps.add("Triangle area formula", "A = ½ · base · height", "")
		steps.add("Substitute", fmt.Sprintf("A = ½ · %s · %s", fmtNum(base), fmtNum(height)), "A = "+formatAnswer(area))
		return formatAnswer(area), nil
	}

	sides := sp.labeled["side"]
	if len(sides) < 3 && len(sp.numbers) >= 3 {
		sides = sp.numbers[:3]
	}
	if len(sides) >= 3 {
		a, b, c := sides[0], sides[1], sides[2]
		if wantPerimeter {
			peri := a + b + c
			steps.add("Perimeter", fmt.Sprintf("P = %s + %s + %s", fmtNum(a), fmtNum(b), fmtNum(c)), "P = "+formatAnswer(peri))
			return formatAnswer(peri), nil
		}
		s := (a + b + c) / 2
		under := s * (s - a) * (s - b) * (s - c)
		if under < 0 {
			return "", fmt.Errorf("sides %s, %s, %s do not form a triangle", fmtNum(a), fmtNum(b), fmtNum(c))
		}
		area := math.Sqrt(under)
		steps.add("Heron's formula", "A = √(s(s-a)(s-b)(s-c)), s = (a+b+c)/2", "")
		steps.add("Semi-perimeter", fmt.Sprintf("s = (%s + %s + %s) / 2", fmtNum(a), fmtNum(b), fmtNum(c)), "s = "+fmtNum(s))
		steps.add("Substitute", fmt.Sprintf("A = √%s", formatAnswer(under)), "A = "+formatAnswer(area))
		return formatAnswer(area), nil
	}

	return "", fmt.Errorf("triangle needs base and height, or three sides")
}

func solveRectangle(sp shapeProblem, lower string, steps *stepList) (string, error) {
	l, hasL := sp.first("length")
	w, hasW := sp.first("width")
	if !hasL || !hasW {
		if s, ok := sp.first("side"); ok && strings.Contains(lower, "square") {
			l, w, hasL, hasW = s, s, true, true
		} else if len(sp.numbers) >= 2 {
			l, w, hasL, hasW = sp.numbers[0], sp.numbers[1], true, true
		} else if len(sp.numbers) == 1 && strings.Contains(lower, "square") {
			l, w, hasL, hasW = sp.numbers[0], sp.numbers[0], true, true
		}
	}
	if !hasL || !hasW {
		return "", fmt.Errorf("rectangle dimensions could not be extracted")
	}

	if strings.Contains(lower, "perimeter") {
		peri := 2 * (l + w)
		steps.add("Perimeter formula", "P = 2(l + w)", "")
		steps.add("Substitute", fmt.Sprintf("P = 2(%s + %s)", fmtNum(l), fmtNum(w)), "P = "+formatAnswer(peri))
		return formatAnswer(peri), nil
	}
	area := l * w
	steps.add("Area formula", "A = l · w", "")
	steps.add("Substitute", fmt.Sprintf("A = %s · %s", fmtNum(l), fmtNum(w)), "A = "+formatAnswer(area))
	return formatAnswer(area), nil
}

// extractShapeParams pulls labeled measurements ("radius 5") and the
// full ordered number list out of the text.
func extractShapeParams(text string) shapeProblem {
	sp := shapeProblem{text: text, labeled: map[string][]float64{}}

	for _, m := range labeledNumRe.FindAllStringSubmatch(text, -1) {
		label := strings.ToLower(m[1])
		if label == "legs" {
			label = "leg"
		}
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		sp.labeled[label] = append(sp.labeled[label], v)
	}

	for _, m := range numberRe.FindAllString(text, -1) {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			sp.numbers = append(sp.numbers, v)
		}
	}
	return sp
}

func (sp shapeProblem) has(label string) bool {
	return len(sp.labeled[label]) > 0
}

func (sp shapeProblem) first(label string) (float64, bool) {
	if vs := sp.labeled[label]; len(vs) > 0 {
		return vs[0], true
	}
	return 0, false
}

func fmtNum(v float64) string { return formatAnswer(v) }
