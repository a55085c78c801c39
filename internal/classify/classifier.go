// Package classify maps raw problem text to a mathematical domain using
// an ordered table of pattern rules.
package classify

import (
	"regexp"
	"strings"

	"github.com/abhisek/mathpilot/internal/problem"
)

// Rule is one classification pattern. Lower Priority values are checked
// first; among equal priorities the rule whose match covers the longest
// span of the input wins.
type Rule struct {
	Name     string
	Priority int
	Pattern  *regexp.Regexp
	Domain   problem.Domain
}

// Classifier holds the rule table, sorted by priority at construction.
type Classifier struct {
	rules []Rule
}

// DefaultRules returns the built-in rule table.
// Calculus outranks trigonometry so "derivative of sin(x)" routes to the
// calculus solver; geometry outranks the equation rule so "area of a
// circle with radius r = 5" is not mistaken for plain algebra.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "calculus-derivative",
			Priority: 10,
			Pattern:  regexp.MustCompile(`(?i)derivative|differentiate|d/d[a-z]`),
			Domain:   problem.DomainCalculus,
		},
		{
			Name:     "calculus-integral",
			Priority: 10,
			Pattern:  regexp.MustCompile(`(?i)integra(l|te)|antiderivative|∫`),
			Domain:   problem.DomainCalculus,
		},
		{
			Name:     "geometry-shape",
			Priority: 20,
			Pattern:  regexp.MustCompile(`(?i)triangle|circle|rectangle|square(?:\s+with)|pythagor|hypotenuse|radius|diameter|perimeter|circumference|\barea\b`),
			Domain:   problem.DomainGeometry,
		},
		{
			Name:     "trig-function",
			Priority: 30,
			Pattern:  regexp.MustCompile(`(?i)\b(sin|cos|tan|sine|cosine|tangent)\b`),
			Domain:   problem.DomainTrigonometry,
		},
		{
			Name:     "algebra-equation",
			Priority: 40,
			Pattern:  regexp.MustCompile(`[0-9a-z)\s]=[\s(0-9a-z-]`),
			Domain:   problem.DomainAlgebra,
		},
		{
			Name:     "algebra-expression",
			Priority: 50,
			Pattern:  regexp.MustCompile(`(?i)(simplify|expand|factor|solve)\b|[0-9]\s*[a-z]\b|\^`),
			Domain:   problem.DomainAlgebra,
		},
	}
}

// New creates a Classifier from the given rules. Nil rules means the
// default table.
func New(rules []Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	// Stable insertion sort keeps declaration order within a priority band.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Priority < sorted[j-1].Priority; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return &Classifier{rules: sorted}
}

// Classify assigns a domain to rawText.
//
// The first matching rule in priority order wins; within one priority
// band the rule with the longest matched span wins. Text matching no
// rule is a word problem — natural language is the fallback, never
// DomainUnknown. Empty (or all-whitespace) text fails with ParseError.
func (c *Classifier) Classify(rawText string) (problem.Domain, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return problem.DomainUnknown, &problem.ParseError{Reason: "empty problem text"}
	}

	best := Rule{}
	bestSpan := -1
	for _, r := range c.rules {
		if bestSpan >= 0 && r.Priority > best.Priority {
			break
		}
		loc := r.Pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		span := loc[1] - loc[0]
		if span > bestSpan {
			best = r
			bestSpan = span
		}
	}
	if bestSpan >= 0 {
		return best.Domain, nil
	}

	return problem.DomainWordProblem, nil
}
