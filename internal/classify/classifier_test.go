package classify

import (
	"errors"
	"regexp"
	"testing"

	"github.com/abhisek/mathpilot/internal/problem"
)

func TestClassify(t *testing.T) {
	c := New(nil)

	tests := []struct {
		text string
		want problem.Domain
	}{
		{"Solve 2x + 3 = 7 for x", problem.DomainAlgebra},
		{"Find sin(30 degrees)", problem.DomainTrigonometry},
		{"Find the area of a circle with radius 5", problem.DomainGeometry},
		{"Find the derivative of x^2 + 3x", problem.DomainCalculus},
		{"Integrate 3x^2 with respect to x", problem.DomainCalculus},
		{"A right triangle has legs 3 and 4. Find the hypotenuse.", problem.DomainGeometry},
		{"Simplify 2x + 3x", problem.DomainAlgebra},
		{"What is the sum of 12 and 30?", problem.DomainWordProblem},
		{"Tom has twice as many marbles as Jane. Together they have 18.", problem.DomainWordProblem},
	}

	for _, tt := range tests {
		got, err := c.Classify(tt.text)
		if err != nil {
			t.Errorf("Classify(%q) unexpected error: %v", tt.text, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestClassifyEmptyText(t *testing.T) {
	c := New(nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := c.Classify(text)
		var pe *problem.ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Classify(%q) error = %v, want ParseError", text, err)
		}
	}
}

// The derivative rule must win over the trig rule for mixed text, since
// calculus carries higher priority.
func TestClassifyPriorityOrder(t *testing.T) {
	c := New(nil)

	got, err := c.Classify("Find the derivative of sin(x)")
	if err != nil {
		t.Fatal(err)
	}
	if got != problem.DomainCalculus {
		t.Errorf("got %s, want calculus", got)
	}
}

// Within one priority band the longer matched span wins.
func TestClassifyLongestSpanTiebreak(t *testing.T) {
	rules := []Rule{
		{Name: "short", Priority: 1, Pattern: regexp.MustCompile(`circle`), Domain: problem.DomainGeometry},
		{Name: "long", Priority: 1, Pattern: regexp.MustCompile(`circle with radius`), Domain: problem.DomainTrigonometry},
	}
	c := New(rules)

	got, err := c.Classify("a circle with radius 5")
	if err != nil {
		t.Fatal(err)
	}
	if got != problem.DomainTrigonometry {
		t.Errorf("got %s, want the longer rule's domain", got)
	}
}

func TestClassifyNoMatchFallsBackToWordProblem(t *testing.T) {
	c := New(nil)

	got, err := c.Classify("apples and oranges at the market")
	if err != nil {
		t.Fatal(err)
	}
	if got != problem.DomainWordProblem {
		t.Errorf("got %s, want word_problem", got)
	}
}
