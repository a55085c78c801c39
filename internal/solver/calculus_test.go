package solver

import (
	"errors"
	"testing"

	"github.com/abhisek/mathpilot/internal/problem"
)

func TestSolveCalculusDerivative(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Find the derivative of x^2 + 3x", "2x + 3"},
		{"Differentiate 4x^3 - 2x + 1", "12x^2 - 2"},
		{"Find the derivative of 7", "0"},
		{"Find d/dt of t^2", "2t"},
		{"Find the derivative of y^2 + y with respect to y", "2y + 1"},
	}

	for _, tt := range tests {
		sol, err := solveCalculus(tt.text, false)
		if err != nil {
			t.Errorf("solveCalculus(%q) error: %v", tt.text, err)
			continue
		}
		if sol.FinalAnswer != tt.want {
			t.Errorf("solveCalculus(%q) = %q, want %q", tt.text, sol.FinalAnswer, tt.want)
		}
	}
}

func TestSolveCalculusDerivativeNonPolynomial(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Find the derivative of sin(x)", "cos(x)"},
		{"Differentiate sin(2x)", "2cos(2x)"},
	}

	for _, tt := range tests {
		sol, err := solveCalculus(tt.text, false)
		if err != nil {
			t.Errorf("solveCalculus(%q) error: %v", tt.text, err)
			continue
		}
		if sol.FinalAnswer != tt.want {
			t.Errorf("solveCalculus(%q) = %q, want %q", tt.text, sol.FinalAnswer, tt.want)
		}
	}
}

func TestSolveCalculusIntegral(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Integrate x^2", "1/3x^3 + C"},
		{"Find the integral of 2x + 3 with respect to x", "x^2 + 3x + C"},
		{"Find the antiderivative of 5", "5x + C"},
	}

	for _, tt := range tests {
		sol, err := solveCalculus(tt.text, false)
		if err != nil {
			t.Errorf("solveCalculus(%q) error: %v", tt.text, err)
			continue
		}
		if sol.FinalAnswer != tt.want {
			t.Errorf("solveCalculus(%q) = %q, want %q", tt.text, sol.FinalAnswer, tt.want)
		}
	}
}

func TestSolveCalculusIntegralNonPolynomial(t *testing.T) {
	_, err := solveCalculus("Integrate sin(2x)", false)
	var ue *problem.UnsolvableError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want UnsolvableError", err)
	}
}

func TestSolveCalculusSteps(t *testing.T) {
	sol, err := solveCalculus("Find the derivative of x^2 + 3x", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(sol.Steps) < 3 {
		t.Fatalf("expected per-term power rule steps, got %d", len(sol.Steps))
	}

	bare, err := solveCalculus("Find the derivative of x^2 + 3x", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(bare.Steps) != 0 {
		t.Errorf("expected no steps, got %d", len(bare.Steps))
	}
	if bare.FinalAnswer != sol.FinalAnswer {
		t.Errorf("final answer differs with steps enabled: %q vs %q", sol.FinalAnswer, bare.FinalAnswer)
	}
}

func TestSolveCalculusNoExpression(t *testing.T) {
	_, err := solveCalculus("Find the derivative", false)
	var ue *problem.UnsolvableError
	if !errors.As(err, &ue) {
		t.Fatalf("error = %v, want UnsolvableError", err)
	}
}
