package report

import (
	"fmt"
	"strings"

	"github.com/abhisek/mathpilot/internal/problem"
)

// RenderSolution formats one solution for the terminal: the derivation
// steps when present, then the final answer.
func RenderSolution(sol *problem.Solution) string {
	var b strings.Builder

	b.WriteString(styleDim.Render(fmt.Sprintf("domain: %s", sol.Domain)))
	b.WriteByte('\n')

	for i, step := range sol.Steps {
		fmt.Fprintf(&b, "%s %s", styleDim.Render(fmt.Sprintf("%2d.", i+1)), step.Description)
		if step.Expression != "" {
			fmt.Fprintf(&b, ": %s", step.Expression)
		}
		if step.Result != "" {
			fmt.Fprintf(&b, " = %s", step.Result)
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "%s %s\n", styleDone.Render("answer:"), sol.FinalAnswer)
	for _, alt := range sol.AltAnswers {
		fmt.Fprintf(&b, "%s %s\n", styleDim.Render("   also:"), alt)
	}
	if sol.Confidence > 0 && sol.Confidence < 1 {
		b.WriteString(styleDim.Render(fmt.Sprintf("confidence: %.2f", sol.Confidence)))
		b.WriteByte('\n')
	}
	return b.String()
}
