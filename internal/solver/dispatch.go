package solver

import (
	"errors"

	"github.com/abhisek/mathpilot/internal/problem"
)

// Solve routes a classified problem to its domain solver and normalizes
// the result. The domain switch is closed and exhaustive: adding a
// domain means adding a case here, never falling through a lookup table.
//
// ethicalMode controls step materialization only — the final answer is
// identical either way.
func Solve(p problem.Problem, ethicalMode bool) (*problem.Solution, error) {
	var sol *problem.Solution
	var err error

	switch p.Domain {
	case problem.DomainAlgebra:
		sol, err = solveAlgebra(p.RawText, ethicalMode)
	case problem.DomainTrigonometry:
		sol, err = solveTrig(p.RawText, ethicalMode)
	case problem.DomainGeometry:
		sol, err = solveGeometry(p.RawText, ethicalMode)
	case problem.DomainCalculus:
		sol, err = solveCalculus(p.RawText, ethicalMode)
	case problem.DomainWordProblem:
		sol, err = solveWordProblem(p.RawText, ethicalMode)
	case problem.DomainUnknown:
		return nil, &problem.UnsolvableError{Domain: p.Domain, Reason: "problem was never classified"}
	default:
		return nil, &problem.UnsolvableError{Domain: p.Domain, Reason: "no solver for domain"}
	}

	if err != nil {
		return nil, normalizeError(p.Domain, err)
	}

	sol.ProblemID = p.ID
	sol.Domain = p.Domain

	// OCR-influenced paths can never be more certain than the extraction.
	if p.OCRConfidence > 0 && p.OCRConfidence < sol.Confidence {
		sol.Confidence = p.OCRConfidence
	}
	return sol, nil
}

// normalizeError guarantees callers only ever see the two typed solver
// failures: ParseError or UnsolvableError.
func normalizeError(domain problem.Domain, err error) error {
	var pe *problem.ParseError
	var ue *problem.UnsolvableError
	if errors.As(err, &pe) || errors.As(err, &ue) {
		return err
	}
	return &problem.UnsolvableError{Domain: domain, Reason: err.Error()}
}
