// Package problem defines the shared data model flowing through the
// classify → solve → submit pipeline.
package problem

// Domain is the mathematical category assigned to a problem.
type Domain string

const (
	DomainAlgebra      Domain = "algebra"
	DomainTrigonometry Domain = "trigonometry"
	DomainGeometry     Domain = "geometry"
	DomainCalculus     Domain = "calculus"
	DomainWordProblem  Domain = "word_problem"
	DomainUnknown      Domain = "unknown"
)

// Problem is one question pulled from an assignment.
type Problem struct {
	// ID identifies the problem within its assignment.
	ID string

	// RawText is the problem statement. Always present before
	// classification; for image-delivered problems it is the OCR output.
	RawText string

	// ImageRef points at the problem image when the source delivered one.
	// Empty for text-only problems.
	ImageRef string

	// Domain is assigned by the classifier. DomainUnknown until classified.
	Domain Domain

	// OCRConfidence is the extraction confidence (0–1) when RawText came
	// from OCR, or 1 for text delivered directly.
	OCRConfidence float64
}

// Step is one human-readable derivation move within a solution.
type Step struct {
	Description string
	Expression  string
	Result      string
}

// Solution is the typed output of a solve attempt.
type Solution struct {
	ProblemID string
	Domain    Domain

	// Steps is the ordered derivation. Populated only when the solver ran
	// with steps enabled; solving logic never branches on it for
	// correctness, only for materialization.
	Steps []Step

	// FinalAnswer is always present on success, formatted for submission.
	FinalAnswer string

	// AltAnswers holds other acceptable forms (e.g. the second quadratic
	// root) in submission order.
	AltAnswers []string

	// Confidence is a 0–1 heuristic, meaningful on word-problem and
	// OCR-influenced paths. 1 for exact symbolic results.
	Confidence float64
}
