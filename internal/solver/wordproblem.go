package solver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abhisek/mathpilot/internal/problem"
)

// relation is a keyword rule mapping natural language to an arithmetic
// operation. Keywords match whole words only, so "each" never fires
// inside "teacher" or "per" inside "paper".
type relation struct {
	keyword string
	op      byte
	// swap reverses operand order: "5 less than 12" means 12 - 5.
	swap bool
	// implicitFactor supplies the second operand when the phrase itself
	// carries one ("twice", "double").
	implicitFactor string
}

var relations = []relation{
	{keyword: "less than", op: '-', swap: true},
	{keyword: "fewer than", op: '-', swap: true},
	{keyword: "more than", op: '+'},
	{keyword: "increased by", op: '+'},
	{keyword: "decreased by", op: '-'},
	{keyword: "divided by", op: '/'},
	{keyword: "multiplied by", op: '*'},
	{keyword: "sum", op: '+'},
	{keyword: "plus", op: '+'},
	{keyword: "total", op: '+'},
	{keyword: "altogether", op: '+'},
	{keyword: "together", op: '+'},
	{keyword: "combined", op: '+'},
	{keyword: "difference", op: '-'},
	{keyword: "minus", op: '-'},
	{keyword: "subtract", op: '-'},
	{keyword: "take away", op: '-'},
	{keyword: "remain", op: '-'},
	{keyword: "left", op: '-'},
	{keyword: "product", op: '*'},
	{keyword: "times", op: '*'},
	{keyword: "twice", op: '*', implicitFactor: "2"},
	{keyword: "double", op: '*', implicitFactor: "2"},
	{keyword: "triple", op: '*', implicitFactor: "3"},
	{keyword: "quotient", op: '/'},
	{keyword: "ratio", op: '/'},
	{keyword: "per", op: '/'},
	{keyword: "rate", op: '/'},
	{keyword: "split", op: '/'},
	{keyword: "share", op: '/'},
	{keyword: "each", op: '/'},
}

var wordNumberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// relationRes holds one word-boundary pattern per relation, allowing
// simple inflections ("remains", "remaining", "shared").
var relationRes = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(relations))
	for i, r := range relations {
		words := strings.ReplaceAll(regexp.QuoteMeta(r.keyword), " ", `\s+`)
		res[i] = regexp.MustCompile(`\b` + words + `(?:s|es|d|ed|ing)?\b`)
	}
	return res
}()

// solveWordProblem extracts numeric entities and a relational keyword,
// constructs a candidate equation, and delegates it to the algebra
// solver. The confidence score reflects extraction certainty; low
// confidence never blocks the attempt.
func solveWordProblem(text string, withSteps bool) (*problem.Solution, error) {
	lower := strings.ToLower(text)
	numbers := wordNumberRe.FindAllString(lower, -1)
	if len(numbers) == 0 {
		return nil, &problem.UnsolvableError{Domain: problem.DomainWordProblem, Reason: "no numeric entities found"}
	}

	rel, hasRel := matchRelation(lower)

	var a, b string
	confidence := 0.0
	switch {
	case hasRel && rel.implicitFactor != "":
		a, b = numbers[0], rel.implicitFactor
		confidence = 0.85
		if len(numbers) > 1 {
			confidence = 0.6
		}
	case hasRel && len(numbers) >= 2:
		a, b = numbers[0], numbers[1]
		confidence = 0.9
		if len(numbers) > 2 {
			confidence = 0.6
		}
	case !hasRel && len(numbers) >= 2:
		// No keyword matched; a sum is the least surprising guess.
		rel = relation{keyword: "(assumed sum)", op: '+'}
		a, b = numbers[0], numbers[1]
		confidence = 0.4
	default:
		return nil, &problem.UnsolvableError{
			Domain: problem.DomainWordProblem,
			Reason: "could not extract enough entities to build an equation",
		}
	}

	if rel.swap {
		a, b = b, a
	}

	equation := fmt.Sprintf("x = %s %c %s", a, rel.op, b)

	steps := stepList{enabled: withSteps}
	steps.add("Extract numeric entities", strings.Join(numbers, ", "), "")
	steps.add(fmt.Sprintf("Relational keyword %q implies %q", rel.keyword, string(rel.op)), equation, "")

	sol, err := solveEquation(equation, withSteps)
	if err != nil {
		return nil, err
	}

	sol.Domain = problem.DomainWordProblem
	sol.Confidence = confidence
	sol.Steps = append(steps.steps, sol.Steps...)
	return sol, nil
}

func matchRelation(lower string) (relation, bool) {
	bestIdx := -1
	var best relation
	for i, r := range relations {
		loc := relationRes[i].FindStringIndex(lower)
		if loc == nil {
			continue
		}
		// Earlier keyword occurrence wins; the relation list order breaks
		// ties so multi-word phrases match before their substrings.
		if bestIdx == -1 || loc[0] < bestIdx {
			bestIdx = loc[0]
			best = r
		}
	}
	return best, bestIdx >= 0
}
