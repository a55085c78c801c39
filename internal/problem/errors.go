package problem

import "fmt"

// ParseError indicates problem text could not be parsed at all — empty
// input, or an expression the tokenizer rejects. Fatal for the problem,
// never for the session.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("parse: %s", e.Reason)
	}
	return fmt.Sprintf("parse %q: %s", truncate(e.Text, 40), e.Reason)
}

// UnsolvableError indicates the matched solver could not produce an
// answer. Non-fatal: the problem is skipped and the session continues.
type UnsolvableError struct {
	Domain Domain
	Reason string
}

func (e *UnsolvableError) Error() string {
	return fmt.Sprintf("unsolvable %s problem: %s", e.Domain, e.Reason)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
