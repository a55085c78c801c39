package ocr

import (
	"regexp"
	"strings"
)

// Common OCR misreads, fixed before the text reaches classification.
// Digit fixes only fire adjacent to other digits so variable names
// survive untouched.
var (
	oBetweenDigits = regexp.MustCompile(`(\d)[oO](\d)`)
	lBeforeDigit   = regexp.MustCompile(`\b[lI](\d)`)
	lAfterDigit    = regexp.MustCompile(`(\d)[lI]\b`)
	standaloneZ    = regexp.MustCompile(`\bZ\b`)
	sqrtParen      = regexp.MustCompile(`√\s*\(`)
	sqrtBare       = regexp.MustCompile(`√\s*([0-9]+(?:\.[0-9]+)?|[a-zA-Z])`)
	operatorGap    = regexp.MustCompile(`\s*([+*/=])\s*`)
	whitespace     = regexp.MustCompile(`\s+`)
)

// symbolReplacer rewrites unicode math symbols into the ASCII forms the
// expression parser understands.
var symbolReplacer = strings.NewReplacer(
	"×", "*",
	"·", "*",
	"∗", "*",
	"÷", "/",
	"∕", "/",
	"−", "-",
	"–", "-",
	"—", "-",
	"²", "^2",
	"³", "^3",
	"º", "°",
	"˚", "°",
	"**", "^",
)

// NormalizeText cleans one OCR transcription: unicode operators become
// parser-friendly ASCII, digit lookalike misreads (O for 0, l for 1,
// Z for 2) are corrected in numeric context, and whitespace collapses.
func NormalizeText(text string) string {
	text = symbolReplacer.Replace(text)

	text = oBetweenDigits.ReplaceAllString(text, "${1}0${2}")
	text = lBeforeDigit.ReplaceAllString(text, "1${1}")
	text = lAfterDigit.ReplaceAllString(text, "${1}1")
	text = standaloneZ.ReplaceAllString(text, "2")

	// The expression parser wants sqrt(...) with explicit parentheses.
	text = sqrtParen.ReplaceAllString(text, "sqrt(")
	text = sqrtBare.ReplaceAllString(text, "sqrt($1)")

	text = operatorGap.ReplaceAllString(text, " $1 ")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
