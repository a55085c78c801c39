package solver

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"unicode"

	"github.com/abhisek/mathpilot/internal/problem"
)

// knownFuncs are the function names the parser recognizes.
var knownFuncs = map[string]bool{
	"sin": true, "cos": true, "tan": true,
	"sqrt": true, "exp": true, "ln": true, "log": true,
}

// mathRunRe matches a run of characters that can form a mathematical
// expression. Used to lift the math out of surrounding prose.
var mathRunRe = regexp.MustCompile(`[0-9a-zA-Zπ+\-*/^=().\s]+`)

// ExtractMath lifts the most promising expression substring out of
// problem prose: the longest run of expression characters that contains
// a digit or an operator. Returns "" when nothing expression-like exists.
func ExtractMath(text string) string {
	best := ""
	for _, run := range mathRunRe.FindAllString(text, -1) {
		run = trimProse(run)
		if run == "" {
			continue
		}
		if !strings.ContainsAny(run, "0123456789=+-*/^") && !containsFuncCall(run) {
			continue
		}
		if best == "" || score(run) > score(best) {
			best = run
		}
	}
	return strings.TrimSpace(best)
}

// trimProse strips leading and trailing words that are not part of the
// expression (e.g. "Solve", "for x").
func trimProse(run string) string {
	words := strings.Fields(run)
	start, end := 0, len(words)
	for start < end && isProseWord(words[start]) {
		start++
	}
	for end > start {
		if isProseWord(words[end-1]) {
			end--
			continue
		}
		// "... for x" leaves a dangling single variable after a prose
		// word; drop it and keep trimming.
		if end-start >= 2 && isBareVariable(words[end-1]) && isProseWord(words[end-2]) {
			end--
			continue
		}
		break
	}
	return strings.Join(words[start:end], " ")
}

func isBareVariable(w string) bool {
	return len(w) == 1 && unicode.IsLetter(rune(w[0]))
}

func isProseWord(w string) bool {
	if knownFuncs[strings.ToLower(w)] {
		return false
	}
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	// Single letters are variables, not prose — except common articles.
	if len(w) == 1 {
		return w == "a" || w == "A" || w == "I"
	}
	return w != "pi"
}

// containsFuncCall reports whether the run applies a known function, so
// operator-free expressions like "sin(x)" still count as math.
func containsFuncCall(run string) bool {
	lower := strings.ToLower(run)
	for fn := range knownFuncs {
		if strings.Contains(lower, fn+"(") {
			return true
		}
	}
	return false
}

func score(run string) int {
	n := 0
	for _, r := range run {
		if unicode.IsDigit(r) || strings.ContainsRune("=+-*/^", r) {
			n++
		}
	}
	return n
}

// token kinds
type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{kind: tokEOF}, nil
	}
	c := l.input[l.pos]
	switch {
	case c >= '0' && c <= '9' || c == '.':
		start := l.pos
		for l.pos < len(l.input) && (l.input[l.pos] >= '0' && l.input[l.pos] <= '9' || l.input[l.pos] == '.') {
			l.pos++
		}
		return token{kind: tokNumber, text: l.input[start:l.pos]}, nil
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "("}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")"}, nil
	case strings.ContainsRune("+-*/^", rune(c)):
		l.pos++
		return token{kind: tokOp, text: string(c)}, nil
	}
	if isIdentByte(c) || strings.HasPrefix(l.input[l.pos:], "π") {
		start := l.pos
		for l.pos < len(l.input) {
			if isIdentByte(l.input[l.pos]) {
				l.pos++
				continue
			}
			if strings.HasPrefix(l.input[l.pos:], "π") {
				l.pos += len("π")
				continue
			}
			break
		}
		return token{kind: tokIdent, text: l.input[start:l.pos]}, nil
	}
	return token{}, fmt.Errorf("unexpected character %q at position %d", string(c), l.pos)
}

func isIdentByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// parser is a small recursive-descent parser with implicit
// multiplication (2x, 3(x+1), 2sin(x)).
type parser struct {
	lex  *lexer
	tok  token
	text string
}

// Parse parses a single expression (no '='). Fails with ParseError.
func Parse(input string) (Expr, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, &problem.ParseError{Reason: "empty expression"}
	}
	p := &parser{lex: &lexer{input: input}, text: input}
	if err := p.advance(); err != nil {
		return nil, p.fail(err.Error())
	}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.fail(fmt.Sprintf("unexpected token %q", p.tok.text))
	}
	return e, nil
}

// ParseEquation parses "lhs = rhs" into its two sides.
func ParseEquation(input string) (lhs, rhs Expr, err error) {
	parts := strings.Split(input, "=")
	if len(parts) != 2 {
		return nil, nil, &problem.ParseError{Text: input, Reason: "expected exactly one '='"}
	}
	lhs, err = Parse(parts[0])
	if err != nil {
		return nil, nil, err
	}
	rhs, err = Parse(parts[1])
	if err != nil {
		return nil, nil, err
	}
	return lhs, rhs, nil
}

func (p *parser) fail(reason string) error {
	return &problem.ParseError{Text: p.text, Reason: reason}
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text[0]
		if err := p.advance(); err != nil {
			return nil, p.fail(err.Error())
		}
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseProduct() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/"):
			op := p.tok.text[0]
			if err := p.advance(); err != nil {
				return nil, p.fail(err.Error())
			}
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: op, L: left, R: right}
		case p.tok.kind == tokNumber || p.tok.kind == tokIdent || p.tok.kind == tokLParen:
			// Implicit multiplication.
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &Binary{Op: '*', L: left, R: right}
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if p.tok.kind == tokOp && p.tok.text == "-" {
		if err := p.advance(); err != nil {
			return nil, p.fail(err.Error())
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Neg{X: x}, nil
	}
	if p.tok.kind == tokOp && p.tok.text == "+" {
		if err := p.advance(); err != nil {
			return nil, p.fail(err.Error())
		}
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.tok.kind == tokOp && p.tok.text == "^" {
		if err := p.advance(); err != nil {
			return nil, p.fail(err.Error())
		}
		// Right-associative exponent.
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Binary{Op: '^', L: base, R: exp}, nil
	}
	return base, nil
}

func (p *parser) parseAtom() (Expr, error) {
	switch p.tok.kind {
	case tokNumber:
		r, ok := new(big.Rat).SetString(p.tok.text)
		if !ok {
			return nil, p.fail(fmt.Sprintf("bad number %q", p.tok.text))
		}
		if err := p.advance(); err != nil {
			return nil, p.fail(err.Error())
		}
		return &Number{Val: r}, nil

	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, p.fail(err.Error())
		}
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.fail("missing closing parenthesis")
		}
		if err := p.advance(); err != nil {
			return nil, p.fail(err.Error())
		}
		return e, nil

	case tokIdent:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, p.fail(err.Error())
		}
		lower := strings.ToLower(name)
		if knownFuncs[lower] {
			if p.tok.kind != tokLParen {
				return nil, p.fail(fmt.Sprintf("function %q needs parentheses", lower))
			}
			if err := p.advance(); err != nil {
				return nil, p.fail(err.Error())
			}
			arg, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			if p.tok.kind != tokRParen {
				return nil, p.fail("missing closing parenthesis")
			}
			if err := p.advance(); err != nil {
				return nil, p.fail(err.Error())
			}
			return &Call{Fn: lower, Arg: arg}, nil
		}
		return identExpr(name), nil
	}
	return nil, p.fail(fmt.Sprintf("unexpected token %q", p.tok.text))
}

// identExpr turns an identifier into constants and variables. Multi-letter
// identifiers other than constants are implicit products of single-letter
// variables (xy → x*y).
func identExpr(name string) Expr {
	lower := strings.ToLower(name)
	if lower == "pi" || name == "π" {
		return &Variable{Name: "π"}
	}
	runes := []rune(name)
	if len(runes) == 1 {
		return &Variable{Name: string(runes[0])}
	}
	var e Expr = &Variable{Name: string(runes[0])}
	for _, r := range runes[1:] {
		e = &Binary{Op: '*', L: e, R: &Variable{Name: string(r)}}
	}
	return e
}

// constants binds the named constants for numeric evaluation.
func constants() map[string]float64 {
	return map[string]float64{
		"π": 3.141592653589793,
		"e": 2.718281828459045,
	}
}
