// Package rewrite holds the token-stream fixers: explicit boolean
// comparisons in conditions and canonical null checks.
//
// Fixers never mutate their input. Each Fix call clones the buffer, rewrites
// the clone site by site, compacts it and returns it. Sub-expressions are
// rewritten on independent copies and spliced back by value.
package rewrite

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gnolang/condfix/internal/classify"
	"github.com/gnolang/condfix/internal/lexer"
	"github.com/gnolang/condfix/internal/precedence"
	"github.com/gnolang/condfix/internal/token"
)

// ErrMalformedInput is returned when the buffer is not structurally valid
// source. The buffer being fixed must be discarded.
var ErrMalformedInput = token.ErrMalformedInput

// ErrRecursionLimit is returned when a condition nests deeper than the
// configured limit. Only the offending site is left unchanged.
var ErrRecursionLimit = errors.New("recursion limit exceeded")

// DefaultMaxDepth bounds the nesting of parenthesised logical groups.
const DefaultMaxDepth = 64

// Tokenizer turns synthesized code into tokens ready for insertion.
type Tokenizer interface {
	Fragment(code string) (*token.Buffer, error)
}

// Fixer is a single token-stream rewrite rule.
type Fixer interface {
	Name() string
	Description() string
	Fix(buf *token.Buffer) (*token.Buffer, []Edit, error)
}

// Edit describes one rewritten site.
type Edit struct {
	Rule   string
	Line   int
	Col    int
	Before string
	After  string
}

type config struct {
	tokenizer   Tokenizer
	classifier  *classify.Classifier
	scanner     *precedence.Scanner
	logger      *zap.Logger
	maxDepth    int
	assignments bool
	predicate   string
	skip        func(rule string, line int) bool
}

// Option configures a fixer.
type Option func(*config)

// WithTokenizer replaces the tokenizer used for synthesized code.
func WithTokenizer(t Tokenizer) Option {
	return func(c *config) { c.tokenizer = t }
}

// WithClassifier replaces the expression classifier.
func WithClassifier(cl *classify.Classifier) Option {
	return func(c *config) { c.classifier = cl }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMaxDepth bounds the nesting depth of rewritten logical groups.
func WithMaxDepth(depth int) Option {
	return func(c *config) { c.maxDepth = depth }
}

// WithAssignments also rewrites right-hand sides of assignments that
// combine operands with logical operators.
func WithAssignments(enabled bool) Option {
	return func(c *config) { c.assignments = enabled }
}

// WithPredicate sets the name of the null-test function.
func WithPredicate(name string) Option {
	return func(c *config) { c.predicate = name }
}

// WithSkip registers a filter; sites on lines for which skip returns true
// are left unchanged.
func WithSkip(skip func(rule string, line int) bool) Option {
	return func(c *config) { c.skip = skip }
}

func newConfig(opts []Option) (config, error) {
	c := config{
		tokenizer: lexer.New(),
		scanner:   precedence.New(),
		logger:    zap.NewNop(),
		maxDepth:  DefaultMaxDepth,
		predicate: DefaultPredicate,
		skip:      func(string, int) bool { return false },
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.classifier == nil {
		cl, err := classify.New()
		if err != nil {
			return config{}, err
		}
		c.classifier = cl
	}
	return c, nil
}

// fragment tokenizes synthesized code. The tokens carry no position until
// they are spliced into a buffer.
func (c *config) fragment(code string) ([]token.Token, error) {
	buf, err := c.tokenizer.Fragment(code)
	if err != nil {
		return nil, err
	}
	tokens := buf.Tokens()
	for i := range tokens {
		tokens[i].Line, tokens[i].Col = 0, 0
	}
	return tokens, nil
}

// splice replaces the tokens in [start, end] with replacement. Synthesized
// tokens take the position of the first replaced token.
func splice(buf *token.Buffer, start, end int, replacement []token.Token) {
	at := buf.At(start)
	for i := range replacement {
		if replacement[i].Line == 0 {
			replacement[i].Line, replacement[i].Col = at.Line, at.Col
		}
	}
	buf.ClearRange(start, end)
	buf.InsertAt(start, replacement...)
}

// span copies the live tokens in [start, end]; an empty range yields nil.
func span(buf *token.Buffer, start, end int) []token.Token {
	if start > end {
		return nil
	}
	return buf.Copy(start, end).Tokens()
}

func render(tokens []token.Token) string {
	return token.NewBuffer(tokens).Code()
}

func concat(parts ...[]token.Token) []token.Token {
	var out []token.Token
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func malformed(buf *token.Buffer, i int) error {
	t := buf.At(i)
	return fmt.Errorf("%w: missing operand for %q at %d:%d", ErrMalformedInput, t.Text, t.Line, t.Col)
}

// ExplicitateConditions rewrites every `if`/`elseif` condition of buf with
// the default configuration.
func ExplicitateConditions(buf *token.Buffer) (*token.Buffer, error) {
	f, err := NewExplicitCondition()
	if err != nil {
		return nil, err
	}
	out, _, err := f.Fix(buf)
	return out, err
}

// CanonicalizeNullChecks rewrites every is_null call of buf with the
// default configuration.
func CanonicalizeNullChecks(buf *token.Buffer) (*token.Buffer, error) {
	f, err := NewNullStrict()
	if err != nil {
		return nil, err
	}
	out, _, err := f.Fix(buf)
	return out, err
}
