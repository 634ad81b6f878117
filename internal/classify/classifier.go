// Package classify decides which shapes of PHP expression may be compared
// explicitly against a boolean literal.
//
// Only a closed set of shapes is accepted: variables and their property,
// array and static chains, recognised global function calls, method calls,
// static method calls, isset/empty and instanceof tests. Anything else is
// left to the caller to keep unchanged.
package classify

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/gnolang/condfix/internal/precedence"
	"github.com/gnolang/condfix/internal/token"
)

// DefaultStrictPattern matches the names of boolean-returning functions.
const DefaultStrictPattern = `^is_`

var binaryKinds = token.EqualityKinds.Union(token.LogicalKinds).Union(token.NewKindSet(
	token.KindIsSmallerOrEqual, token.KindIsGreaterOrEqual, token.KindSpaceship,
	token.KindCoalesce, token.KindCoalesceEqual, token.KindAssignOp, token.KindPow,
	token.KindShiftLeft, token.KindShiftRight, token.KindInstanceof, token.KindDoubleArrow,
))

var binaryChars = []string{"+", "-", "*", "/", "%", ".", "<", ">", "&", "|", "^", "?", ":", "="}

// Classifier classifies token ranges. It is immutable once built.
type Classifier struct {
	functions       FunctionSet
	strictFunctions *Functions
	strictPattern   *regexp2.Regexp
}

type options struct {
	functions       FunctionSet
	strictFunctions []string
	strictPattern   string
}

// Option configures a Classifier.
type Option func(*options)

// WithFunctions sets the predicate recognising global callables.
func WithFunctions(f FunctionSet) Option {
	return func(o *options) { o.functions = f }
}

// WithStrictFunctions adds functions known to return booleans.
func WithStrictFunctions(names ...string) Option {
	return func(o *options) { o.strictFunctions = append(o.strictFunctions, names...) }
}

// WithStrictPattern replaces the naming convention of boolean-returning
// functions. The pattern is matched case-insensitively.
func WithStrictPattern(pattern string) Option {
	return func(o *options) { o.strictPattern = pattern }
}

// New builds a Classifier.
func New(opts ...Option) (*Classifier, error) {
	o := options{
		functions:       BuiltinFunctions(),
		strictFunctions: DefaultStrictFunctions,
		strictPattern:   DefaultStrictPattern,
	}
	for _, opt := range opts {
		opt(&o)
	}

	var re *regexp2.Regexp
	if o.strictPattern != "" {
		var err error
		re, err = regexp2.Compile(o.strictPattern, regexp2.IgnoreCase)
		if err != nil {
			return nil, fmt.Errorf("invalid strict function pattern %q: %w", o.strictPattern, err)
		}
	}

	return &Classifier{
		functions:       o.functions,
		strictFunctions: NewFunctions(o.strictFunctions...),
		strictPattern:   re,
	}, nil
}

// span is the meaningful view of a token range.
type span struct {
	buf *token.Buffer
	idx []int
}

func newSpan(buf *token.Buffer, start, end int) span {
	return span{buf: buf, idx: buf.MeaningfulIndices(start, end)}
}

func (s span) len() int { return len(s.idx) }

func (s span) tok(p int) token.Token {
	if p < 0 || p >= len(s.idx) {
		return token.Token{}
	}
	return s.buf.At(s.idx[p])
}

// skipBlock returns the position just after the block opening at p, or -1
// when the block is unbalanced or closes outside the span.
func (s span) skipBlock(p int) int {
	info, ok := token.DetectBlockType(s.tok(p))
	if !ok || !info.IsStart {
		return -1
	}
	end, err := s.buf.FindBlockEnd(info.Type, s.idx[p], true)
	if err != nil {
		return -1
	}
	for q := p + 1; q < len(s.idx); q++ {
		if s.idx[q] == end {
			return q + 1
		}
	}
	return -1
}

// skipNamePath consumes `\`? Name (`\` Name)* starting at p and returns the
// position after it, or -1.
func (s span) skipNamePath(p int) int {
	if s.tok(p).Is(token.KindNsSeparator) {
		p++
	}
	if !s.tok(p).Is(token.KindString) {
		return -1
	}
	p++
	for s.tok(p).Is(token.KindNsSeparator) && s.tok(p+1).Is(token.KindString) {
		p += 2
	}
	return p
}

// IsVariableChain reports whether [start, end] is a variable-like chain:
// a variable, static property or recognised global function call followed
// by any number of property accesses, method calls and index accesses.
func (c *Classifier) IsVariableChain(buf *token.Buffer, start, end int) bool {
	s := newSpan(buf, start, end)
	p := c.chainHead(s)
	if p < 0 {
		return false
	}
	return c.chainTail(s, p) == s.len()
}

func (c *Classifier) chainHead(s span) int {
	first := s.tok(0)
	if first.Is(token.KindVariable) {
		return 1
	}

	p := s.skipNamePath(0)
	if p < 0 {
		return -1
	}

	// Name::$property
	if s.tok(p).Is(token.KindDoubleColon) {
		if s.tok(p + 1).Is(token.KindVariable) {
			return p + 2
		}
		return -1
	}

	// name(...) for a recognised global function; namespaced names are
	// user code and never recognised
	if !s.tok(p).Equals("(") || !c.isGlobalFunctionName(s, p) {
		return -1
	}
	return s.skipBlock(p)
}

func (c *Classifier) isGlobalFunctionName(s span, callPos int) bool {
	nameStart := 0
	if s.tok(0).Is(token.KindNsSeparator) {
		nameStart = 1
	}
	if callPos-nameStart != 1 {
		return false
	}
	return c.functions.Contains(s.tok(nameStart).Text)
}

// chainTail consumes member, static and index accesses from p and returns
// the position where the chain stops, or -1 on a shape it rejects.
func (c *Classifier) chainTail(s span, p int) int {
	for p >= 0 && p < s.len() {
		t := s.tok(p)
		switch {
		case t.Is(token.KindObjectOperator), t.Is(token.KindNullsafeObjectOperator):
			p = s.member(p + 1)
		case t.Is(token.KindDoubleColon):
			p = s.staticMember(p + 1)
		case t.Equals("["):
			p = s.skipBlock(p)
		default:
			return -1
		}
	}
	return p
}

// member consumes a property name or method call after `->`.
func (s span) member(p int) int {
	t := s.tok(p)
	switch {
	case t.Is(token.KindString), t.Is(token.KindVariable):
		p++
	case t.Is(token.KindDynamicPropBraceOpen):
		p = s.skipDynamicProp(p)
	default:
		return -1
	}
	if p >= 0 && s.tok(p).Equals("(") {
		return s.skipBlock(p)
	}
	return p
}

func (s span) skipDynamicProp(p int) int {
	end, err := s.buf.FindBlockEnd(token.BlockDynamicPropBrace, s.idx[p], true)
	if err != nil {
		return -1
	}
	for q := p + 1; q < len(s.idx); q++ {
		if s.idx[q] == end {
			return q + 1
		}
	}
	return -1
}

// staticMember consumes a static property or static method call after `::`.
func (s span) staticMember(p int) int {
	t := s.tok(p)
	switch {
	case t.Is(token.KindVariable):
		return p + 1
	case t.Is(token.KindString) && s.tok(p+1).Equals("("):
		return s.skipBlock(p + 1)
	}
	return -1
}

// IsStaticMethodCallExpression reports whether [start, end] is exactly
// `Name::method(...)`, with an optionally qualified class name.
func (c *Classifier) IsStaticMethodCallExpression(buf *token.Buffer, start, end int) bool {
	s := newSpan(buf, start, end)
	p := s.skipNamePath(0)
	if p < 0 || !s.tok(p).Is(token.KindDoubleColon) {
		return false
	}
	if !s.tok(p+1).Is(token.KindString) || !s.tok(p+2).Equals("(") {
		return false
	}
	return s.skipBlock(p+2) == s.len()
}

// IsInstanceOfExpression reports whether [start, end] is `chain instanceof Class`.
func (c *Classifier) IsInstanceOfExpression(buf *token.Buffer, start, end int) bool {
	s := newSpan(buf, start, end)
	at := -1
	for p := 1; p < s.len(); p++ {
		if s.tok(p).Is(token.KindInstanceof) {
			at = p
			break
		}
	}
	if at < 0 || !c.IsVariableChain(buf, s.idx[0], s.idx[at-1]) {
		return false
	}

	if s.tok(at+1).Is(token.KindVariable) {
		return at+2 == s.len()
	}
	p := s.skipNamePath(at + 1)
	return p == s.len()
}

// IsPredicateConstruct reports whether [start, end] is exactly `isset(...)`
// or `empty(...)`.
func (c *Classifier) IsPredicateConstruct(buf *token.Buffer, start, end int) bool {
	s := newSpan(buf, start, end)
	first := s.tok(0)
	if !first.Is(token.KindIsset) && !first.Is(token.KindEmpty) {
		return false
	}
	return s.tok(1).Equals("(") && s.skipBlock(1) == s.len()
}

// HasEqualityOperator reports whether any token in [start, end] is one of
// `==`, `===`, `!=`, `!==`.
func (c *Classifier) HasEqualityOperator(buf *token.Buffer, start, end int) bool {
	return len(buf.FindKinds(token.EqualityKinds, start, end)) > 0
}

// HasBinaryOperator reports whether [start, end] holds a binary operator
// outside of nested blocks.
func (c *Classifier) HasBinaryOperator(buf *token.Buffer, start, end int) bool {
	for i := start; i <= end && i < buf.Len(); i++ {
		t := buf.At(i)
		if t.IsGivenKind(binaryKinds) || t.EqualsAny(binaryChars...) {
			return true
		}
		info, ok := token.DetectBlockType(t)
		if !ok || !info.IsStart {
			continue
		}
		closing, err := buf.FindBlockEnd(info.Type, i, true)
		if err != nil {
			return true
		}
		i = closing
	}
	return false
}

// HasLogicalOperator reports whether [start, end] holds a logical AND/OR
// outside of nested blocks.
func (c *Classifier) HasLogicalOperator(buf *token.Buffer, start, end int) bool {
	found, err := precedence.FindTopLevel(buf, token.LogicalKinds, start, end)
	return err == nil && len(found) > 0
}

// IsStrictPredicate reports whether t names a construct or function that
// yields a boolean and so warrants an identity comparison.
func (c *Classifier) IsStrictPredicate(t token.Token) bool {
	if t.Is(token.KindIsset) || t.Is(token.KindEmpty) || t.Is(token.KindInstanceof) {
		return true
	}
	if !t.Is(token.KindString) {
		return false
	}
	if c.strictFunctions.Contains(t.Text) {
		return true
	}
	if c.strictPattern == nil {
		return false
	}
	ok, err := c.strictPattern.MatchString(t.Text)
	return err == nil && ok
}

// IsStrictExpression reports whether [start, end] evaluates to a boolean:
// isset/empty, an instanceof test, or a call whose name is a strict predicate.
func (c *Classifier) IsStrictExpression(buf *token.Buffer, start, end int) bool {
	s := newSpan(buf, start, end)
	if s.len() == 0 {
		return false
	}
	if c.IsStrictPredicate(s.tok(0)) && c.IsPredicateConstruct(buf, start, end) {
		return true
	}
	if c.IsInstanceOfExpression(buf, start, end) {
		return true
	}

	last := s.len() - 1
	if !s.tok(last).Equals(")") {
		return false
	}
	open, err := buf.FindBlockEnd(token.BlockParenthesis, s.idx[last], false)
	if err != nil {
		return false
	}
	return c.IsStrictPredicate(buf.At(buf.PrevMeaningful(open)))
}

// IsExplicitable reports whether [start, end] is an expression that can be
// compared against a boolean literal without changing its meaning.
func (c *Classifier) IsExplicitable(buf *token.Buffer, start, end int) bool {
	if start > end || c.HasEqualityOperator(buf, start, end) {
		return false
	}
	if c.IsPredicateConstruct(buf, start, end) || c.IsInstanceOfExpression(buf, start, end) {
		return true
	}
	if c.HasBinaryOperator(buf, start, end) {
		return false
	}
	return c.IsVariableChain(buf, start, end) || c.IsStaticMethodCallExpression(buf, start, end)
}
