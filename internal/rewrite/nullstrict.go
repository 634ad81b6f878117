package rewrite

import (
	"slices"

	"github.com/gnolang/condfix/internal/token"
)

const (
	NullStrictName = "null-strict"

	// DefaultPredicate is the null-test function rewritten by NullStrict.
	DefaultPredicate = "is_null"
)

// NullStrict replaces calls to the null-test predicate with strict
// comparisons against null, in Yoda order for bare calls:
//
//	is_null($a)          =>  null === $a
//	!is_null($a)         =>  null !== $a
//	is_null($a) === true =>  $a === null
//
// A comparison of the call against a boolean literal is folded into the
// operator. The resulting comparison is always strict.
type NullStrict struct {
	cfg config
}

// NewNullStrict creates the fixer.
func NewNullStrict(opts ...Option) (*NullStrict, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &NullStrict{cfg: cfg}, nil
}

func (f *NullStrict) Name() string { return NullStrictName }

func (f *NullStrict) Description() string {
	return "replace " + f.cfg.predicate + "() calls with strict null comparisons"
}

// call is a single-argument predicate call. start includes a leading
// namespace separator.
type call struct {
	start, name int
	open, close int
	argStart    int
	argEnd      int
}

// Fix returns a rewritten copy of buf and the list of rewritten calls.
// Calls are rewritten from the last to the first.
func (f *NullStrict) Fix(buf *token.Buffer) (*token.Buffer, []Edit, error) {
	out := buf.Clone()

	var edits []Edit
	limit := out.Len()
	for {
		c, ok, err := f.findLastCall(out, limit)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			break
		}
		if f.cfg.skip(NullStrictName, out.At(c.name).Line) {
			limit = c.start
			continue
		}

		edit, start, err := f.fixCall(out, c)
		if err != nil {
			return nil, nil, err
		}
		edits = append(edits, edit)
		limit = start
	}

	out.ClearEmptyTokens()
	slices.Reverse(edits)
	return out, edits, nil
}

// findLastCall finds the last eligible call whose name lies before limit.
func (f *NullStrict) findLastCall(buf *token.Buffer, limit int) (call, bool, error) {
	for i := min(limit, buf.Len()) - 1; i >= 0; i-- {
		if !buf.At(i).IsIdentifier(f.cfg.predicate) {
			continue
		}
		c, ok, err := f.matchCall(buf, i)
		if err != nil {
			return call{}, false, err
		}
		if ok {
			return c, true, nil
		}
	}
	return call{}, false, nil
}

func (f *NullStrict) matchCall(buf *token.Buffer, name int) (call, bool, error) {
	c := call{start: name, name: name}

	prev := buf.PrevMeaningful(name)
	p := buf.At(prev)
	switch {
	case p.Is(token.KindObjectOperator), p.Is(token.KindNullsafeObjectOperator),
		p.Is(token.KindDoubleColon), p.Is(token.KindFunction), p.Is(token.KindNew):
		return call{}, false, nil
	case p.Is(token.KindNsSeparator):
		// Foo\is_null() is a user function
		if buf.At(buf.PrevMeaningful(prev)).Is(token.KindString) {
			return call{}, false, nil
		}
		c.start = prev
	}

	c.open = buf.NextMeaningful(name)
	if !buf.At(c.open).Equals("(") {
		return call{}, false, nil
	}
	closing, err := buf.FindBlockEnd(token.BlockParenthesis, c.open, true)
	if err != nil {
		return call{}, false, err
	}
	c.close = closing

	c.argStart, c.argEnd = buf.NextMeaningful(c.open), buf.PrevMeaningful(c.close)
	if c.argStart >= c.close {
		return call{}, false, nil
	}
	if buf.At(c.argStart).Is(token.KindEllipsis) {
		return call{}, false, nil
	}
	commas, err := topLevelChars(buf, c.argStart, c.argEnd, ",")
	if err != nil {
		return call{}, false, err
	}
	if len(commas) > 0 {
		return call{}, false, nil
	}
	return c, true, nil
}

// fixCall rewrites the call and returns the edit together with the first
// index of the rewritten region.
func (f *NullStrict) fixCall(buf *token.Buffer, c call) (Edit, int, error) {
	opStart, negated := c.start, false
	if bang := buf.PrevMeaningful(c.start); buf.At(bang).Equals("!") {
		opStart, negated = bang, true
	}
	opEnd := c.close

	prev, next := buf.PrevMeaningful(opStart), buf.NextMeaningful(opEnd)
	leftBound, rightBound := f.isBoundary(buf, prev), f.isBoundary(buf, next)

	var (
		start, end  int
		replacement []token.Token
		err         error
	)
	switch {
	case leftBound && buf.At(next).IsGivenKind(token.EqualityKinds):
		start, end, replacement, err = f.predicateOnLeft(buf, c, opStart, opEnd, next, negated)
	case rightBound && buf.At(prev).IsGivenKind(token.EqualityKinds):
		start, end, replacement, err = f.predicateOnRight(buf, c, opStart, opEnd, prev, negated)
	default:
		start, end = opStart, opEnd
		replacement, err = f.bare(buf, c, negated, !(leftBound && rightBound))
	}
	if err != nil {
		return Edit{}, 0, err
	}

	first := buf.At(start)
	edit := Edit{
		Rule:   NullStrictName,
		Line:   first.Line,
		Col:    first.Col,
		Before: buf.PartialCode(start, end),
		After:  render(replacement),
	}
	splice(buf, start, end, replacement)
	return edit, start, nil
}

// predicateOnLeft handles `is_null(x) OP rhs`.
func (f *NullStrict) predicateOnLeft(buf *token.Buffer, c call, opStart, opEnd, op int, negated bool) (int, int, []token.Token, error) {
	rhsStart := buf.NextMeaningful(op)
	rhsEnd, err := f.cfg.scanner.FindComparisonEnd(buf, op+1)
	if err != nil {
		return 0, 0, nil, err
	}
	if rhsStart < 0 || rhsEnd < rhsStart {
		return 0, 0, nil, malformed(buf, op)
	}

	if rhsStart == rhsEnd && buf.At(rhsStart).IsBooleanLiteral() {
		// x OP' null
		arg, err := f.argument(buf, c)
		if err != nil {
			return 0, 0, nil, err
		}
		operator, err := f.foldedOperator(buf.At(op), buf.At(rhsStart), negated)
		if err != nil {
			return 0, 0, nil, err
		}
		null, err := f.cfg.fragment("null")
		if err != nil {
			return 0, 0, nil, err
		}
		return opStart, rhsEnd, concat(
			arg, span(buf, opEnd+1, op-1), operator, span(buf, op+1, rhsStart-1), null,
		), nil
	}

	// rhs OP (null === x)
	comparison, err := f.bare(buf, c, negated, true)
	if err != nil {
		return 0, 0, nil, err
	}
	return opStart, rhsEnd, concat(
		span(buf, rhsStart, rhsEnd), span(buf, opEnd+1, op-1),
		[]token.Token{buf.At(op)}, span(buf, op+1, rhsStart-1), comparison,
	), nil
}

// predicateOnRight handles `lhs OP is_null(x)`.
func (f *NullStrict) predicateOnRight(buf *token.Buffer, c call, opStart, opEnd, op int, negated bool) (int, int, []token.Token, error) {
	lhsStart, err := f.cfg.scanner.FindComparisonStart(buf, op-1)
	if err != nil {
		return 0, 0, nil, err
	}
	lhsEnd := buf.PrevMeaningful(op)
	if lhsStart < 0 || lhsEnd < lhsStart {
		return 0, 0, nil, malformed(buf, op)
	}

	if lhsStart != lhsEnd || !buf.At(lhsStart).IsBooleanLiteral() {
		comparison, err := f.bare(buf, c, negated, true)
		return opStart, opEnd, comparison, err
	}

	// null OP' x
	arg, err := f.argument(buf, c)
	if err != nil {
		return 0, 0, nil, err
	}
	operator, err := f.foldedOperator(buf.At(op), buf.At(lhsStart), negated)
	if err != nil {
		return 0, 0, nil, err
	}
	null, err := f.cfg.fragment("null")
	if err != nil {
		return 0, 0, nil, err
	}
	return lhsStart, opEnd, concat(
		null, span(buf, lhsEnd+1, op-1), operator, span(buf, op+1, opStart-1), arg,
	), nil
}

// bare builds `null === x` or `null !== x`, wrapped in parentheses when the
// surrounding operators would otherwise bind to it.
func (f *NullStrict) bare(buf *token.Buffer, c call, negated, wrap bool) ([]token.Token, error) {
	operator := "==="
	if negated {
		operator = "!=="
	}
	prefix, err := f.cfg.fragment("null " + operator + " ")
	if err != nil {
		return nil, err
	}
	arg, err := f.argument(buf, c)
	if err != nil {
		return nil, err
	}
	comparison := concat(prefix, arg)
	if !wrap {
		return comparison, nil
	}
	return f.parenthesize(comparison)
}

// argument copies the call argument, parenthesised when it holds an
// operator binding no tighter than equality.
func (f *NullStrict) argument(buf *token.Buffer, c call) ([]token.Token, error) {
	arg := span(buf, c.argStart, c.argEnd)
	loose, err := hasLooseOperator(buf, c.argStart, c.argEnd)
	if err != nil {
		return nil, err
	}
	if !loose {
		return arg, nil
	}
	return f.parenthesize(arg)
}

func (f *NullStrict) parenthesize(tokens []token.Token) ([]token.Token, error) {
	open, err := f.cfg.fragment("(")
	if err != nil {
		return nil, err
	}
	closing, err := f.cfg.fragment(")")
	if err != nil {
		return nil, err
	}
	return concat(open, tokens, closing), nil
}

// foldedOperator folds a comparison of the predicate against a boolean
// literal into a strict null comparison operator.
func (f *NullStrict) foldedOperator(op, literal token.Token, negated bool) ([]token.Token, error) {
	inequality := op.Is(token.KindIsNotEqual) || op.Is(token.KindIsNotIdentical)
	isFalse := literal.IsIdentifier("false")
	operator := "==="
	if negated != isFalse != inequality {
		operator = "!=="
	}
	return f.cfg.fragment(operator)
}

// isBoundary reports whether the token at i delimits an operand: a buffer
// edge, an opening or closing delimiter, or a token binding looser than
// the comparison operators.
func (f *NullStrict) isBoundary(buf *token.Buffer, i int) bool {
	if i < 0 {
		return true
	}
	t := buf.At(i)
	if _, ok := token.DetectBlockType(t); ok {
		return true
	}
	return f.cfg.scanner.IsLowerPrecedence(t)
}

var looseKinds = token.EqualityKinds.Union(token.LogicalKinds).Union(token.NewKindSet(
	token.KindSpaceship, token.KindCoalesce, token.KindCoalesceEqual, token.KindAssignOp,
	token.KindPrint, token.KindYield,
))

var looseChars = []string{"&", "|", "^", "?", ":", "="}

func hasLooseOperator(buf *token.Buffer, start, end int) (bool, error) {
	for i := start; i <= end && i < buf.Len(); i++ {
		t := buf.At(i)
		if t.IsGivenKind(looseKinds) || t.EqualsAny(looseChars...) {
			return true, nil
		}
		block, ok := token.DetectBlockType(t)
		if !ok || !block.IsStart {
			continue
		}
		closing, err := buf.FindBlockEnd(block.Type, i, true)
		if err != nil {
			return false, err
		}
		i = closing
	}
	return false, nil
}

// topLevelChars returns the indices of punctuation tokens in [start, end]
// equal to any of chars and not nested in a block.
func topLevelChars(buf *token.Buffer, start, end int, chars ...string) ([]int, error) {
	var found []int
	for i := start; i <= end && i < buf.Len(); i++ {
		t := buf.At(i)
		if t.EqualsAny(chars...) {
			found = append(found, i)
			continue
		}
		block, ok := token.DetectBlockType(t)
		if !ok || !block.IsStart {
			continue
		}
		closing, err := buf.FindBlockEnd(block.Type, i, true)
		if err != nil {
			return nil, err
		}
		i = closing
	}
	return found, nil
}
