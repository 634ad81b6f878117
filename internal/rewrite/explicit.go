package rewrite

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/gnolang/condfix/internal/precedence"
	"github.com/gnolang/condfix/internal/token"
)

const ExplicitConditionName = "explicit-condition"

// ExplicitCondition rewrites the operands of `if`/`elseif` conditions into
// explicit comparisons against a boolean literal:
//
//	if ($a)              =>  if (true == $a)
//	if (!isset($a['x'])) =>  if (false === isset($a['x']))
//
// Operands that already hold an equality operator, or whose shape is not
// known to be safe, are kept as written.
type ExplicitCondition struct {
	cfg config
}

// NewExplicitCondition creates the fixer.
func NewExplicitCondition(opts ...Option) (*ExplicitCondition, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &ExplicitCondition{cfg: cfg}, nil
}

func (f *ExplicitCondition) Name() string { return ExplicitConditionName }

func (f *ExplicitCondition) Description() string {
	return "compare implicit boolean conditions explicitly against true or false"
}

// site is a condition to rewrite: the keyword or operator that introduces it
// and the token range of the expression.
type site struct {
	anchor     int
	start, end int
}

// Fix returns a rewritten copy of buf and the list of rewritten sites.
//
// Sites are rewritten from the last to the first, so every anchor still to
// be visited keeps its index. Ranges are resolved only when a site is
// visited and always see the rewrites nested inside them.
func (f *ExplicitCondition) Fix(buf *token.Buffer) (*token.Buffer, []Edit, error) {
	out := buf.Clone()
	anchors := f.anchors(out)

	var edits []Edit
	for i := len(anchors) - 1; i >= 0; i-- {
		s, ok, err := f.resolveSite(out, anchors[i])
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		anchor := out.At(s.anchor)
		if f.cfg.skip(ExplicitConditionName, anchor.Line) {
			continue
		}

		edit, err := f.fixSite(out, s)
		switch {
		case errors.Is(err, ErrRecursionLimit):
			f.cfg.logger.Warn("condition left unchanged",
				zap.Int("line", anchor.Line),
				zap.Int("max_depth", f.cfg.maxDepth),
				zap.Error(err),
			)
			continue
		case err != nil:
			return nil, nil, err
		}
		if edit != nil {
			edits = append(edits, *edit)
		}
	}

	out.ClearEmptyTokens()
	slices.Reverse(edits)
	return out, edits, nil
}

func (f *ExplicitCondition) anchors(buf *token.Buffer) []int {
	var anchors []int
	for i := 0; i < buf.Len(); i++ {
		t := buf.At(i)
		if t.IsGivenKind(token.ConditionKinds) || (f.cfg.assignments && t.Equals("=")) {
			anchors = append(anchors, i)
		}
	}
	return anchors
}

func (f *ExplicitCondition) resolveSite(buf *token.Buffer, anchor int) (site, bool, error) {
	if buf.At(anchor).Equals("=") {
		end, err := expressionEnd(buf, anchor+1)
		if err != nil {
			return site{}, false, err
		}
		if !f.cfg.classifier.HasLogicalOperator(buf, anchor+1, end) {
			return site{}, false, nil
		}
		return site{anchor: anchor, start: anchor + 1, end: end}, true, nil
	}

	open := buf.NextMeaningful(anchor)
	if !buf.At(open).Equals("(") {
		return site{}, false, nil
	}
	closing, err := buf.FindBlockEnd(token.BlockParenthesis, open, true)
	if err != nil {
		return site{}, false, err
	}
	return site{anchor: anchor, start: open + 1, end: closing - 1}, true, nil
}

// expressionEnd returns the last index of the expression starting at from:
// the token before the next top-level `;`, `,`, `=>`, close tag or
// unmatched closing delimiter.
func expressionEnd(buf *token.Buffer, from int) (int, error) {
	for i := from; i < buf.Len(); i++ {
		t := buf.At(i)
		if t.EqualsAny(";", ",") || t.Is(token.KindDoubleArrow) || t.Is(token.KindCloseTag) {
			return i - 1, nil
		}
		block, ok := token.DetectBlockType(t)
		if !ok {
			continue
		}
		if !block.IsStart {
			return i - 1, nil
		}
		closing, err := buf.FindBlockEnd(block.Type, i, true)
		if err != nil {
			return -1, err
		}
		i = closing
	}
	return buf.Len() - 1, nil
}

// fixSite rewrites one condition on a private copy and splices the result
// back. A nil edit means the condition needed no change.
func (f *ExplicitCondition) fixSite(buf *token.Buffer, s site) (*Edit, error) {
	if s.start > s.end {
		return nil, nil
	}
	sub := buf.Copy(s.start, s.end)
	before := sub.Code()
	if err := f.fixExpression(sub, 0); err != nil {
		return nil, err
	}
	after := sub.Code()
	if before == after {
		return nil, nil
	}

	first := buf.At(s.start)
	buf.ClearRange(s.start, s.end)
	buf.InsertBuffer(s.start, sub)
	return &Edit{
		Rule:   ExplicitConditionName,
		Line:   first.Line,
		Col:    first.Col,
		Before: before,
		After:  after,
	}, nil
}

type operand struct {
	start, end int
}

// fixExpression rewrites every top-level logical operand of buf in place.
func (f *ExplicitCondition) fixExpression(buf *token.Buffer, depth int) error {
	if depth > f.cfg.maxDepth {
		return fmt.Errorf("%w: depth %d", ErrRecursionLimit, depth)
	}

	operands, err := f.operands(buf)
	if err != nil {
		return err
	}
	for i := len(operands) - 1; i >= 0; i-- {
		if err := f.fixOperand(buf, operands[i], depth); err != nil {
			return err
		}
	}
	return nil
}

// operands splits buf at its top-level logical operators.
func (f *ExplicitCondition) operands(buf *token.Buffer) ([]operand, error) {
	bounds, err := precedence.FindTopLevel(buf, token.LogicalKinds, 0, buf.Len()-1)
	if err != nil {
		return nil, err
	}
	if len(bounds) == 0 {
		start, end := buf.NextMeaningful(-1), buf.PrevMeaningful(buf.Len())
		if start < 0 {
			return nil, nil
		}
		return []operand{{start, end}}, nil
	}

	var out []operand
	start, err := f.cfg.scanner.FindComparisonStart(buf, bounds[0]-1)
	if err != nil {
		return nil, err
	}
	out = appendOperand(out, start, buf.PrevMeaningful(bounds[0]))

	for _, b := range bounds {
		end, err := f.cfg.scanner.FindComparisonEnd(buf, b+1)
		if err != nil {
			return nil, err
		}
		out = appendOperand(out, buf.NextMeaningful(b), end)
	}
	return out, nil
}

func appendOperand(out []operand, start, end int) []operand {
	if start < 0 || end < start {
		return out
	}
	return append(out, operand{start, end})
}

func (f *ExplicitCondition) fixOperand(buf *token.Buffer, op operand, depth int) error {
	inner, negated := op.start, false
	if buf.At(op.start).Equals("!") {
		inner, negated = buf.NextMeaningful(op.start), true
		if inner < 0 || inner > op.end {
			return nil
		}
	}

	if buf.At(inner).Equals("(") {
		closing, err := buf.FindBlockEnd(token.BlockParenthesis, inner, true)
		if err != nil {
			return err
		}
		if closing == op.end {
			return f.fixGroup(buf, inner, closing, depth)
		}
	}

	if f.cfg.classifier.HasEqualityOperator(buf, inner, op.end) {
		return f.fixNestedGroups(buf, inner, op.end, depth)
	}
	if !f.cfg.classifier.IsExplicitable(buf, inner, op.end) {
		return nil
	}
	// the operand is the target of an assignment
	next := buf.At(buf.NextMeaningful(op.end))
	if next.Equals("=") || next.Is(token.KindAssignOp) || next.Is(token.KindCoalesceEqual) {
		return nil
	}

	literal := "true"
	if negated {
		literal = "false"
	}
	operator := "=="
	if f.cfg.classifier.IsStrictExpression(buf, inner, op.end) {
		operator = "==="
	}
	prefix, err := f.cfg.fragment(literal + " " + operator + " ")
	if err != nil {
		return err
	}

	splice(buf, op.start, op.end, concat(prefix, span(buf, inner, op.end)))
	return nil
}

// fixGroup rewrites the interior of the parenthesised group [open, closing].
func (f *ExplicitCondition) fixGroup(buf *token.Buffer, open, closing, depth int) error {
	if open+1 > closing-1 {
		return nil
	}
	sub := buf.Copy(open+1, closing-1)
	before := sub.Code()
	if err := f.fixExpression(sub, depth+1); err != nil {
		return err
	}
	if sub.Code() == before {
		return nil
	}
	buf.ClearRange(open+1, closing-1)
	buf.InsertBuffer(open+1, sub)
	return nil
}

// fixNestedGroups descends into the bare parenthesised groups of a
// comparison operand that hold logical operators of their own.
func (f *ExplicitCondition) fixNestedGroups(buf *token.Buffer, start, end, depth int) error {
	type group struct{ open, closing int }
	var groups []group
	for i := start; i <= end; i++ {
		t := buf.At(i)
		block, ok := token.DetectBlockType(t)
		if !ok || !block.IsStart {
			continue
		}
		closing, err := buf.FindBlockEnd(block.Type, i, true)
		if err != nil {
			return err
		}
		if t.Equals("(") && !isCallParen(buf, i) && f.cfg.classifier.HasLogicalOperator(buf, i+1, closing-1) {
			groups = append(groups, group{i, closing})
		}
		i = closing
	}

	for i := len(groups) - 1; i >= 0; i-- {
		if err := f.fixGroup(buf, groups[i].open, groups[i].closing, depth); err != nil {
			return err
		}
	}
	return nil
}

// isCallParen reports whether the parenthesis at open starts an argument
// list or a language construct rather than a grouping.
func isCallParen(buf *token.Buffer, open int) bool {
	prev := buf.At(buf.PrevMeaningful(open))
	switch {
	case prev.Is(token.KindString), prev.Is(token.KindVariable),
		prev.Is(token.KindIsset), prev.Is(token.KindEmpty),
		prev.Is(token.KindKeyword), prev.Is(token.KindFunction),
		prev.Is(token.KindDynamicPropBraceClose):
		return true
	}
	return prev.EqualsAny(")", "]", "}")
}
