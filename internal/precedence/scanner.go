// Package precedence finds the extent of operands around comparison and
// logical operators in a token buffer without building a syntax tree.
//
// An operand ends at any token of lower precedence than the equality and
// logical operators, or at the edge of the enclosing block. Nested blocks are
// opaque: the scanner jumps across them instead of descending.
package precedence

import (
	"github.com/gnolang/condfix/internal/token"
)

// Scanner locates operand boundaries. Its stop sets are fixed at
// construction and never modified, so a Scanner can be shared freely.
type Scanner struct {
	stopKinds token.KindSet
	stopChars map[string]struct{}
}

var defaultStopKinds = token.NewKindSet(
	// && || and or xor
	token.KindBooleanAnd, token.KindBooleanOr,
	token.KindLogicalAnd, token.KindLogicalOr, token.KindLogicalXor,
	// .= /= -= *= += %= **= &= |= ^= <<= >>= ??=
	token.KindAssignOp, token.KindCoalesceEqual,
	// => ??
	token.KindDoubleArrow, token.KindCoalesce,
	// keywords that start an expression
	token.KindReturn, token.KindThrow, token.KindGoto, token.KindCase,
	token.KindIf, token.KindElseIf, token.KindEcho, token.KindPrint, token.KindYield,
	// leaving PHP mode
	token.KindOpenTag, token.KindOpenTagWithEcho, token.KindCloseTag, token.KindInlineHTML,
)

var defaultStopChars = []string{
	// bitwise and, or, xor
	"&", "|", "^",
	// ternary
	"?", ":",
	// assignment
	"=",
	// end of statement
	",", ";",
}

// New creates a Scanner with PHP's stop sets.
func New() *Scanner {
	chars := make(map[string]struct{}, len(defaultStopChars))
	for _, c := range defaultStopChars {
		chars[c] = struct{}{}
	}
	return &Scanner{stopKinds: defaultStopKinds, stopChars: chars}
}

// IsLowerPrecedence reports whether t binds looser than the equality and
// logical operators and therefore bounds an operand.
func (s *Scanner) IsLowerPrecedence(t token.Token) bool {
	if t.IsGivenKind(s.stopKinds) {
		return true
	}
	if !t.Is(token.KindChar) {
		return false
	}
	_, ok := s.stopChars[t.Text]
	return ok
}

// FindTopLevel returns, in ascending order, the indices in [start, end]
// whose kind is in set and which are not nested inside a block that opens
// within the range.
func FindTopLevel(buf *token.Buffer, set token.KindSet, start, end int) ([]int, error) {
	var found []int
	for i := max(0, start); i <= end && i < buf.Len(); i++ {
		t := buf.At(i)
		if t.IsGivenKind(set) {
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

// FindComparisonStart walks left from index and returns the first
// meaningful index of the operand that ends at index.
func (s *Scanner) FindComparisonStart(buf *token.Buffer, index int) (int, error) {
	for index >= 0 {
		t := buf.At(index)
		if s.IsLowerPrecedence(t) {
			break
		}

		block, ok := token.DetectBlockType(t)
		if !ok {
			index--
			continue
		}
		if block.IsStart {
			break
		}

		start, err := buf.FindBlockEnd(block.Type, index, false)
		if err != nil {
			return -1, err
		}
		index = start - 1
	}

	return buf.NextMeaningful(index), nil
}

// FindComparisonEnd walks right from index and returns the last meaningful
// index of the operand that starts at index.
func (s *Scanner) FindComparisonEnd(buf *token.Buffer, index int) (int, error) {
	for index < buf.Len() {
		t := buf.At(index)
		if s.IsLowerPrecedence(t) {
			break
		}

		block, ok := token.DetectBlockType(t)
		if !ok {
			index++
			continue
		}
		if !block.IsStart {
			break
		}

		end, err := buf.FindBlockEnd(block.Type, index, true)
		if err != nil {
			return -1, err
		}
		index = end + 1
	}

	return buf.PrevMeaningful(index), nil
}
