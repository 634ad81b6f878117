package token

import (
	"errors"
	"fmt"
)

// ErrMalformedInput reports source that is not structurally valid, such as
// an unmatched block delimiter. Processing of the buffer must be abandoned.
var ErrMalformedInput = errors.New("malformed input")

// BlockType identifies a kind of bracket-delimited region.
type BlockType int

const (
	BlockParenthesis BlockType = iota + 1
	BlockSquareBrace
	BlockBrace
	BlockDynamicPropBrace
)

func (t BlockType) String() string {
	switch t {
	case BlockParenthesis:
		return "parenthesis"
	case BlockSquareBrace:
		return "square brace"
	case BlockBrace:
		return "brace"
	case BlockDynamicPropBrace:
		return "dynamic property brace"
	default:
		return "unknown block"
	}
}

// BlockInfo describes a block delimiter token.
type BlockInfo struct {
	Type    BlockType
	IsStart bool
}

// DetectBlockType reports whether t opens or closes a block.
func DetectBlockType(t Token) (BlockInfo, bool) {
	switch {
	case t.Equals("("):
		return BlockInfo{Type: BlockParenthesis, IsStart: true}, true
	case t.Equals(")"):
		return BlockInfo{Type: BlockParenthesis}, true
	case t.Equals("["), t.Is(KindAttributeOpen):
		return BlockInfo{Type: BlockSquareBrace, IsStart: true}, true
	case t.Equals("]"):
		return BlockInfo{Type: BlockSquareBrace}, true
	case t.Equals("{"):
		return BlockInfo{Type: BlockBrace, IsStart: true}, true
	case t.Equals("}"):
		return BlockInfo{Type: BlockBrace}, true
	case t.Is(KindDynamicPropBraceOpen):
		return BlockInfo{Type: BlockDynamicPropBrace, IsStart: true}, true
	case t.Is(KindDynamicPropBraceClose):
		return BlockInfo{Type: BlockDynamicPropBrace}, true
	}
	return BlockInfo{}, false
}

// FindBlockEnd returns the index of the delimiter matching the one at index.
// Scanning forward, index must hold an opening delimiter of typ; scanning
// backward, a closing one. Nested blocks of the same type are counted.
func (b *Buffer) FindBlockEnd(typ BlockType, index int, forward bool) (int, error) {
	info, ok := DetectBlockType(b.At(index))
	if !ok || info.Type != typ || info.IsStart != forward {
		return -1, fmt.Errorf("%w: no %s %s at index %d", ErrMalformedInput, typ, edgeName(forward), index)
	}

	step := 1
	if !forward {
		step = -1
	}

	depth := 0
	for i := index; i >= 0 && i < len(b.tokens); i += step {
		info, ok := DetectBlockType(b.tokens[i])
		if !ok || info.Type != typ {
			continue
		}
		if info.IsStart == forward {
			depth++
			continue
		}
		depth--
		if depth == 0 {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w: unmatched %s at index %d", ErrMalformedInput, typ, index)
}

func edgeName(forward bool) string {
	if forward {
		return "start"
	}
	return "end"
}
