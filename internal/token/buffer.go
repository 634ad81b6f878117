package token

import (
	"slices"
	"strings"
)

// Buffer is an ordered, index-addressable sequence of tokens.
//
// Clearing a token keeps every index stable; InsertAt shifts the tokens at or
// after the insertion point to the right. A Buffer is owned by a single
// rewrite pass and is never shared: Copy and Clone return independent values.
type Buffer struct {
	tokens []Token
}

// NewBuffer creates a buffer holding a copy of tokens.
func NewBuffer(tokens []Token) *Buffer {
	return &Buffer{tokens: slices.Clone(tokens)}
}

func (b *Buffer) Len() int {
	return len(b.tokens)
}

// At returns the token at index i. Out-of-range indices yield a cleared token.
func (b *Buffer) At(i int) Token {
	if i < 0 || i >= len(b.tokens) {
		return Token{cleared: true}
	}
	return b.tokens[i]
}

// Tokens returns a copy of the underlying tokens, including cleared ones.
func (b *Buffer) Tokens() []Token {
	return slices.Clone(b.tokens)
}

// Clear marks the token at index i as removed without shifting indices.
func (b *Buffer) Clear(i int) {
	if i < 0 || i >= len(b.tokens) {
		return
	}
	b.tokens[i] = Token{Kind: b.tokens[i].Kind, Line: b.tokens[i].Line, Col: b.tokens[i].Col, cleared: true}
}

// ClearRange clears every token in [start, end].
func (b *Buffer) ClearRange(start, end int) {
	for i := start; i <= end; i++ {
		b.Clear(i)
	}
}

// InsertAt inserts tokens before index i.
func (b *Buffer) InsertAt(i int, tokens ...Token) {
	if len(tokens) == 0 {
		return
	}
	i = max(0, min(i, len(b.tokens)))
	b.tokens = slices.Insert(b.tokens, i, tokens...)
}

// InsertBuffer inserts the live tokens of other before index i.
func (b *Buffer) InsertBuffer(i int, other *Buffer) {
	b.InsertAt(i, other.liveTokens()...)
}

// ClearEmptyTokens removes cleared and empty tokens, compacting the buffer.
func (b *Buffer) ClearEmptyTokens() {
	b.tokens = b.liveTokens()
}

func (b *Buffer) liveTokens() []Token {
	live := make([]Token, 0, len(b.tokens))
	for _, t := range b.tokens {
		if !t.IsEmpty() {
			live = append(live, t)
		}
	}
	return live
}

// Clone returns an independent, compacted copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{tokens: b.liveTokens()}
}

// Copy returns an independent, compacted copy of the tokens in [start, end].
func (b *Buffer) Copy(start, end int) *Buffer {
	start = max(0, start)
	end = min(end, len(b.tokens)-1)
	if start > end {
		return &Buffer{}
	}
	sub := &Buffer{tokens: slices.Clone(b.tokens[start : end+1])}
	sub.ClearEmptyTokens()
	return sub
}

// Code renders the buffer back to source text.
func (b *Buffer) Code() string {
	return b.PartialCode(0, len(b.tokens)-1)
}

// PartialCode renders the tokens in [start, end].
func (b *Buffer) PartialCode(start, end int) string {
	var sb strings.Builder
	for i := max(0, start); i <= end && i < len(b.tokens); i++ {
		if !b.tokens[i].cleared {
			sb.WriteString(b.tokens[i].Text)
		}
	}
	return sb.String()
}

// NextNonWhitespace returns the index of the first non-empty, non-whitespace
// token after i, or -1.
func (b *Buffer) NextNonWhitespace(i int) int {
	return b.next(i, func(t Token) bool { return !t.IsEmpty() && t.Kind != KindWhitespace })
}

// PrevNonWhitespace returns the index of the last non-empty, non-whitespace
// token before i, or -1.
func (b *Buffer) PrevNonWhitespace(i int) int {
	return b.prev(i, func(t Token) bool { return !t.IsEmpty() && t.Kind != KindWhitespace })
}

// NextMeaningful returns the index of the first meaningful token after i, or -1.
func (b *Buffer) NextMeaningful(i int) int {
	return b.next(i, Token.IsMeaningful)
}

// PrevMeaningful returns the index of the last meaningful token before i, or -1.
func (b *Buffer) PrevMeaningful(i int) int {
	return b.prev(i, Token.IsMeaningful)
}

func (b *Buffer) next(i int, accept func(Token) bool) int {
	for j := max(i+1, 0); j < len(b.tokens); j++ {
		if accept(b.tokens[j]) {
			return j
		}
	}
	return -1
}

func (b *Buffer) prev(i int, accept func(Token) bool) int {
	for j := min(i-1, len(b.tokens)-1); j >= 0; j-- {
		if accept(b.tokens[j]) {
			return j
		}
	}
	return -1
}

// FindKinds returns, in ascending order, the indices in [start, end] whose
// token kind is a member of set.
func (b *Buffer) FindKinds(set KindSet, start, end int) []int {
	var found []int
	for i := max(0, start); i <= end && i < len(b.tokens); i++ {
		if b.tokens[i].IsGivenKind(set) {
			found = append(found, i)
		}
	}
	return found
}

// MeaningfulIndices returns the indices of the meaningful tokens in [start, end].
func (b *Buffer) MeaningfulIndices(start, end int) []int {
	var found []int
	for i := max(0, start); i <= end && i < len(b.tokens); i++ {
		if b.tokens[i].IsMeaningful() {
			found = append(found, i)
		}
	}
	return found
}
