package token

import "strings"

// Token represents a lexical token of PHP source.
//
// The content of a token never changes after creation. A token is replaced
// by clearing it and inserting new tokens at its position; cleared tokens
// stay in the buffer as empty placeholders until ClearEmptyTokens runs.
type Token struct {
	Kind Kind
	Text string
	Line int
	Col  int

	cleared bool
}

// New creates a token without position information.
func New(kind Kind, text string) Token {
	return Token{Kind: kind, Text: text}
}

// Char creates a single-character punctuation token.
func Char(text string) Token {
	return Token{Kind: KindChar, Text: text}
}

// IsEmpty reports whether the token was cleared or carries no text.
func (t Token) IsEmpty() bool {
	return t.cleared || t.Text == ""
}

// IsCleared reports whether the token is a tombstone.
func (t Token) IsCleared() bool {
	return t.cleared
}

func (t Token) IsWhitespace() bool {
	return !t.cleared && t.Kind == KindWhitespace
}

func (t Token) IsComment() bool {
	return !t.cleared && (t.Kind == KindComment || t.Kind == KindDocComment)
}

// IsMeaningful reports whether the token takes part in an expression,
// i.e. it is neither empty, whitespace nor a comment.
func (t Token) IsMeaningful() bool {
	return !t.IsEmpty() && t.Kind != KindWhitespace && !t.IsComment()
}

// IsGivenKind reports whether the token kind is a member of set.
func (t Token) IsGivenKind(set KindSet) bool {
	return !t.cleared && set.Has(t.Kind)
}

// Is reports whether the token has the given kind.
func (t Token) Is(kind Kind) bool {
	return !t.cleared && t.Kind == kind
}

// Equals reports whether the token is a punctuation token with the given text.
func (t Token) Equals(text string) bool {
	return !t.cleared && t.Kind == KindChar && t.Text == text
}

// EqualsAny reports whether the token is a punctuation token with any of the given texts.
func (t Token) EqualsAny(texts ...string) bool {
	for _, text := range texts {
		if t.Equals(text) {
			return true
		}
	}
	return false
}

// IsIdentifier reports whether the token is an identifier whose text
// matches name, compared case-insensitively like PHP names.
func (t Token) IsIdentifier(name string) bool {
	return t.Is(KindString) && strings.EqualFold(t.Text, name)
}

// IsBooleanLiteral reports whether the token is `true` or `false`.
func (t Token) IsBooleanLiteral() bool {
	return t.IsIdentifier("true") || t.IsIdentifier("false")
}

func (t Token) String() string {
	if t.cleared {
		return "<cleared>"
	}
	return t.Kind.String() + "(" + t.Text + ")"
}
