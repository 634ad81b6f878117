package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toks builds a buffer from texts, guessing each kind from its shape.
func toks(texts ...string) *Buffer {
	out := make([]Token, len(texts))
	for i, text := range texts {
		switch {
		case text[0] == '$':
			out[i] = New(KindVariable, text)
		case text == " " || text == "\n":
			out[i] = New(KindWhitespace, text)
		case len(text) > 1 && text[:2] == "/*":
			out[i] = New(KindComment, text)
		case len(text) == 1:
			out[i] = Char(text)
		default:
			out[i] = New(KindString, text)
		}
	}
	return NewBuffer(out)
}

func TestBuffer_ClearKeepsIndices(t *testing.T) {
	t.Parallel()

	buf := toks("$a", " ", "=", " ", "$b")
	require.Equal(t, "$a = $b", buf.Code())

	buf.Clear(0)
	assert.Equal(t, 5, buf.Len())
	assert.True(t, buf.At(0).IsCleared())
	assert.True(t, buf.At(0).IsEmpty())
	assert.False(t, buf.At(0).Is(KindVariable))
	assert.Equal(t, "$b", buf.At(4).Text)
	assert.Equal(t, " = $b", buf.Code())

	// out of range is a no-op
	buf.Clear(-1)
	buf.Clear(99)
	assert.Equal(t, 5, buf.Len())
}

func TestBuffer_ClearRange(t *testing.T) {
	t.Parallel()

	buf := toks("$a", " ", "=", " ", "$b", ";")
	buf.ClearRange(1, 4)
	assert.Equal(t, "$a;", buf.Code())
	assert.Equal(t, 6, buf.Len())
	assert.True(t, buf.At(2).IsCleared())
	assert.Equal(t, ";", buf.At(5).Text)
}

func TestBuffer_InsertAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		at   int
		want string
	}{
		{name: "middle", at: 1, want: "$a+$b;"},
		{name: "start", at: 0, want: "+$b$a;"},
		{name: "end", at: 2, want: "$a;+$b"},
		{name: "clamped below", at: -3, want: "+$b$a;"},
		{name: "clamped above", at: 42, want: "$a;+$b"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf := toks("$a", ";")
			buf.InsertAt(tt.at, Char("+"), New(KindVariable, "$b"))
			assert.Equal(t, tt.want, buf.Code())
			assert.Equal(t, 4, buf.Len())
		})
	}
}

func TestBuffer_InsertBuffer(t *testing.T) {
	t.Parallel()

	buf := toks("(", ")")
	other := toks("$a", " ", "$b")
	other.Clear(1)

	buf.InsertBuffer(1, other)
	assert.Equal(t, "($a$b)", buf.Code())
	assert.Equal(t, 4, buf.Len())
}

func TestBuffer_ClearEmptyTokens(t *testing.T) {
	t.Parallel()

	buf := toks("$a", " ", "=", " ", "$b")
	buf.Clear(1)
	buf.Clear(3)
	buf.InsertAt(0, New(KindWhitespace, ""))

	buf.ClearEmptyTokens()
	assert.Equal(t, 3, buf.Len())
	assert.Equal(t, "$a=$b", buf.Code())
	for _, tok := range buf.Tokens() {
		assert.False(t, tok.IsEmpty())
	}
}

func TestBuffer_CopyIsIndependent(t *testing.T) {
	t.Parallel()

	buf := toks("if", " ", "(", "$a", ")")
	buf.Clear(1)

	sub := buf.Copy(0, 3)
	assert.Equal(t, "if($a", sub.Code())
	assert.Equal(t, 3, sub.Len(), "cleared tokens are dropped")

	sub.Clear(0)
	sub.InsertAt(0, New(KindString, "while"))
	assert.Equal(t, "if($a)", buf.Code())
	assert.Equal(t, "while($a", sub.Code())

	clone := buf.Clone()
	clone.ClearRange(0, clone.Len()-1)
	assert.Equal(t, "if($a)", buf.Code())
	assert.Empty(t, clone.Code())
}

func TestBuffer_CopyBounds(t *testing.T) {
	t.Parallel()

	buf := toks("$a", "=", "$b")
	assert.Equal(t, 0, buf.Copy(2, 1).Len())
	assert.Equal(t, "$a=$b", buf.Copy(-4, 10).Code())
}

func TestBuffer_NewBufferCopiesInput(t *testing.T) {
	t.Parallel()

	in := []Token{New(KindVariable, "$a")}
	buf := NewBuffer(in)
	in[0] = New(KindVariable, "$b")
	assert.Equal(t, "$a", buf.Code())

	out := buf.Tokens()
	out[0] = New(KindVariable, "$c")
	assert.Equal(t, "$a", buf.Code())
}

func TestBuffer_At(t *testing.T) {
	t.Parallel()

	buf := toks("$a")
	assert.Equal(t, "$a", buf.At(0).Text)
	assert.True(t, buf.At(-1).IsEmpty())
	assert.True(t, buf.At(1).IsEmpty())
	assert.False(t, buf.At(1).IsMeaningful())
}

func TestBuffer_Navigation(t *testing.T) {
	t.Parallel()

	// 0:$a 1:ws 2:comment 3:ws 4:=
	buf := toks("$a", " ", "/* c */", " ", "=")

	assert.Equal(t, 2, buf.NextNonWhitespace(0))
	assert.Equal(t, 4, buf.NextMeaningful(0))
	assert.Equal(t, 2, buf.PrevNonWhitespace(4))
	assert.Equal(t, 0, buf.PrevMeaningful(4))
	assert.Equal(t, -1, buf.NextMeaningful(4))
	assert.Equal(t, -1, buf.PrevMeaningful(0))
	assert.Equal(t, 0, buf.NextMeaningful(-1))
	assert.Equal(t, 4, buf.PrevMeaningful(buf.Len()))

	buf.Clear(4)
	assert.Equal(t, -1, buf.NextMeaningful(0))
}

func TestBuffer_FindKinds(t *testing.T) {
	t.Parallel()

	buf := toks("$a", " ", "=", " ", "$b", ";", "$c")
	vars := NewKindSet(KindVariable)

	assert.Equal(t, []int{0, 4, 6}, buf.FindKinds(vars, 0, buf.Len()-1))
	assert.Equal(t, []int{4}, buf.FindKinds(vars, 1, 5))
	assert.Nil(t, buf.FindKinds(vars, 1, 3))

	buf.Clear(4)
	assert.Equal(t, []int{0, 6}, buf.FindKinds(vars, 0, buf.Len()-1))
}

func TestBuffer_MeaningfulIndices(t *testing.T) {
	t.Parallel()

	buf := toks("$a", " ", "/* c */", "=", "\n", "$b")
	assert.Equal(t, []int{0, 3, 5}, buf.MeaningfulIndices(0, buf.Len()-1))
	assert.Equal(t, []int{3}, buf.MeaningfulIndices(1, 4))
}

func TestBuffer_PartialCode(t *testing.T) {
	t.Parallel()

	buf := toks("$a", " ", "=", " ", "$b")
	assert.Equal(t, "= ", buf.PartialCode(2, 3))
	assert.Equal(t, "$a = $b", buf.PartialCode(-2, 40))
	assert.Empty(t, buf.PartialCode(3, 2))
}
