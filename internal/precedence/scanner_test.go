package precedence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/condfix/internal/lexer"
	"github.com/gnolang/condfix/internal/token"
)

func tokenize(t *testing.T, src string) *token.Buffer {
	t.Helper()
	buf, err := lexer.Tokenize(src)
	require.NoError(t, err)
	return buf
}

// indexOf returns the index of the nth token (from zero) whose text is text.
func indexOf(t *testing.T, buf *token.Buffer, text string, nth int) int {
	t.Helper()
	for i := 0; i < buf.Len(); i++ {
		if buf.At(i).Text != text {
			continue
		}
		if nth == 0 {
			return i
		}
		nth--
	}
	t.Fatalf("token %q not found", text)
	return -1
}

func TestScanner_IsLowerPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tok  token.Token
		want bool
	}{
		{token.New(token.KindBooleanAnd, "&&"), true},
		{token.New(token.KindLogicalOr, "or"), true},
		{token.New(token.KindAssignOp, ".="), true},
		{token.New(token.KindCoalesceEqual, "??="), true},
		{token.New(token.KindCoalesce, "??"), true},
		{token.New(token.KindDoubleArrow, "=>"), true},
		{token.New(token.KindReturn, "return"), true},
		{token.New(token.KindCase, "case"), true},
		{token.New(token.KindElseIf, "elseif"), true},
		{token.New(token.KindCloseTag, "?>"), true},
		{token.Char("="), true},
		{token.Char("?"), true},
		{token.Char(":"), true},
		{token.Char("|"), true},
		{token.Char(";"), true},
		{token.Char(","), true},
		{token.New(token.KindIsIdentical, "==="), false},
		{token.New(token.KindVariable, "$a"), false},
		{token.New(token.KindString, "foo"), false},
		{token.Char("+"), false},
		{token.Char("."), false},
		{token.Char("!"), false},
		{token.New(token.KindString, "="), false},
	}

	s := New()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.tok.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, s.IsLowerPrecedence(tt.tok))
		})
	}
}

func TestScanner_FindComparisonBounds(t *testing.T) {
	t.Parallel()

	s := New()
	buf := tokenize(t, "<?php $x = $b === foo($c, $d) && $e;")

	b := indexOf(t, buf, "$b", 0)
	closing := indexOf(t, buf, ")", 0)

	end, err := s.FindComparisonEnd(buf, b)
	require.NoError(t, err)
	assert.Equal(t, closing, end, "the call is jumped over and && stops the scan")

	start, err := s.FindComparisonStart(buf, closing)
	require.NoError(t, err)
	assert.Equal(t, b, start, "= stops the scan")

	e := indexOf(t, buf, "$e", 0)
	end, err = s.FindComparisonEnd(buf, e)
	require.NoError(t, err)
	assert.Equal(t, e, end)
}

func TestScanner_FindComparisonStart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   string
		from  string
		want  string
		nthTo int
	}{
		{"return", "<?php return $a == $b;", "$b", "$a", 0},
		{"ternary", "<?php $x = $c ? $a == $b : 1;", "$b", "$a", 0},
		{"comma", "<?php f($c, $a->b() == $b);", "$b", "$a", 0},
		{"open paren", "<?php if ($a == $b) {}", "$b", "$a", 0},
		{"index jumped", "<?php echo $a[$i && $j] === $b;", "$b", "$a", 0},
		{"comment skipped", "<?php return /* x */ $a == $b;", "$b", "$a", 0},
	}

	s := New()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf := tokenize(t, tt.src)
			got, err := s.FindComparisonStart(buf, indexOf(t, buf, tt.from, 0))
			require.NoError(t, err)
			assert.Equal(t, indexOf(t, buf, tt.want, tt.nthTo), got)
		})
	}
}

func TestScanner_FindComparisonEnd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		from string
		want string
	}{
		{"semicolon", "<?php return $a == $b;", "$a", "$b"},
		{"close paren", "<?php if ($a == $b) {}", "$a", "$b"},
		{"logical or", "<?php return $a == $b || $c;", "$a", "$b"},
		{"assignment", "<?php $a = 1;", "$a", "$a"},
		{"close tag", "<?php echo $a . $b ?>", "$a", "$b"},
	}

	s := New()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			buf := tokenize(t, tt.src)
			got, err := s.FindComparisonEnd(buf, indexOf(t, buf, tt.from, 0))
			require.NoError(t, err)
			assert.Equal(t, indexOf(t, buf, tt.want, 0), got)
		})
	}
}

func TestScanner_BufferEdges(t *testing.T) {
	t.Parallel()

	s := New()
	// 0:$a 1:ws 2:== 3:ws 4:$b
	buf, err := lexer.Fragment("$a == $b")
	require.NoError(t, err)

	start, err := s.FindComparisonStart(buf, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, start)

	end, err := s.FindComparisonEnd(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, end)
}

func TestScanner_Malformed(t *testing.T) {
	t.Parallel()

	s := New()
	// 0:$a 1:) 2:ws 3:== 4:ws 5:$b
	buf, err := lexer.Fragment("$a) == $b")
	require.NoError(t, err)

	_, err = s.FindComparisonStart(buf, 5)
	assert.ErrorIs(t, err, token.ErrMalformedInput)

	// 0:$a 1:ws 2:== 3:ws 4:f 5:( 6:$b
	buf, err = lexer.Fragment("$a == f($b")
	require.NoError(t, err)

	_, err = s.FindComparisonEnd(buf, 0)
	assert.ErrorIs(t, err, token.ErrMalformedInput)
}

func TestFindTopLevel(t *testing.T) {
	t.Parallel()

	// 0:$a 1:ws 2:&& 3:ws 4:( 5:$b 6:ws 7:|| 8:ws 9:$c 10:) 11:ws 12:|| 13:ws 14:$d
	buf, err := lexer.Fragment("$a && ($b || $c) || $d")
	require.NoError(t, err)

	found, err := FindTopLevel(buf, token.LogicalKinds, 0, buf.Len()-1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 12}, found)

	found, err = FindTopLevel(buf, token.LogicalKinds, 5, 9)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, found)

	found, err = FindTopLevel(buf, token.EqualityKinds, 0, buf.Len()-1)
	require.NoError(t, err)
	assert.Empty(t, found)

	buf, err = lexer.Fragment("$a && ($b")
	require.NoError(t, err)
	_, err = FindTopLevel(buf, token.LogicalKinds, 0, buf.Len()-1)
	assert.ErrorIs(t, err, token.ErrMalformedInput)
}
