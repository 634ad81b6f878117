package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/condfix/internal/lexer"
)

var _ Fixer = (*NullStrict)(nil)

func newNullStrict(t *testing.T, opts ...Option) *NullStrict {
	t.Helper()
	f, err := NewNullStrict(opts...)
	require.NoError(t, err)
	return f
}

func TestNullStrict_Fix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "bare call",
			src:  "<?php return is_null($a);",
			want: "<?php return null === $a;",
		},
		{
			name: "negated call",
			src:  "<?php return !is_null(b($a));",
			want: "<?php return null !== b($a);",
		},
		{
			name: "identical true",
			src:  "<?php return is_null($a) === true;",
			want: "<?php return $a === null;",
		},
		{
			name: "identical false",
			src:  "<?php return is_null($a) === false;",
			want: "<?php return $a !== null;",
		},
		{
			name: "not equal false",
			src:  "<?php return is_null($a) != false;",
			want: "<?php return $a === null;",
		},
		{
			name: "negated call equal true",
			src:  "<?php return !is_null($a) == true;",
			want: "<?php return $a !== null;",
		},
		{
			name: "literal on the left",
			src:  "<?php return false === is_null($a);",
			want: "<?php return null !== $a;",
		},
		{
			name: "literal on the left with negation",
			src:  "<?php return true !== !is_null($a);",
			want: "<?php return null === $a;",
		},
		{
			name: "literal on the left after logical operator",
			src:  "<?php return $x && TRUE == is_null($a);",
			want: "<?php return $x && null === $a;",
		},
		{
			name: "compared with an expression on the right",
			src:  "<?php return is_null($a) === $b;",
			want: "<?php return $b === (null === $a);",
		},
		{
			name: "compared with an expression on the left",
			src:  "<?php return $b == is_null($a);",
			want: "<?php return $b == (null === $a);",
		},
		{
			name: "whitespace kept around the operator",
			src:  "<?php return is_null($a)  ===  true;",
			want: "<?php return $a  ===  null;",
		},
		{
			name: "inside a condition",
			src:  "<?php if (is_null($a) && $b) {}",
			want: "<?php if (null === $a && $b) {}",
		},
		{
			name: "array index and coalesce",
			src:  "<?php $x = $a[is_null($b)] ?? 1;",
			want: "<?php $x = $a[null === $b] ?? 1;",
		},
		{
			name: "ternary",
			src:  "<?php $x = is_null($a) ? 1 : 2;",
			want: "<?php $x = null === $a ? 1 : 2;",
		},
		{
			name: "call argument",
			src:  "<?php f(is_null($a), !is_null($b));",
			want: "<?php f(null === $a, null !== $b);",
		},
		{
			name: "operand of a tighter operator",
			src:  "<?php $x = 'a' . is_null($a);",
			want: "<?php $x = 'a' . (null === $a);",
		},
		{
			name: "loose argument",
			src:  "<?php return is_null($a ?: $b);",
			want: "<?php return null === ($a ?: $b);",
		},
		{
			name: "nested calls",
			src:  "<?php return is_null(is_null($a));",
			want: "<?php return null === (null === $a);",
		},
		{
			name: "several calls",
			src:  "<?php return is_null($a) || !is_null($b);",
			want: "<?php return null === $a || null !== $b;",
		},
		{
			name: "fully qualified",
			src:  "<?php return !\\is_null($a->b());",
			want: "<?php return null !== $a->b();",
		},
		{
			name: "case insensitive",
			src:  "<?php return IS_NULL($a);",
			want: "<?php return null === $a;",
		},
	}

	f := newNullStrict(t)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, _ := runFixer(t, f, tt.src)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNullStrict_Unchanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"method", "<?php $this->is_null($a);"},
		{"nullsafe method", "<?php $this?->is_null($a);"},
		{"static method", "<?php Foo::is_null($a);"},
		{"declaration", "<?php function is_null($a) {}"},
		{"namespaced function", "<?php Foo\\is_null($a);"},
		{"instantiation", "<?php new is_null($a);"},
		{"variable function", "<?php $is_null($a);"},
		{"several arguments", "<?php is_null($a, $b);"},
		{"spread argument", "<?php is_null(...$args);"},
		{"no argument", "<?php is_null();"},
		{"not a call", "<?php $f = 'is_null';"},
		{"constant", "<?php return is_null;"},
		{"no php", "<p>is_null($a)</p>"},
	}

	f := newNullStrict(t)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, edits := runFixer(t, f, tt.src)
			assert.Equal(t, tt.src, got)
			assert.Empty(t, edits)
		})
	}
}

func TestNullStrict_Edits(t *testing.T) {
	t.Parallel()

	src := "<?php\nreturn is_null($a) === true;\n$x = !is_null($b);\n"
	got, edits := runFixer(t, newNullStrict(t), src)
	assert.Equal(t, "<?php\nreturn $a === null;\n$x = null !== $b;\n", got)

	assert.Equal(t, []Edit{
		{Rule: NullStrictName, Line: 2, Col: 8, Before: "is_null($a) === true", After: "$a === null"},
		{Rule: NullStrictName, Line: 3, Col: 6, Before: "!is_null($b)", After: "null !== $b"},
	}, edits)
}

func TestNullStrict_Idempotent(t *testing.T) {
	t.Parallel()

	f := newNullStrict(t)
	once, _ := runFixer(t, f, "<?php if (!is_null($a) && is_null($b) === false) { return is_null(c($d)); }")
	twice, edits := runFixer(t, f, once)
	assert.Equal(t, once, twice)
	assert.Empty(t, edits)
}

func TestNullStrict_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	src := "<?php return is_null($a);"
	buf := tokenize(t, src)

	out, _, err := newNullStrict(t).Fix(buf)
	require.NoError(t, err)
	assert.Equal(t, "<?php return null === $a;", out.Code())
	assert.Equal(t, src, buf.Code())
}

func TestNullStrict_Predicate(t *testing.T) {
	t.Parallel()

	f := newNullStrict(t, WithPredicate("is_nil"))
	got, _ := runFixer(t, f, "<?php return is_nil($a) || is_null($b);")
	assert.Equal(t, "<?php return null === $a || is_null($b);", got)
	assert.Contains(t, f.Description(), "is_nil")
}

func TestNullStrict_Skip(t *testing.T) {
	t.Parallel()

	f := newNullStrict(t, WithSkip(func(rule string, line int) bool {
		return rule == NullStrictName && line == 2
	}))
	got, edits := runFixer(t, f, "<?php\nreturn is_null($a);\nreturn is_null($b);\n")
	assert.Equal(t, "<?php\nreturn is_null($a);\nreturn null === $b;\n", got)
	require.Len(t, edits, 1)
	assert.Equal(t, 3, edits[0].Line)
}

func TestNullStrict_Malformed(t *testing.T) {
	t.Parallel()

	sources := []string{
		"<?php return is_null($a;",
		"<?php return is_null($a) === ;",
	}
	for _, src := range sources {
		_, _, err := newNullStrict(t).Fix(tokenize(t, src))
		assert.ErrorIs(t, err, ErrMalformedInput, src)
	}
}

func TestCanonicalizeNullChecks(t *testing.T) {
	t.Parallel()

	out, err := CanonicalizeNullChecks(tokenize(t, "<?php $ok = !is_null($a) && is_null($b);"))
	require.NoError(t, err)
	assert.Equal(t, "<?php $ok = null !== $a && null === $b;", lexer.Render(out))
}

func TestFixers_Combined(t *testing.T) {
	t.Parallel()

	src := "<?php if (!is_null($a) && $b || is_null($c) === false) {}"
	buf := tokenize(t, src)

	buf, err := CanonicalizeNullChecks(buf)
	require.NoError(t, err)
	buf, err = ExplicitateConditions(buf)
	require.NoError(t, err)

	assert.Equal(t, "<?php if (null !== $a && true == $b || $c !== null) {}", lexer.Render(buf))
}

func TestNullStrict_Metadata(t *testing.T) {
	t.Parallel()

	f := newNullStrict(t)
	assert.Equal(t, NullStrictName, f.Name())
	assert.Equal(t, "replace is_null() calls with strict null comparisons", f.Description())
}
