package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFunctions(t *testing.T) {
	t.Parallel()

	f := NewFunctions("Foo", "bar_baz")
	assert.Equal(t, 2, f.Len())

	tests := []struct {
		name string
		want bool
	}{
		{"foo", true},
		{"FOO", true},
		{`\foo`, true},
		{"Bar_Baz", true},
		{"baz", false},
		{`Ns\foo`, false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Contains(tt.name), tt.name)
	}

	g := f.With("Qux")
	assert.True(t, g.Contains("qux"))
	assert.True(t, g.Contains("foo"))
	assert.False(t, f.Contains("qux"))
	assert.Equal(t, 3, g.Len())
}

func TestBuiltinFunctions(t *testing.T) {
	t.Parallel()

	f := BuiltinFunctions()
	for _, name := range []string{"strlen", "count", "is_null", "in_array", "array_key_exists"} {
		assert.True(t, f.Contains(name), name)
	}
	assert.False(t, f.Contains("my_custom_helper"))

	for _, name := range DefaultStrictFunctions {
		assert.True(t, f.Contains(name), "strict function %s is not a builtin", name)
	}
}
