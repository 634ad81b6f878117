package nolint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/condfix/internal/lexer"
)

func TestParseNolintRules(t *testing.T) {
	t.Parallel()
	result := parseIgnoreRuleNames("rule1, rule2,rule3,")
	assert.Len(t, result, 3)
	for _, rule := range []string{"rule1", "rule2", "rule3"} {
		assert.Contains(t, result, rule)
	}
}

func TestDirectiveText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		comment string
		want    string
		ok      bool
	}{
		{"//nolint", "nolint", true},
		{"// nolint:null-strict", "nolint:null-strict", true},
		{"# nolint", "nolint", true},
		{"/* nolint:explicit-condition */", "nolint:explicit-condition", true},
		{"/** nolint */", "nolint", true},
		{"// keep this", "", false},
		{"// see nolint", "", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.comment, func(t *testing.T) {
			t.Parallel()
			got, ok := directiveText(tt.comment)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsNolint(t *testing.T) {
	t.Parallel()
	source := `<?php

function main($a, $b) {
    // nolint
    if ($a) {
        echo 5;
    }
    if ($b) { echo 8; } // nolint:explicit-condition
    # nolint:null-strict
    return is_null($a);
}
`
	buf, err := lexer.Tokenize(source)
	require.NoError(t, err)

	manager := ParseComments(buf)
	require.NotNil(t, manager)

	tests := []struct {
		line     int
		rule     string
		expected bool
	}{
		{4, "anyrule", true},
		{5, "explicit-condition", true},
		{7, "null-strict", true},
		{8, "explicit-condition", true},
		{8, "null-strict", false},
		{10, "null-strict", true},
		{10, "explicit-condition", false},
		{3, "explicit-condition", false},
	}
	for _, tt := range tests {
		tt := tt
		assert.Equal(t, tt.expected, manager.IsNolint(tt.line, tt.rule), "line %d rule %s", tt.line, tt.rule)
	}
}

func TestFileLevelNolint(t *testing.T) {
	t.Parallel()
	source := `<?php
// nolint:null-strict

return is_null($a);
`
	buf, err := lexer.Tokenize(source)
	require.NoError(t, err)

	manager := ParseComments(buf)
	assert.True(t, manager.IsNolint(4, "null-strict"))
	assert.False(t, manager.IsNolint(4, "explicit-condition"))
}

func TestInvalidNolint(t *testing.T) {
	t.Parallel()
	source := `<?php
$x = 1;
// nolint:
if ($a) {}
// nolintfoo
if ($b) {}
`
	buf, err := lexer.Tokenize(source)
	require.NoError(t, err)

	manager := ParseComments(buf)
	assert.False(t, manager.IsNolint(4, "explicit-condition"))
	assert.False(t, manager.IsNolint(6, "explicit-condition"))
}
