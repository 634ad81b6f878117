package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseSeverity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		want    Severity
		wantErr bool
	}{
		{"error", SeverityError, false},
		{"WARNING", SeverityWarning, false},
		{" info ", SeverityInfo, false},
		{"off", SeverityOff, false},
		{"loud", SeverityError, true},
		{"", SeverityError, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSeverity(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeverityString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "WARNING", SeverityWarning.String())
	assert.Equal(t, "UNKNOWN", Severity(42).String())
}

func TestConfigRuleYAML(t *testing.T) {
	t.Parallel()

	var rules map[string]ConfigRule
	err := yaml.Unmarshal([]byte(`
explicit-condition:
  severity: error
  assignments: true
  max_depth: 8
null-strict:
  severity: info
  predicate: is_nil
`), &rules)
	require.NoError(t, err)
	assert.Equal(t, ConfigRule{Severity: SeverityError, Assignments: true, MaxDepth: 8}, rules["explicit-condition"])
	assert.Equal(t, ConfigRule{Severity: SeverityInfo, Predicate: "is_nil"}, rules["null-strict"])

	out, err := yaml.Marshal(ConfigRule{Severity: SeverityOff})
	require.NoError(t, err)
	assert.Equal(t, "severity: \"off\"\n", string(out))

	err = yaml.Unmarshal([]byte("severity: loud\n"), &ConfigRule{})
	assert.ErrorContains(t, err, "line 1")
}

func TestIssueJSON(t *testing.T) {
	t.Parallel()

	issue := Issue{
		Rule:     "null-strict",
		Filename: "a.php",
		Start:    Position{Line: 2, Column: 8},
		End:      Position{Line: 2, Column: 18},
		Severity: SeverityWarning,
	}
	data, err := json.Marshal(issue)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"severity":"warning"`)

	var decoded Issue
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, issue, decoded)
}
