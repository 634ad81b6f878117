package types

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Position is a location in a source file. Line and Column are 1-based.
type Position struct {
	Filename string `json:"filename,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Issue represents a rewrite found in the code base.
type Issue struct {
	Rule       string   `json:"rule"`
	Category   string   `json:"category,omitempty"`
	Filename   string   `json:"filename"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	Note       string   `json:"note,omitempty"`
	Start      Position `json:"start"`
	End        Position `json:"end"`
	Severity   Severity `json:"severity"`
}

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a configuration value such as "warning" to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return SeverityError, nil
	case "WARNING":
		return SeverityWarning, nil
	case "INFO":
		return SeverityInfo, nil
	case "OFF":
		return SeverityOff, nil
	}
	return SeverityError, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalYAML() (any, error) {
	return strings.ToLower(s.String()), nil
}

func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseSeverity(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = parsed
	return nil
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ConfigRule is the configuration of a single rule.
type ConfigRule struct {
	Severity Severity `yaml:"severity"`

	// explicit-condition
	Assignments bool `yaml:"assignments,omitempty"`
	MaxDepth    int  `yaml:"max_depth,omitempty"`

	// null-strict
	Predicate string `yaml:"predicate,omitempty"`
}
