// Package syntax checks that PHP source parses.
//
// The fixers only ever see tokens; a rewritten file is parsed before it is
// written so that a rewrite can never turn valid source into invalid source.
package syntax

import (
	"errors"
	"fmt"
	"strings"

	"github.com/VKCOM/php-parser/pkg/conf"
	phperrors "github.com/VKCOM/php-parser/pkg/errors"
	"github.com/VKCOM/php-parser/pkg/parser"
	"github.com/VKCOM/php-parser/pkg/version"
)

// ErrInvalidSyntax is returned when source does not parse.
var ErrInvalidSyntax = errors.New("invalid PHP syntax")

// DefaultVersion is the PHP language version used when none is configured.
const DefaultVersion = "8.1"

// ParseVersion parses a "major.minor" PHP version.
func ParseVersion(v string) (*version.Version, error) {
	if v == "" {
		v = DefaultVersion
	}
	var major, minor uint64
	if _, err := fmt.Sscanf(v, "%d.%d", &major, &minor); err != nil {
		return nil, fmt.Errorf("invalid PHP version %q: %w", v, err)
	}
	return &version.Version{Major: major, Minor: minor}, nil
}

// Validate parses src with the given PHP version and returns an error
// wrapping ErrInvalidSyntax listing the parser's complaints.
func Validate(src []byte, v *version.Version) error {
	if v == nil {
		var err error
		if v, err = ParseVersion(DefaultVersion); err != nil {
			return err
		}
	}

	var problems []*phperrors.Error
	root, err := parser.Parse(src, conf.Config{
		Version:          v,
		ErrorHandlerFunc: func(e *phperrors.Error) { problems = append(problems, e) },
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSyntax, err)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSyntax, describe(problems))
	}
	if root == nil {
		return fmt.Errorf("%w: empty syntax tree", ErrInvalidSyntax)
	}
	return nil
}

func describe(problems []*phperrors.Error) string {
	msgs := make([]string, 0, len(problems))
	for _, p := range problems {
		if p.Pos != nil {
			msgs = append(msgs, fmt.Sprintf("line %d: %s", p.Pos.StartLine, p.Msg))
			continue
		}
		msgs = append(msgs, p.Msg)
	}
	return strings.Join(msgs, "; ")
}
