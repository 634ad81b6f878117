package nolint

import (
	"fmt"
	"strings"

	"github.com/gnolang/condfix/internal/token"
)

const nolintDirective = "nolint"

// Manager manages nolint scopes and checks if a line is nolinted.
type Manager struct {
	scopes []nolintScope
}

// nolintScope represents a range of lines where nolint applies.
type nolintScope struct {
	rules map[string]struct{}
	start int
	end   int
}

// ParseComments parses nolint comments in the given token buffer and returns a Manager.
func ParseComments(buf *token.Buffer) *Manager {
	manager := Manager{}
	firstCode := firstCodeLine(buf)

	for i := 0; i < buf.Len(); i++ {
		t := buf.At(i)
		if !t.IsComment() {
			continue
		}
		ns, err := parseComment(buf, i, firstCode)
		if err != nil {
			// ignore invalid nolint comments
			continue
		}
		manager.scopes = append(manager.scopes, ns)
	}
	return &manager
}

// parseComment parses a single nolint comment and determines its scope.
func parseComment(buf *token.Buffer, index, firstCode int) (nolintScope, error) {
	var ns nolintScope
	comment := buf.At(index)

	text, ok := directiveText(comment.Text)
	if !ok {
		return ns, fmt.Errorf("invalid nolint comment")
	}
	rest := text[len(nolintDirective):]

	// A nolint comment can either have a list of rules after a colon (:)
	// or if no rules are specified, it applies to all rules
	if len(rest) > 0 && rest[0] != ':' {
		return ns, fmt.Errorf("invalid nolint comment format")
	}
	if len(rest) > 0 {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return ns, fmt.Errorf("invalid nolint comment: no rules specified after colon")
		}
	}
	ns.rules = parseIgnoreRuleNames(rest)
	line := comment.Line

	// A comment above the first line of code applies to the entire file
	if firstCode < 0 || line < firstCode {
		ns.start, ns.end = 1, lastLine(buf)
		return ns, nil
	}

	// Inline comments apply to the line they are on
	if isInlineComment(buf, index) {
		ns.start, ns.end = line, line
		return ns, nil
	}

	// Standalone comments apply to the statement starting on the next line
	next := buf.NextMeaningful(index)
	if next >= 0 && buf.At(next).Line == line+1 {
		ns.start = line
		ns.end = statementEndLine(buf, next)
		return ns, nil
	}

	ns.start, ns.end = line, line
	return ns, nil
}

// directiveText strips the comment markers and returns the directive, or
// false when the comment is not a nolint directive.
func directiveText(comment string) (string, bool) {
	text := comment
	switch {
	case strings.HasPrefix(text, "//"):
		text = text[2:]
	case strings.HasPrefix(text, "#"):
		text = text[1:]
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(strings.TrimLeft(text[2:], "*"), "*/")
	default:
		return "", false
	}
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, nolintDirective) {
		return "", false
	}
	return text, true
}

// parseIgnoreRuleNames parses the rule list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	for _, rule := range strings.Split(text, ",") {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

func isCode(t token.Token) bool {
	return t.IsMeaningful() && !t.Is(token.KindOpenTag) && !t.Is(token.KindInlineHTML)
}

func firstCodeLine(buf *token.Buffer) int {
	for i := 0; i < buf.Len(); i++ {
		if t := buf.At(i); isCode(t) {
			return t.Line
		}
	}
	return -1
}

func lastLine(buf *token.Buffer) int {
	if buf.Len() == 0 {
		return 1
	}
	last := buf.At(buf.Len() - 1)
	return last.Line + strings.Count(last.Text, "\n")
}

// isInlineComment reports whether code precedes the comment on its line.
func isInlineComment(buf *token.Buffer, index int) bool {
	prev := buf.PrevMeaningful(index)
	return prev >= 0 && isCode(buf.At(prev)) && buf.At(prev).Line == buf.At(index).Line
}

// statementEndLine returns the line on which the statement starting at
// start ends: its top-level `;` or the brace closing its first block.
func statementEndLine(buf *token.Buffer, start int) int {
	depth := 0
	for i := start; i < buf.Len(); i++ {
		t := buf.At(i)
		switch {
		case t.Equals(";") && depth == 0:
			return t.Line
		case t.Equals("{"), t.Equals("("), t.Equals("["):
			depth++
		case t.Equals("}"), t.Equals(")"), t.Equals("]"):
			depth--
			if depth == 0 && t.Equals("}") {
				return t.Line
			}
			if depth < 0 {
				return t.Line
			}
		case t.Is(token.KindCloseTag):
			return t.Line
		}
	}
	return lastLine(buf)
}

// IsNolint checks if a given line and rule are nolinted.
func (m *Manager) IsNolint(line int, ruleName string) bool {
	for _, ns := range m.scopes {
		if line < ns.start || line > ns.end {
			continue
		}
		// If the rules list is empty, nolint applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
