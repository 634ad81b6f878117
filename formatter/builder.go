package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	"github.com/gnolang/condfix/internal"
	"github.com/gnolang/condfix/internal/rewrite"
	tt "github.com/gnolang/condfix/internal/types"
)

const tabWidth = 8

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	infoStyle       = color.New(color.FgHiCyan, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	gutterStyle     = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

// issueFormatter renders the issues of one rule.
type issueFormatter interface {
	IssueTemplate() string
}

var funcMap = template.FuncMap{
	"header":    header,
	"snippet":   codeSnippet,
	"underline": underlineAndMessage,
	"rewritten": rewrittenSnippet,
	"note":      note,
}

var (
	generalTemplate = mustParse(&GeneralIssueFormatter{})
	ruleTemplates   = map[string]*template.Template{
		rewrite.ExplicitConditionName: mustParse(&ExplicitConditionFormatter{}),
		rewrite.NullStrictName:        mustParse(&NullStrictFormatter{}),
	}
)

func mustParse(f issueFormatter) *template.Template {
	return template.Must(template.New(fmt.Sprintf("%T", f)).Funcs(funcMap).Parse(f.IssueTemplate()))
}

func templateFor(rule string) *template.Template {
	if tmpl, ok := ruleTemplates[rule]; ok {
		return tmpl
	}
	return generalTemplate
}

// GenerateFormattedIssue renders issues against the source they were found
// in. source may be nil when the file can no longer be read.
func GenerateFormattedIssue(issues []tt.Issue, source *internal.SourceCode) string {
	var lines []string
	if source != nil {
		lines = source.Lines
	}

	var sb strings.Builder
	for _, issue := range issues {
		view := newIssueView(issue, lines)
		if err := templateFor(issue.Rule).Execute(&sb, view); err != nil {
			fmt.Fprintf(&sb, "error formatting %s issue: %v\n", issue.Rule, err)
		}
	}
	return sb.String()
}

// issueView is what the templates see of one issue.
type issueView struct {
	Rule        string
	Severity    string
	Filename    string
	Message     string
	Note        string
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int

	Lines     []string
	Indent    string
	Width     int
	Padding   string
	Rewritten []string
}

func newIssueView(issue tt.Issue, lines []string) issueView {
	v := issueView{
		Rule:        issue.Rule,
		Severity:    issue.Severity.String(),
		Filename:    issue.Filename,
		Message:     issue.Message,
		Note:        issue.Note,
		StartLine:   issue.Start.Line,
		StartColumn: issue.Start.Column,
		EndLine:     max(issue.End.Line, issue.Start.Line),
		EndColumn:   issue.End.Column,
		Lines:       lines,
	}
	if isValidLineRange(v.StartLine, v.EndLine, lines) {
		v.Indent = findCommonIndent(lines[v.StartLine-1 : v.EndLine])
	}
	if issue.Suggestion != "" {
		v.Rewritten = spliceRewrite(lines, v, issue.Suggestion)
	}

	last := v.EndLine
	if n := v.StartLine + len(v.Rewritten) - 1; n > last {
		last = n
	}
	v.Width = len(strconv.Itoa(last))
	v.Padding = strings.Repeat(" ", v.Width+1)
	return v
}

// spliceRewrite returns the source lines of the site with the replaced text
// swapped for replacement and highlighted. When the site does not lie
// within lines, the replacement alone is returned.
func spliceRewrite(lines []string, v issueView, replacement string) []string {
	highlighted := suggestionStyle.Sprint(replacement)
	if !isValidLineRange(v.StartLine, v.EndLine, lines) {
		return strings.Split(highlighted, "\n")
	}
	first, last := lines[v.StartLine-1], lines[v.EndLine-1]
	if v.StartColumn < 1 || v.StartColumn-1 > len(first) || v.EndColumn < 0 || v.EndColumn > len(last) {
		return strings.Split(highlighted, "\n")
	}

	spliced := first[:v.StartColumn-1] + highlighted + last[v.EndColumn:]
	out := strings.Split(spliced, "\n")
	for i := range out {
		out[i] = strings.TrimPrefix(out[i], v.Indent)
	}
	return out
}

func header(v issueView) string {
	var sb strings.Builder
	switch v.Severity {
	case "ERROR":
		sb.WriteString(errorStyle.Sprint("error: "))
	case "WARNING":
		sb.WriteString(warningStyle.Sprint("warning: "))
	case "INFO":
		sb.WriteString(infoStyle.Sprint("info: "))
	}
	sb.WriteString(ruleStyle.Sprintf("%s\n", v.Rule))
	sb.WriteString(gutterStyle.Sprintf("%s--> ", strings.Repeat(" ", v.Width)))
	sb.WriteString(fileStyle.Sprintf("%s:%d:%d", v.Filename, v.StartLine, v.StartColumn))
	sb.WriteString("\n")
	return sb.String()
}

func numberedLine(width, n int, text string) string {
	return gutterStyle.Sprintf("%*d | ", width, n) + expandTabs(text) + "\n"
}

func codeSnippet(v issueView) string {
	var sb strings.Builder
	sb.WriteString(gutterStyle.Sprintf("%s|\n", v.Padding))
	for n := v.StartLine; n <= v.EndLine; n++ {
		if n < 1 || n > len(v.Lines) {
			continue
		}
		sb.WriteString(numberedLine(v.Width, n, strings.TrimPrefix(v.Lines[n-1], v.Indent)))
	}
	return sb.String()
}

func underlineAndMessage(v issueView) string {
	message := gutterStyle.Sprintf("%s= ", v.Padding) + messageStyle.Sprintf("%s\n", v.Message)
	if !isValidLineRange(v.StartLine, v.EndLine, v.Lines) {
		return message
	}

	indentWidth := calculateVisualColumn(v.Indent, len(v.Indent)+1)
	first := v.Lines[v.StartLine-1]
	from := max(calculateVisualColumn(first, v.StartColumn)-indentWidth, 0)

	// a multi-line site is underlined to the end of its first line
	endColumn := len(first)
	if v.EndLine == v.StartLine {
		endColumn = v.EndColumn
	}
	to := calculateVisualColumn(first, endColumn) - indentWidth

	return gutterStyle.Sprintf("%s| ", v.Padding) +
		strings.Repeat(" ", from) +
		messageStyle.Sprintf("%s\n", strings.Repeat("~", max(to-from+1, 1))) +
		message
}

func rewrittenSnippet(v issueView) string {
	if len(v.Rewritten) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(suggestionStyle.Sprint("Suggestion:\n"))
	sb.WriteString(gutterStyle.Sprintf("%s|\n", v.Padding))
	for i, line := range v.Rewritten {
		sb.WriteString(numberedLine(v.Width, v.StartLine+i, line))
	}
	sb.WriteString(gutterStyle.Sprintf("%s|\n", v.Padding))
	return sb.String()
}

func note(text string) string {
	if text == "" {
		return ""
	}
	return suggestionStyle.Sprint("Note: ") + gutterStyle.Sprintf("%s\n", text)
}

func isValidLineRange(startLine, endLine int, lines []string) bool {
	return startLine > 0 && startLine <= endLine && endLine <= len(lines)
}

// calculateVisualColumn returns the visual column of the byte at column,
// taking tab stops into account.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visual := 0
	for i, ch := range line {
		if i+1 == column {
			break
		}
		if ch == '\t' {
			visual += tabWidth - visual%tabWidth
		} else {
			visual++
		}
	}
	return visual
}

// expandTabs replaces tab characters with spaces up to the next tab stop.
func expandTabs(line string) string {
	if !strings.ContainsRune(line, '\t') {
		return line
	}
	var sb strings.Builder
	column := 0
	for _, ch := range line {
		if ch != '\t' {
			sb.WriteRune(ch)
			column++
			continue
		}
		spaces := tabWidth - column%tabWidth
		sb.WriteString(strings.Repeat(" ", spaces))
		column += spaces
	}
	return sb.String()
}

// findCommonIndent returns the leading whitespace shared by every
// non-blank line.
func findCommonIndent(lines []string) string {
	var indent []rune
	found := false
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		current := []rune(line[:len(line)-len(trimmed)])
		if !found {
			indent, found = current, true
			continue
		}
		indent = commonPrefix(indent, current)
		if len(indent) == 0 {
			break
		}
	}
	return string(indent)
}

func commonPrefix(a, b []rune) []rune {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
