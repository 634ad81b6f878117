package formatter

import (
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/gnolang/condfix/internal"
)

const diffContext = 3

var (
	addedStyle   = color.New(color.FgGreen)
	removedStyle = color.New(color.FgRed)
	hunkStyle    = color.New(color.FgCyan)
	diffHdrStyle = color.New(color.Bold)
)

// UnifiedDiff returns the unified diff between the original and fixed
// source of result, or "" when nothing changed.
func UnifiedDiff(result internal.Result) (string, error) {
	if !result.Changed() {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(result.Original)),
		B:        difflib.SplitLines(string(result.Fixed)),
		FromFile: "a/" + result.Filename,
		ToFile:   "b/" + result.Filename,
		Context:  diffContext,
	})
}

// ColorizeDiff highlights the lines of a unified diff.
func ColorizeDiff(diff string) string {
	if diff == "" {
		return ""
	}
	lines := strings.SplitAfter(diff, "\n")
	var sb strings.Builder
	for _, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		eol := line[len(body):]
		switch {
		case strings.HasPrefix(body, "+++"), strings.HasPrefix(body, "---"):
			sb.WriteString(diffHdrStyle.Sprint(body))
		case strings.HasPrefix(body, "@@"):
			sb.WriteString(hunkStyle.Sprint(body))
		case strings.HasPrefix(body, "+"):
			sb.WriteString(addedStyle.Sprint(body))
		case strings.HasPrefix(body, "-"):
			sb.WriteString(removedStyle.Sprint(body))
		default:
			sb.WriteString(body)
		}
		sb.WriteString(eol)
	}
	return sb.String()
}
