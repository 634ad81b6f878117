package formatter

// NullStrictFormatter names the predicate call before the suggestion, since
// a folded boolean comparison disappears from the rewritten line.
type NullStrictFormatter struct{}

func (f *NullStrictFormatter) IssueTemplate() string {
	return `{{header . -}}
{{snippet . -}}
{{underline . -}}
{{note .Note -}}
{{rewritten .}}
`
}
