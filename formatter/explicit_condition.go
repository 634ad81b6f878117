package formatter

// ExplicitConditionFormatter shows the condition with its comparison in
// place. The replaced text is already underlined, so no note is printed.
type ExplicitConditionFormatter struct{}

func (f *ExplicitConditionFormatter) IssueTemplate() string {
	return `{{header . -}}
{{snippet . -}}
{{underline . -}}
{{rewritten .}}
`
}
