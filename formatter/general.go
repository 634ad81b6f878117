package formatter

// GeneralIssueFormatter renders issues of rules without a dedicated layout.
type GeneralIssueFormatter struct{}

func (f *GeneralIssueFormatter) IssueTemplate() string {
	return `{{header . -}}
{{snippet . -}}
{{underline . -}}
{{rewritten . -}}
{{note .Note}}
`
}
