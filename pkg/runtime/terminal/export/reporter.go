package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/cloud-atlas/pkg/services/analyzer"
)

// Reporter renders an analysis result to the console in a formatted
// text form.
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(result *analyzer.Result) error {
	tmpl := `
Run: {{.Summary.RunDir}}

Services: {{.Summary.ServicesCount}}  Regions: {{.Summary.RegionsCount}}  Resources: {{.Summary.TotalResources}}
Overall maturity: {{printf "%.1f" .Summary.OverallScore}} / 5
{{if .Index.TopServices}}
Top services:
{{range .Index.TopServices}}  {{.Name}}: {{.Resources}}
{{end}}{{end}}
=== Scores ===
{{range .Scores.Domains}}
{{.Domain}}: {{.Score}}/5
{{range .Rationale}}  - {{.}}
{{end}}{{end}}
=== Findings ({{.Findings.Total}}) ===
{{range .Findings.Findings}}
[{{.SeverityLabel}}] {{.ID}} {{.Title}} ({{.Domain}})
  {{.Description}}
  Recommendation: {{.Recommendation}}
{{end}}
`
	t, err := template.New("report").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, result)
}
