package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/de-tools/problem-report/pkg/services/report"
)

type TableConfig struct {
	ImpactWidth   int
	SeverityWidth int
	CountWidth    int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		ImpactWidth:   24,
		SeverityWidth: 24,
		CountWidth:    8,
	}
}

// Reporter prints a short text summary of an exported report.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (c *Reporter) Handle(result *report.Result) error {
	funcMap := template.FuncMap{
		"formatRow": func(impact, severity string, count interface{}) string {
			return fmt.Sprintf("| %-*s | %-*s | %*v |",
				c.config.ImpactWidth, impact,
				c.config.SeverityWidth, severity,
				c.config.CountWidth, count)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+",
				strings.Repeat("-", c.config.ImpactWidth+2),
				strings.Repeat("-", c.config.SeverityWidth+2),
				strings.Repeat("-", c.config.CountWidth+2))
		},
		"formatMillis": func(ms int64, zone string) string {
			loc, err := time.LoadLocation(zone)
			if err != nil {
				loc = time.UTC
			}
			return time.UnixMilli(ms).In(loc).Format("2006-01-02 15:04")
		},
	}

	tmpl := `
Problems for management zone "{{.ManagementZone}}"
Window: {{formatMillis .Window.From .Window.Location}} to {{formatMillis .Window.To .Window.Location}} ({{.Window.Location}})
Problems: {{len .Rows}}
{{if .Location}}Saved to: {{.Location}}
{{end}}
{{separator}}
{{formatRow "Impact Level" "Severity Level" "Count"}}
{{separator}}
{{range .Aggregates}}{{formatRow .ImpactLevel .SeverityLevel .Count}}
{{end}}{{separator}}
`

	t, err := template.New("summary").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, result)
}
