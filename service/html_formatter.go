package service

import (
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/ludo-technologies/oopscan/domain"
	"github.com/ludo-technologies/oopscan/internal/version"
)

// HTMLFormatter renders an analysis report as a self-contained HTML page
type HTMLFormatter struct{}

// NewHTMLFormatter creates a new HTML formatter
func NewHTMLFormatter() *HTMLFormatter {
	return &HTMLFormatter{}
}

// HTMLRuleSection holds one rule's data for the HTML template
type HTMLRuleSection struct {
	Name       string
	Violations []domain.Violation
}

// HTMLData represents the data for the HTML template
type HTMLData struct {
	GeneratedAt   string
	Version       string
	FilesAnalyzed []string
	Total         int
	Errors        int
	Warnings      int
	Infos         int
	Rules         []HTMLRuleSection
	ErrorRecords  []domain.AnalysisError
}

// Write renders the report as HTML
func (f *HTMLFormatter) Write(report *domain.AnalysisReport, writer io.Writer) error {
	data := HTMLData{
		GeneratedAt:   report.GeneratedAt.Format("2006-01-02 15:04:05"),
		Version:       version.Version,
		FilesAnalyzed: report.FilesAnalyzed,
		Total:         report.TotalViolations,
		Errors:        report.ViolationsBySeverity[domain.SeverityError],
		Warnings:      report.ViolationsBySeverity[domain.SeverityWarning],
		Infos:         report.ViolationsBySeverity[domain.SeverityInfo],
		ErrorRecords:  report.Errors,
	}

	names := make([]string, 0, len(report.Results))
	for name := range report.Results {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		result := report.Results[name]
		if result == nil || result.ViolationCount == 0 {
			continue
		}
		data.Rules = append(data.Rules, HTMLRuleSection{
			Name:       name,
			Violations: result.Violations,
		})
	}

	funcMap := template.FuncMap{
		"severityClass": func(s domain.Severity) string {
			switch s {
			case domain.SeverityError:
				return "severity-error"
			case domain.SeverityWarning:
				return "severity-warning"
			default:
				return "severity-info"
			}
		},
		"now": func() string {
			return time.Now().Format("2006-01-02 15:04:05")
		},
	}

	tmpl := template.Must(template.New("report").Funcs(funcMap).Parse(htmlTemplate))
	return tmpl.Execute(writer, data)
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>oopscan Analysis Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
        }
        .container {
            max-width: 1100px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background: white;
            border-radius: 10px;
            padding: 30px;
            margin-bottom: 20px;
            box-shadow: 0 10px 30px rgba(0,0,0,0.1);
        }
        .header h1 {
            color: #667eea;
            margin-bottom: 10px;
        }
        .header .subtitle {
            color: #666;
            font-size: 14px;
        }
        .metric-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
            gap: 20px;
            margin: 20px 0;
        }
        .metric-card {
            background: #f8f9fa;
            padding: 20px;
            border-radius: 8px;
            text-align: center;
        }
        .metric-value {
            font-size: 32px;
            font-weight: bold;
            color: #667eea;
        }
        .metric-label {
            color: #666;
            margin-top: 5px;
        }
        .section {
            background: white;
            border-radius: 10px;
            padding: 30px;
            margin-bottom: 20px;
            box-shadow: 0 10px 30px rgba(0,0,0,0.1);
        }
        .section h2 {
            color: #667eea;
            margin-bottom: 15px;
        }
        .table {
            width: 100%;
            border-collapse: collapse;
            margin: 10px 0;
        }
        .table th, .table td {
            padding: 10px 12px;
            text-align: left;
            border-bottom: 1px solid #ddd;
            vertical-align: top;
        }
        .table th {
            background: #f8f9fa;
            font-weight: 600;
        }
        .badge {
            display: inline-block;
            padding: 2px 10px;
            border-radius: 12px;
            font-size: 12px;
            font-weight: bold;
            color: white;
        }
        .severity-error { background: #f44336; }
        .severity-warning { background: #ff9800; }
        .severity-info { background: #2196f3; }
        .suggestion {
            color: #666;
            font-size: 13px;
        }
        .location {
            font-family: monospace;
            font-size: 13px;
            white-space: nowrap;
        }
        .footer {
            text-align: center;
            color: rgba(255,255,255,0.8);
            font-size: 13px;
            padding: 10px;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>OOP Design Analysis</h1>
            <div class="subtitle">Generated {{.GeneratedAt}} &middot; oopscan {{.Version}} &middot; {{len .FilesAnalyzed}} file(s) analyzed</div>
            <div class="metric-grid">
                <div class="metric-card">
                    <div class="metric-value">{{.Total}}</div>
                    <div class="metric-label">Total violations</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.Errors}}</div>
                    <div class="metric-label">Errors</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.Warnings}}</div>
                    <div class="metric-label">Warnings</div>
                </div>
                <div class="metric-card">
                    <div class="metric-value">{{.Infos}}</div>
                    <div class="metric-label">Info</div>
                </div>
            </div>
        </div>

        {{range .Rules}}
        <div class="section">
            <h2>{{.Name}} ({{len .Violations}})</h2>
            <table class="table">
                <thead>
                    <tr>
                        <th>Location</th>
                        <th>Severity</th>
                        <th>Message</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .Violations}}
                    <tr>
                        <td class="location">{{.FilePath}}:{{.Line}}:{{.Column}}</td>
                        <td><span class="badge {{severityClass .Severity}}">{{.Severity}}</span></td>
                        <td>
                            {{.Message}}
                            {{if .Suggestion}}<div class="suggestion">{{.Suggestion}}</div>{{end}}
                        </td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        {{if .ErrorRecords}}
        <div class="section">
            <h2>Errors</h2>
            <table class="table">
                <thead>
                    <tr>
                        <th>Type</th>
                        <th>File</th>
                        <th>Message</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .ErrorRecords}}
                    <tr>
                        <td>{{.Type}}</td>
                        <td class="location">{{.FilePath}}</td>
                        <td>{{.Message}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </div>
        {{end}}

        {{if not .Rules}}
        <div class="section">
            <h2>No design violations found</h2>
        </div>
        {{end}}

        <div class="footer">Rendered {{now}}</div>
    </div>
</body>
</html>
`
