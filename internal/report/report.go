// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders recovered papers as a standalone HTML page: one
// table row per paper, in the order given, with inline styles and no
// scripts or external assets.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// DefaultOutput is the report path used when none is given.
const DefaultOutput = "ai_papers_report.html"

var pageTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"join": func(authors []string) string { return strings.Join(authors, ", ") },
}).Parse(`
<html>
<head>
    <meta charset="UTF-8">
    <title>AI Research Papers on {{.Date}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        table { width: 100%; border-collapse: collapse; }
        th, td { border: 1px solid #ddd; padding: 12px; text-align: left; }
        th { background-color: #f2f2f2; }
        a { color: #007acc; text-decoration: none; }
        a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h2>Top AI Research Papers from arXiv on {{.Date}}</h2>
    <table>
        <tr>
            <th>Title</th>
            <th>Authors</th>
            <th>Abstract</th>
        </tr>
{{- range .Papers}}
        <tr>
            <td><a href="{{.URL}}" target="_blank">{{.Title}}</a></td>
            <td>{{join .Authors}}</td>
            <td>{{.Summary}}</td>
        </tr>
{{- end}}
    </table>
</body>
</html>
`))

type page struct {
	Date   string
	Papers []types.Paper
}

// Render builds the HTML document for papers under the given date heading.
// Text is HTML-escaped and URLs with unsafe schemes are neutralised by
// html/template.
func Render(papers []types.Paper, date string) (string, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, page{Date: date, Papers: papers}); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return buf.String(), nil
}

// Write stores doc at path as UTF-8, replacing any existing file.
func Write(path, doc string) error {
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
