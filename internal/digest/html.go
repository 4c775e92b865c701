package digest

import (
	"fmt"
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"
)

// htmlTemplate renders the digest as a standalone HTML page, suitable for
// both the email body and the saved file.
var htmlTemplate = template.Must(template.New("digest").Funcs(template.FuncMap{
	"title": titleCase,
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #333; background-color: #f5f5f5; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: white; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); padding: 30px; }
        .header { text-align: center; border-bottom: 2px solid #4A90E2; padding-bottom: 20px; margin-bottom: 20px; }
        .header h1 { color: #4A90E2; margin: 0; font-size: 28px; }
        .date { color: #999; font-size: 12px; margin-top: 10px; }
        .greeting { color: #333; font-size: 16px; margin-bottom: 20px; }
        .preference-section { margin-bottom: 30px; border-left: 4px solid #4A90E2; padding-left: 15px; }
        .preference-title { color: #4A90E2; font-size: 20px; font-weight: 600; margin-bottom: 15px; }
        .article { margin-bottom: 20px; padding: 15px; background-color: #f9f9f9; border-radius: 4px; }
        .article-title { color: #2C3E50; font-size: 16px; font-weight: 600; margin-bottom: 8px; }
        .article-summary { color: #555; font-size: 14px; line-height: 1.6; margin-bottom: 10px; }
        .article-meta { color: #999; font-size: 12px; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 2px solid #e0e0e0; text-align: center; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Your Personalized Digest</h1>
            <div class="date">{{.GeneratedAt.Format "January 2, 2006"}}</div>
        </div>
        <div class="greeting">
            Good morning, {{.UserName}}! Here's your curated digest based on your interests.
        </div>
{{- range .Sections}}{{if .Items}}
        <div class="preference-section">
            <div class="preference-title">{{title .Preference}}</div>
{{- range .Items}}
            <div class="article">
                <div class="article-title">{{if .URL}}<a href="{{.URL}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}</div>
                <div class="article-summary">{{.Summary}}</div>
                <div class="article-meta">Source: {{.Source}}</div>
            </div>
{{- end}}
        </div>
{{- end}}{{end}}
        <div class="footer">
            <p>This digest was generated automatically from your preferences.</p>
        </div>
    </div>
</body>
</html>
`))

// RenderHTML renders the digest to a full HTML document.
func RenderHTML(d Digest) (string, error) {
	if d.UserName == "" {
		d.UserName = "there"
	}
	var b strings.Builder
	if err := htmlTemplate.Execute(&b, d); err != nil {
		return "", fmt.Errorf("render digest: %w", err)
	}
	return b.String(), nil
}

// titleCase upper-cases the first rune of s.
func titleCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
