package blog

import (
	"html/template"
	"strings"
)

var pages = template.Must(template.New("blog").Parse(`
{{- define "index" -}}
<html><head><title>Posts</title></head><body>
<h1>Posts</h1>
{{- if .Posts}}
<ul>
{{- range .Posts}}
<li><a href="/posts/{{.ID}}">{{.Title}}</a> <small>{{.Locale}}</small></li>
{{- end}}
</ul>
{{- else}}
<p>No posts yet.</p>
{{- end}}
</body></html>
{{- end -}}

{{- define "show" -}}
<html lang="{{.Locale}}"><head><title>{{.Title}}</title></head><body>
<h1>{{.Title}}</h1>
<p>{{.Body}}</p>
<p><small>{{.CreatedAt.Format "2006-01-02 15:04"}}</small></p>
</body></html>
{{- end -}}
`))

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := pages.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
