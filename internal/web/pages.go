package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"agentview/internal/export"
	"agentview/internal/logview"
)

var markdown = goldmark.New(
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Sessions []logview.Summary
		Commands []logview.Command
	}{
		Sessions: logview.Sessions(s.cfg.LogsDir, s.cfg.MaxSessions),
		Commands: logview.Commands(s.cfg.LogsDir, s.cfg.MaxCommandFiles, 25),
	}
	s.renderPage(w, indexTmpl, data)
}

func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	summary, ok := logview.Session(s.cfg.LogsDir, ref)
	if !ok {
		http.NotFound(w, r)
		return
	}
	entries, _ := logview.Transcript(s.cfg.LogsDir, ref)

	var buf bytes.Buffer
	md := export.BuildSessionMarkdown(summary, entries)
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		s.log.Error("render transcript", "ref", ref, "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	data := struct {
		Summary logview.Summary
		Body    template.HTML
	}{Summary: summary, Body: template.HTML(buf.String())}
	s.renderPage(w, sessionTmpl, data)
}

func (s *Server) renderPage(w http.ResponseWriter, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		s.log.Error("render page", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

var indexTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>agentview</title>
  <style>
    body { font-family: ui-sans-serif, system-ui, sans-serif; margin: 0 auto; max-width: 72rem; padding: 1rem; }
    table { border-collapse: collapse; width: 100%; }
    th, td { text-align: left; padding: 4px 8px; border-bottom: 1px solid #eee; font-size: 14px; }
    .meta { color: #666; font-size: 12px; }
    code { background: #f7f7f7; padding: 1px 4px; }
  </style>
</head>
<body>
  <h1>Sessions</h1>
  <table>
    <tr><th>Session</th><th>Last activity</th><th>Messages</th><th>Model</th><th>Tokens</th></tr>
    {{range .Sessions}}
    <tr>
      <td><a href="/session?ref={{.File}}">{{.ID}}</a></td>
      <td class="meta">{{.LastActivity}}</td>
      <td>{{.MessageCount}}</td>
      <td class="meta">{{if .Model}}{{.Provider}}/{{.Model}}{{end}}</td>
      <td class="meta">{{.Tokens.Total}}</td>
    </tr>
    {{end}}
  </table>

  <h1>Recent commands</h1>
  <table>
    <tr><th>Time</th><th>Session</th><th>Tool</th><th>Args</th></tr>
    {{range .Commands}}
    <tr>
      <td class="meta">{{.Timestamp}}</td>
      <td class="meta">{{.SessionID}}</td>
      <td>{{.ToolName}}</td>
      <td><code>{{.Args}}</code></td>
    </tr>
    {{end}}
  </table>
</body>
</html>
`))

var sessionTmpl = template.Must(template.New("session").Parse(`<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>{{.Summary.ID}} - agentview</title>
  <style>
    body { font-family: ui-sans-serif, system-ui, sans-serif; margin: 0 auto; max-width: 56rem; padding: 1rem; }
    pre { background: #f7f7f7; padding: 8px; overflow: auto; }
    blockquote { color: #666; border-left: 3px solid #ddd; margin-left: 0; padding-left: 12px; }
  </style>
</head>
<body>
  <p><a href="/">&larr; all sessions</a></p>
  {{.Body}}
</body>
</html>
`))
