package httphandler

import (
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type renderer struct {
	log *slog.Logger
}

func newRenderer(log *slog.Logger) *renderer {
	return &renderer{log: log}
}

func (r *renderer) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		r.log.Error("Cannot execute template", slog.String("template", name), slog.Any("error", err))
	}
}

func (r *renderer) notFound(w http.ResponseWriter) {
	r.render(w, http.StatusNotFound, "notfound.html", nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
