// Package handler provides the HTTP surface for ReuniteIt.
package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/reuniteit/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData contains common page data.
type PageData struct {
	Title       string
	Description string
	URL         string

	// User is the signed-in account, nil for anonymous requests.
	User *domain.PublicUser

	// HideAuthNav suppresses the login/signup links (home page, 404).
	HideAuthNav bool

	Errors  []string
	Success string
}

// Renderer executes the embedded templates.
type Renderer struct {
	templates *template.Template
	baseURL   string
	logger    zerolog.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(baseURL string, logger zerolog.Logger) (*Renderer, error) {
	funcs := template.FuncMap{
		"moderationLabel": moderationLabel,
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Renderer{
		templates: tmpl,
		baseURL:   baseURL,
		logger:    logger.With().Str("component", "renderer").Logger(),
	}, nil
}

// PageURL builds the canonical URL for a path.
func (rd *Renderer) PageURL(path string) string {
	return rd.baseURL + path
}

// Render writes the named template with the given status code.
func (rd *Renderer) Render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := rd.templates.ExecuteTemplate(w, name, data); err != nil {
		rd.logger.Error().Err(err).Str("template", name).Msg("failed to render template")
	}
}

func moderationLabel(r *domain.Report) string {
	switch {
	case r.Approved == nil:
		return "Pending"
	case *r.Approved:
		return "Approved"
	default:
		return "Rejected"
	}
}
