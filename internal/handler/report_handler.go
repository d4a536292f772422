package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/reuniteit/internal/auth"
	"github.com/prn-tf/reuniteit/internal/domain"
	"github.com/prn-tf/reuniteit/internal/service"
)

// ReportHandler handles listing pages and report submission.
type ReportHandler struct {
	reports   *service.ReportService
	renderer  *Renderer
	maxUpload int64
	logger    zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reports *service.ReportService, renderer *Renderer, maxUpload int64, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reports:   reports,
		renderer:  renderer,
		maxUpload: maxUpload,
		logger:    logger.With().Str("handler", "report").Logger(),
	}
}

// RegisterRoutes registers the public listing routes.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleHome)
	r.Get("/search", h.handleSearch)
	r.Get("/items", h.handleAllItems)
	r.Get("/searchs", h.handleSearchAll)
	r.Get("/items/{id}", h.handleItemDetail)
}

// RegisterProtectedRoutes registers the routes that need a signed-in account.
func (h *ReportHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/report-lost", h.reportFormPage(domain.StatusLost))
	r.Post("/report-lost", h.submitReport(domain.StatusLost))
	r.Get("/report-found", h.reportFormPage(domain.StatusFound))
	r.Post("/report-found", h.submitReport(domain.StatusFound))
	r.Post("/reports/{id}/delete", h.handleDeleteOwned)
}

// ListPageData contains data for the item listing pages.
type ListPageData struct {
	PageData
	Query string
	Items []*domain.Report
}

// ItemPageData contains data for the item detail page.
type ItemPageData struct {
	PageData
	Item *domain.Report
}

// ReportFormPageData contains data for the lost/found report forms.
type ReportFormPageData struct {
	PageData
	Heading         string
	Action          string
	Category        string
	Location        string
	Date            string
	ItemDescription string
}

func (h *ReportHandler) handleHome(w http.ResponseWriter, r *http.Request) {
	data := ListPageData{
		PageData: PageData{
			Title:       "ReuniteIt | Reuniting Lost Items",
			Description: "Search and report lost or found items easily and quickly.",
			URL:         h.renderer.PageURL("/"),
			User:        auth.UserFrom(r.Context()),
			HideAuthNav: true,
		},
	}

	items, err := h.reports.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load home page items")
		data.Errors = []string{"Unable to load items right now."}
		h.renderer.Render(w, http.StatusInternalServerError, "index.html", data)
		return
	}

	data.Items = items
	h.renderer.Render(w, http.StatusOK, "index.html", data)
}

func (h *ReportHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	h.searchInto(w, r, "index.html", "/search")
}

func (h *ReportHandler) handleSearchAll(w http.ResponseWriter, r *http.Request) {
	h.searchInto(w, r, "all_items.html", "/searchs")
}

func (h *ReportHandler) searchInto(w http.ResponseWriter, r *http.Request, template, path string) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	title := "ReuniteIt | Reuniting Lost Items"
	description := "Search and report lost or found items easily and quickly."
	if q != "" {
		title = "Search: " + q + " | ReuniteIt"
		description = "Search results for \"" + q + "\" - ReuniteIt"
	}

	data := ListPageData{
		PageData: PageData{
			Title:       title,
			Description: description,
			URL:         h.renderer.PageURL(path),
			User:        auth.UserFrom(r.Context()),
		},
		Query: q,
	}

	items, err := h.reports.Search(r.Context(), q)
	if err != nil {
		h.logger.Error().Err(err).Str("query", q).Msg("search failed")
		data.Errors = []string{"Unable to perform search right now. Try again later."}
		h.renderer.Render(w, http.StatusInternalServerError, template, data)
		return
	}

	data.Items = items
	h.renderer.Render(w, http.StatusOK, template, data)
}

func (h *ReportHandler) handleAllItems(w http.ResponseWriter, r *http.Request) {
	data := ListPageData{
		PageData: PageData{
			Title:       "All Items | ReuniteIt",
			Description: "Browse all lost and found items reported by the community.",
			URL:         h.renderer.PageURL("/items"),
			User:        auth.UserFrom(r.Context()),
		},
	}

	items, err := h.reports.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load items")
		data.Errors = []string{"Unable to load items."}
		h.renderer.Render(w, http.StatusInternalServerError, "all_items.html", data)
		return
	}

	data.Items = items
	h.renderer.Render(w, http.StatusOK, "all_items.html", data)
}

func (h *ReportHandler) handleItemDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !domain.ValidID(id) {
		http.Error(w, "Invalid item ID", http.StatusBadRequest)
		return
	}

	item, err := h.reports.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrReportNotFound) {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("report_id", id).Msg("failed to load item")
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	data := ItemPageData{
		PageData: PageData{
			Title:       item.Category + " - Item Details | ReuniteIt",
			Description: item.Description,
			URL:         h.renderer.PageURL("/items/" + item.ID),
			User:        auth.UserFrom(r.Context()),
		},
		Item: item,
	}
	if data.Description == "" {
		data.Description = "Details for " + item.Category
	}
	h.renderer.Render(w, http.StatusOK, "item_detail.html", data)
}

func (h *ReportHandler) formPage(status domain.ReportStatus, user *domain.PublicUser) ReportFormPageData {
	heading, action, description := "Report Lost | ReuniteIt", "/report-lost",
		"Report an item you lost so the community can help find it."
	if status == domain.StatusFound {
		heading, action, description = "Report Found | ReuniteIt", "/report-found",
			"Report an item you found so the owner can be reunited with it."
	}

	return ReportFormPageData{
		PageData: PageData{
			Title:       heading,
			Description: description,
			URL:         h.renderer.PageURL(action),
			User:        user,
		},
		Heading: heading,
		Action:  action,
	}
}

func (h *ReportHandler) reportFormPage(status domain.ReportStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := h.formPage(status, auth.UserFrom(r.Context()))
		h.renderer.Render(w, http.StatusOK, "report_form.html", data)
	}
}

func (h *ReportHandler) submitReport(status domain.ReportStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.UserFrom(r.Context())
		data := h.formPage(status, user)

		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			data.Errors = []string{"Invalid form data"}
			h.renderer.Render(w, http.StatusBadRequest, "report_form.html", data)
			return
		}

		data.Category = r.FormValue("category")
		data.Location = r.FormValue("location")
		data.Date = r.FormValue("date")
		data.ItemDescription = r.FormValue("description")

		file, header, fileErr := r.FormFile("image")
		if data.Category == "" || data.ItemDescription == "" || data.Date == "" || data.Location == "" || fileErr != nil {
			if fileErr == nil {
				file.Close()
			}
			data.Errors = []string{"All fields including image are required"}
			h.renderer.Render(w, http.StatusOK, "report_form.html", data)
			return
		}
		defer file.Close()

		_, err := h.reports.Create(r.Context(), service.CreateReportInput{
			Poster:        user,
			Category:      data.Category,
			Location:      data.Location,
			Status:        status,
			Date:          data.Date,
			Description:   data.ItemDescription,
			Image:         file,
			ImageFilename: header.Filename,
			ImageType:     contentType(header),
		})
		if err != nil {
			if ve, ok := domain.AsValidationError(err); ok {
				data.Errors = ve.Messages
				h.renderer.Render(w, http.StatusOK, "report_form.html", data)
				return
			}
			h.logger.Error().Err(err).Msg("report submission failed")
			data.Errors = []string{"Server error, try again later"}
			h.renderer.Render(w, http.StatusInternalServerError, "report_form.html", data)
			return
		}

		http.Redirect(w, r, "/dashboard", http.StatusFound)
	}
}

func (h *ReportHandler) handleDeleteOwned(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFrom(r.Context())
	id := chi.URLParam(r, "id")
	if !domain.ValidID(id) {
		http.Error(w, "Invalid report id", http.StatusBadRequest)
		return
	}

	err := h.reports.DeleteOwned(r.Context(), id, user.ID)
	switch {
	case err == nil:
		http.Redirect(w, r, "/profile", http.StatusFound)
	case errors.Is(err, domain.ErrReportNotFound):
		http.Error(w, "Report not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrNotReportOwner):
		http.Error(w, "Not authorized to delete this report", http.StatusForbidden)
	default:
		h.logger.Error().Err(err).Str("report_id", id).Msg("report delete failed")
		http.Error(w, "Server error", http.StatusInternalServerError)
	}
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
