package handler

import (
	"log/slog"
	"net/http"

	"github.com/cantis/FlaskFactor2/internal/web/templates/pages"
)

// SectionHandler serves the sections that only have a landing page so far
type SectionHandler struct {
	logger *slog.Logger
}

// NewSectionHandler creates a new SectionHandler
func NewSectionHandler(logger *slog.Logger) *SectionHandler {
	return &SectionHandler{logger: logger}
}

// Admin handles GET /admin/
func (h *SectionHandler) Admin(w http.ResponseWriter, r *http.Request) {
	h.section(w, r, "admin", "Admin", "Site administration.")
}

// Characters handles GET /characters/
func (h *SectionHandler) Characters(w http.ResponseWriter, r *http.Request) {
	h.section(w, r, "characters", "Characters", "Player characters and their campaigns.")
}

// Transactions handles GET /transactions/
func (h *SectionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	h.section(w, r, "transactions", "Transactions", "Gold, items and other character transactions.")
}

func (h *SectionHandler) section(w http.ResponseWriter, r *http.Request, section, heading, summary string) {
	data := pages.SectionData{
		PageData: pageData(r, heading),
		Heading:  heading,
		Summary:  summary,
	}
	data.Section = section
	render(w, r, h.logger, http.StatusOK, pages.Section(data))
}
