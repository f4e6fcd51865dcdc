package handler

import (
	"net/http"
	"strings"

	"civic-portal/internal/domain"
	"civic-portal/internal/middleware"
	"civic-portal/internal/repository"
	"civic-portal/internal/response"
	"civic-portal/internal/xerrors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AnnouncementHandler struct {
	repo      repository.AnnouncementsRepo
	uploadDir string
	logger    *zap.Logger
}

func NewAnnouncementHandler(repo repository.AnnouncementsRepo, uploadDir string, logger *zap.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{repo: repo, uploadDir: uploadDir, logger: logger}
}

// Create accepts JSON or a multipart form with an optional image.
func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var a domain.Announcement

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, xerrors.ErrInvalidRequest)
			return
		}
		a.Title = r.FormValue("title")
		a.Body = r.FormValue("body")
		a.Pinned = r.FormValue("pinned") == "true"

		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			_, url, err := saveUpload(h.uploadDir, files[0])
			if err != nil {
				h.logger.Error("announcement image upload failed", zap.Error(err))
				writeError(w, err)
				return
			}
			a.Image = &url
		}
	} else {
		var in struct {
			Title  string  `json:"title"`
			Body   string  `json:"body"`
			Image  *string `json:"image"`
			Pinned bool    `json:"pinned"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, err)
			return
		}
		a = domain.Announcement{Title: in.Title, Body: in.Body, Image: in.Image, Pinned: in.Pinned}
	}

	if strings.TrimSpace(a.Title) == "" || strings.TrimSpace(a.Body) == "" {
		writeError(w, xerrors.ErrMissingFields)
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	a.AuthorID = userID

	if err := h.repo.Create(r.Context(), &a); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]interface{}{"announcement": a})
}

func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	var pinned *bool
	if v := r.URL.Query().Get("pinned"); v != "" {
		b := v == "true"
		pinned = &b
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	items, total, err := h.repo.List(r.Context(), page, limit, pinned)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []domain.Announcement{}
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"page":          page,
		"totalPages":    (total + limit - 1) / limit,
		"total":         total,
		"announcements": items,
	})
}

func (h *AnnouncementHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	a, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"announcement": a})
}
