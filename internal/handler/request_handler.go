package handler

import (
	"net/http"
	"strconv"
	"strings"

	"civic-portal/internal/domain"
	"civic-portal/internal/middleware"
	"civic-portal/internal/response"
	"civic-portal/internal/service"
	"civic-portal/internal/xerrors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RequestHandler serves both lifecycle record kinds; the kind is fixed per
// route group so the payload keys match what each client screen expects.
type RequestHandler struct {
	svc       *service.RequestService
	uploadDir string
	logger    *zap.Logger
}

func NewRequestHandler(svc *service.RequestService, uploadDir string, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{svc: svc, uploadDir: uploadDir, logger: logger}
}

func actorFrom(r *http.Request) service.Actor {
	userID, _ := middleware.GetUserID(r.Context())
	return service.Actor{
		UserID:  userID,
		IsStaff: middleware.IsStaff(r.Context()),
		IsAdmin: middleware.IsAdmin(r.Context()),
	}
}

// itemKey / listKey shape the response envelope per kind.
func itemKey(kind domain.RequestKind) string {
	if kind == domain.KindService {
		return "serviceRequest"
	}
	return "complaint"
}

func listKey(kind domain.RequestKind) string {
	if kind == domain.KindService {
		return "serviceRequests"
	}
	return "complaints"
}

type createRequestBody struct {
	Title           string          `json:"title"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Location        domain.Location `json:"location"`
	Address         string          `json:"address"`
	PaymentRequired bool            `json:"paymentRequired"`
}

// parseCreate accepts either a JSON body or a multipart form with file
// attachments. Multipart attachments are stored before the record is created.
func (h *RequestHandler) parseCreate(r *http.Request, kind domain.RequestKind) (service.CreateInput, error) {
	var body createRequestBody
	var attachments []string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return service.CreateInput{}, xerrors.ErrInvalidRequest
		}
		body.Title = r.FormValue("title")
		body.Category = r.FormValue("category")
		body.Description = r.FormValue("description")
		body.Address = r.FormValue("address")
		body.PaymentRequired = r.FormValue("paymentRequired") == "true"
		if lat, err := strconv.ParseFloat(r.FormValue("lat"), 64); err == nil {
			body.Location.Lat = &lat
		}
		if lng, err := strconv.ParseFloat(r.FormValue("lng"), 64); err == nil {
			body.Location.Lng = &lng
		}

		if r.MultipartForm != nil {
			for _, fh := range r.MultipartForm.File["attachments"] {
				_, url, err := saveUpload(h.uploadDir, fh)
				if err != nil {
					h.logger.Error("attachment upload failed", zap.Error(err))
					return service.CreateInput{}, err
				}
				attachments = append(attachments, url)
			}
		}
	} else {
		if err := decodeJSON(r, &body); err != nil {
			return service.CreateInput{}, err
		}
	}

	loc := body.Location
	if body.Address != "" {
		loc.Address = body.Address
	}

	return service.CreateInput{
		Kind:            kind,
		Title:           body.Title,
		Category:        body.Category,
		Description:     body.Description,
		Location:        loc,
		Attachments:     attachments,
		PaymentRequired: body.PaymentRequired,
	}, nil
}

func (h *RequestHandler) Create(kind domain.RequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := h.parseCreate(r, kind)
		if err != nil {
			writeError(w, err)
			return
		}

		req, err := h.svc.Create(r.Context(), actorFrom(r), in)
		if err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, http.StatusCreated, map[string]interface{}{itemKey(kind): req})
	}
}

func (h *RequestHandler) List(kind domain.RequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := h.svc.List(r.Context(), actorFrom(r), service.ListParams{
			Kind:     kind,
			Status:   q.Get("status"),
			Category: q.Get("category"),
			Search:   q.Get("search"),
			Page:     queryInt(r, "page", 1),
			Limit:    queryInt(r, "limit", 20),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, map[string]interface{}{
			"page":       page.Page,
			"totalPages": page.TotalPages,
			"total":      page.Total,
			listKey(kind): page.Items,
		})
	}
}

func (h *RequestHandler) GetByID(kind domain.RequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := h.svc.GetByID(r.Context(), kind, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, map[string]interface{}{itemKey(kind): req})
	}
}

// ListByUser returns all of one user's records, newest first. Citizens may
// only query their own id.
func (h *RequestHandler) ListByUser(kind domain.RequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userId")
		actor := actorFrom(r)
		if !actor.IsStaff && !actor.IsAdmin && userID != actor.UserID {
			response.Error(w, http.StatusForbidden, "Access denied.")
			return
		}

		items, err := h.svc.ListByUser(r.Context(), kind, userID)
		if err != nil {
			writeError(w, err)
			return
		}
		if items == nil {
			items = []domain.Request{}
		}
		response.JSON(w, http.StatusOK, map[string]interface{}{listKey(kind): items})
	}
}

func (h *RequestHandler) UpdateStatus(kind domain.RequestKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Status string `json:"status"`
			Remark string `json:"remark"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, err)
			return
		}

		req, err := h.svc.UpdateStatus(r.Context(), kind, chi.URLParam(r, "id"), in.Status, in.Remark)
		if err != nil {
			writeError(w, err)
			return
		}
		response.JSON(w, http.StatusOK, map[string]interface{}{itemKey(kind): req})
	}
}
