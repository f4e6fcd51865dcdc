package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"civic-portal/internal/domain"
	"civic-portal/internal/middleware"
	"civic-portal/internal/repository"
	"civic-portal/internal/response"
	"civic-portal/internal/xerrors"

	"github.com/rwcarlsen/goexif/exif"
	"go.uber.org/zap"
)

type PhotoHandler struct {
	repo      repository.PhotosRepo
	uploadDir string
	logger    *zap.Logger
}

func NewPhotoHandler(repo repository.PhotosRepo, uploadDir string, logger *zap.Logger) *PhotoHandler {
	return &PhotoHandler{repo: repo, uploadDir: uploadDir, logger: logger}
}

// Upload stores a geotagged photo. Coordinates and capture time supplied by
// the client win; EXIF data in the file fills in whatever is missing.
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, xerrors.ErrInvalidRequest)
		return
	}
	files := r.MultipartForm.File["photo"]
	if len(files) == 0 {
		response.Error(w, http.StatusBadRequest, "photo file is required")
		return
	}
	fh := files[0]

	photo := domain.Photo{
		OriginalName:  fh.Filename,
		LocationLabel: r.FormValue("location"),
	}
	if lat, err := strconv.ParseFloat(r.FormValue("lat"), 64); err == nil {
		photo.Latitude = &lat
	}
	if lng, err := strconv.ParseFloat(r.FormValue("lng"), 64); err == nil {
		photo.Longitude = &lng
	}
	if takenAt, err := time.Parse(time.RFC3339, r.FormValue("takenAt")); err == nil {
		photo.TakenAt = &takenAt
	}

	applyExif(&photo, fh)

	fileName, url, err := saveUpload(h.uploadDir, fh)
	if err != nil {
		h.logger.Error("photo upload failed", zap.Error(err))
		writeError(w, err)
		return
	}
	photo.FileName = fileName
	photo.URL = url

	if userID, ok := middleware.GetUserID(r.Context()); ok {
		photo.UploadedBy = &userID
	}

	if err := h.repo.Create(r.Context(), &photo); err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]interface{}{"photo": photo})
}

func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	photos, err := h.repo.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if photos == nil {
		photos = []domain.Photo{}
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"photos": photos})
}

// applyExif fills coordinates and capture time from EXIF tags when the client
// did not supply them. Files without EXIF are fine.
func applyExif(photo *domain.Photo, fh *multipart.FileHeader) {
	src, err := fh.Open()
	if err != nil {
		return
	}
	defer src.Close()

	x, err := exif.Decode(src)
	if err != nil {
		return
	}

	if photo.Latitude == nil || photo.Longitude == nil {
		if lat, lng, err := x.LatLong(); err == nil {
			photo.Latitude = &lat
			photo.Longitude = &lng
		}
	}
	if photo.TakenAt == nil {
		if taken, err := x.DateTime(); err == nil {
			photo.TakenAt = &taken
		}
	}
}
