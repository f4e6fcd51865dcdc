package handler

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"civic-portal/internal/response"
	"civic-portal/internal/xerrors"

	"github.com/oklog/ulid/v2"
)

// maxUploadSize caps multipart bodies at 10 MiB.
const maxUploadSize = 10 << 20

// writeError translates service errors into the API envelope. Unknown errors
// become a generic 500 so internals never leak to the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, xerrors.ErrMissingFields),
		errors.Is(err, xerrors.ErrInvalidStatus),
		errors.Is(err, xerrors.ErrNameRequired),
		errors.Is(err, xerrors.ErrEmailRequired),
		errors.Is(err, xerrors.ErrPasswordRequired),
		errors.Is(err, xerrors.ErrInvalidRequest):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, xerrors.ErrInvalidCredentials),
		errors.Is(err, xerrors.ErrInvalidToken),
		errors.Is(err, xerrors.ErrExpiredToken):
		response.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, xerrors.ErrForbidden),
		errors.Is(err, xerrors.ErrNotStaffAccount),
		errors.Is(err, xerrors.ErrDepartmentBlocked):
		response.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, xerrors.ErrNotFound),
		errors.Is(err, xerrors.ErrUserNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, xerrors.ErrEmailAlreadyInUse):
		response.Error(w, http.StatusConflict, err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return xerrors.ErrInvalidRequest
	}
	return nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

// uploadName builds a collision-free stored filename keeping the original
// extension.
func uploadName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String() + ext
}

// saveUpload writes one multipart file under dir and returns the public URL
// path it will be served from.
func saveUpload(dir string, fh *multipart.FileHeader) (fileName, url string, err error) {
	src, err := fh.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}

	fileName = uploadName(fh.Filename)
	dst, err := os.Create(filepath.Join(dir, fileName))
	if err != nil {
		return "", "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", "", err
	}
	return fileName, "/uploads/" + fileName, nil
}
