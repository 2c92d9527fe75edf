package handler

import (
	"errors"
	"net/http"

	"github.com/nencyajudiya/blogstream/internal/apperror"
	"github.com/nencyajudiya/blogstream/internal/upload"
)

// maxUploadMemory caps how much of a multipart body is held in memory
// before spilling to temp files (10 MB, matching the request body limit).
const maxUploadMemory = 10 << 20

// parseForm parses the request body as multipart if it is, or as an
// ordinary form otherwise, so handlers can read fields either way.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxUploadMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return apperror.ValidationFailed("body", "invalid form body")
}

// saveFormFile stores the named multipart file in the upload store and
// returns its public URL. A request without that file returns ("", nil) —
// uploads are optional everywhere they're accepted.
func saveFormFile(r *http.Request, field string, uploads *upload.Store) (string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", apperror.ValidationFailed(field, "invalid file upload")
	}
	defer file.Close()

	return uploads.Save(file, header.Filename)
}
