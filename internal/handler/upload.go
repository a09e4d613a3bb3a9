package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/training-import/pkg/errors"
	"github.com/noah-isme/training-import/pkg/storage"
)

// multipartOverhead leaves room for form fields around the file part.
const multipartOverhead = 1 << 20

type uploadStore interface {
	SaveStream(filename string, r io.Reader, limit int64) (string, error)
	Path(filename string) string
	Delete(filename string) error
}

func limitBody(c *gin.Context, limit int64) {
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}
}

// receiveUpload stores the multipart file under field and returns the stored
// name together with the client's file name.
func receiveUpload(c *gin.Context, store uploadStore, field string, limit int64) (string, string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", "", appErrors.Clone(appErrors.ErrPayloadTooLarge, "")
		}
		return "", "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required")
	}
	if limit > 0 && header.Size > limit {
		return "", "", appErrors.Clone(appErrors.ErrPayloadTooLarge, "")
	}
	file, err := header.Open()
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read upload")
	}
	defer file.Close() //nolint:errcheck

	stored, err := store.SaveStream(storage.UniqueName(header.Filename), file, limit)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return "", "", appErrors.Clone(appErrors.ErrPayloadTooLarge, "")
		}
		return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}
	return stored, header.Filename, nil
}

// formError maps a form binding failure, reporting an oversized body as such.
func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.Clone(appErrors.ErrPayloadTooLarge, "")
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form")
}
