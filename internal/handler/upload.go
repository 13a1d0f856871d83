package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ptpcell/placement-backend/internal/importer"
	"github.com/ptpcell/placement-backend/internal/response"
)

// readSheet reads the multipart "file" field as CSV or XLSX. It writes the error
// response itself and reports false when the upload is unusable.
func readSheet(c *gin.Context, maxBytes int64) ([]importer.Row, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return nil, false
	}
	defer file.Close()

	if maxBytes > 0 && header.Size > maxBytes {
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		return nil, false
	}

	rows, err := importer.Parse(header.Filename, file)
	switch {
	case err == nil:
		return rows, true
	case errors.Is(err, importer.ErrUnsupportedFormat):
		response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
	default:
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload, map[string]string{"file": err.Error()})
	}
	return nil, false
}
