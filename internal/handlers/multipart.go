package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kisahtegar/alqowy/internal/services"
)

// formFileUpload reads an optional multipart file field into a FileUpload.
// A missing field returns (nil, nil) so callers can treat the file as
// optional without inspecting the error.
func formFileUpload(c *gin.Context, field string) (*services.FileUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s field: %w", field, err)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s upload: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s upload: %w", field, err)
	}

	return &services.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        data,
	}, nil
}
