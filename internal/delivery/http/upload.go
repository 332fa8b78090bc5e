package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"chartanalyst/internal/domain"
)

// uploadField is the multipart field carrying the chart image
const uploadField = "chart"

// readChartUpload reads the single multipart file and validates it as a chart
func readChartUpload(c echo.Context, maxBytes int64) (*domain.ChartFile, error) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, domain.ErrNoFileSelected
		}
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	var r io.Reader = src
	if maxBytes > 0 {
		r = io.LimitReader(src, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	return domain.NewChartFile(fh.Filename, fh.Header.Get("Content-Type"), data, maxBytes)
}

// statusFor maps an analysis or selection error to an HTTP status
func statusFor(err error) int {
	var decodeErr *domain.DecodeError
	var transportErr *domain.TransportError
	var formatErr *domain.FormatError

	switch {
	case errors.Is(err, domain.ErrNoFileSelected),
		errors.Is(err, domain.ErrNotAnImage),
		errors.As(err, &decodeErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &transportErr), errors.As(err, &formatErr):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrAnalysisNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
