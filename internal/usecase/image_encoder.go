package usecase

import (
	"encoding/base64"
	"mime"
	"net/http"
	"strings"

	"chartanalyst/internal/domain"
)

// EncodeImage turns a selected chart into an inline image part.
// The MIME type comes from the upload header and falls back to sniffing.
func EncodeImage(file *domain.ChartFile) (domain.ImagePart, error) {
	if file == nil || len(file.Data) == 0 {
		return domain.ImagePart{}, &domain.DecodeError{Reason: "empty image payload"}
	}

	mimeType := normalizeMIME(file.MIMEType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = normalizeMIME(http.DetectContentType(file.Data))
	}
	if mimeType == "" {
		return domain.ImagePart{}, &domain.DecodeError{Reason: "missing MIME type"}
	}

	return domain.ImagePart{
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(file.Data),
	}, nil
}

// ParseDataURI splits a "data:<mime>;base64,<payload>" URI, as produced by a
// browser FileReader, into an image part.
func ParseDataURI(uri string) (domain.ImagePart, error) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, "data:") {
		return domain.ImagePart{}, &domain.DecodeError{Reason: "not a data URI"}
	}

	header, payload, found := strings.Cut(uri[len("data:"):], ",")
	if !found {
		return domain.ImagePart{}, &domain.DecodeError{Reason: "data URI has no payload"}
	}
	mimeType, params, _ := strings.Cut(header, ";")
	if mimeType == "" {
		return domain.ImagePart{}, &domain.DecodeError{Reason: "missing MIME type"}
	}
	if !strings.Contains(params, "base64") {
		return domain.ImagePart{}, &domain.DecodeError{Reason: "data URI is not base64 encoded"}
	}
	if payload == "" {
		return domain.ImagePart{}, &domain.DecodeError{Reason: "empty image payload"}
	}

	return domain.ImagePart{MIMEType: mimeType, Data: payload}, nil
}

// DecodePart returns the raw bytes behind a part
func DecodePart(part domain.ImagePart) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(part.Data)
	if err != nil {
		return nil, &domain.DecodeError{Reason: "invalid base64 payload", Err: err}
	}
	return data, nil
}

func normalizeMIME(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return ""
	}
	return mediaType
}
