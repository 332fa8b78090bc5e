package domain

import (
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// ChartFile is a single image selected by the user
type ChartFile struct {
	ID          uuid.UUID
	Name        string
	MIMEType    string // declared by the client, may be empty
	Data        []byte
	Fingerprint string // blake2b-256 of Data, hex
	UploadedAt  time.Time
}

// NewChartFile validates an uploaded file and wraps it.
// Non-image content and files larger than maxBytes are rejected here,
// before anything reaches the encoder.
func NewChartFile(name, mimeType string, data []byte, maxBytes int64) (*ChartFile, error) {
	if len(data) == 0 {
		return nil, ErrNotAnImage
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, ErrFileTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return nil, ErrNotAnImage
	}

	sum := blake2b.Sum256(data)
	return &ChartFile{
		ID:          uuid.New(),
		Name:        name,
		MIMEType:    mimeType,
		Data:        data,
		Fingerprint: hex.EncodeToString(sum[:]),
		UploadedAt:  time.Now(),
	}, nil
}

// Size returns the payload length in bytes
func (f *ChartFile) Size() int {
	return len(f.Data)
}

// ImagePart is an image ready to be sent inline to the inference service
type ImagePart struct {
	MIMEType string
	Data     string // standard base64, no header prefix
}

// DataURI renders the part as a data: URI, used for the upload preview
func (p ImagePart) DataURI() string {
	return "data:" + p.MIMEType + ";base64," + p.Data
}
