package usecase

import (
	"encoding/base64"
	"errors"
	"testing"

	"chartanalyst/internal/domain"
)

func TestEncodeImage(t *testing.T) {
	part, err := EncodeImage(&domain.ChartFile{MIMEType: "image/png", Data: pngBytes})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if part.MIMEType != "image/png" {
		t.Fatalf("unexpected mime: %s", part.MIMEType)
	}
	if part.Data != base64.StdEncoding.EncodeToString(pngBytes) {
		t.Fatalf("unexpected payload: %s", part.Data)
	}
}

func TestEncodeImageSniffsMissingMIME(t *testing.T) {
	for _, declared := range []string{"", "application/octet-stream", "not a mime;;"} {
		part, err := EncodeImage(&domain.ChartFile{MIMEType: declared, Data: pngBytes})
		if err != nil {
			t.Fatalf("declared %q: unexpected err: %v", declared, err)
		}
		if part.MIMEType != "image/png" {
			t.Fatalf("declared %q: unexpected mime %s", declared, part.MIMEType)
		}
	}
}

func TestEncodeImageStripsParams(t *testing.T) {
	part, err := EncodeImage(&domain.ChartFile{MIMEType: "image/jpeg; q=0.9", Data: pngBytes})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if part.MIMEType != "image/jpeg" {
		t.Fatalf("unexpected mime: %s", part.MIMEType)
	}
}

func TestEncodeImageEmpty(t *testing.T) {
	var decodeErr *domain.DecodeError
	if _, err := EncodeImage(&domain.ChartFile{MIMEType: "image/png"}); !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if _, err := EncodeImage(nil); !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for nil file, got %v", err)
	}
}

func TestParseDataURI(t *testing.T) {
	part, err := ParseDataURI("data:image/webp;base64,UklGRg==")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if part.MIMEType != "image/webp" || part.Data != "UklGRg==" {
		t.Fatalf("unexpected part: %+v", part)
	}
	if part.DataURI() != "data:image/webp;base64,UklGRg==" {
		t.Fatalf("round trip mismatch: %s", part.DataURI())
	}
}

func TestParseDataURIErrors(t *testing.T) {
	for _, uri := range []string{
		"",
		"image/png;base64,AAAA",
		"data:;base64,AAAA",
		"data:image/png;base64,",
		"data:image/png;base64",
		"data:image/png,AAAA",
	} {
		var decodeErr *domain.DecodeError
		if _, err := ParseDataURI(uri); !errors.As(err, &decodeErr) {
			t.Fatalf("ParseDataURI(%q): expected DecodeError, got %v", uri, err)
		}
	}
}

func TestDecodePart(t *testing.T) {
	data, err := DecodePart(domain.ImagePart{MIMEType: "image/png", Data: base64.StdEncoding.EncodeToString(pngBytes)})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if string(data) != string(pngBytes) {
		t.Fatalf("payload mismatch")
	}

	var decodeErr *domain.DecodeError
	if _, err := DecodePart(domain.ImagePart{Data: "%%%"}); !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}
