package domain

import (
	"errors"
	"fmt"
)

// Selection errors, raised before a file is accepted
var (
	ErrNotAnImage   = errors.New("file is not an image")
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")
)

// ErrNoFileSelected is returned when an analysis is requested without a file
var ErrNoFileSelected = errors.New("no file selected")

// ErrAnalysisNotFound is returned by history lookups
var ErrAnalysisNotFound = errors.New("analysis not found")

// User facing messages, one per error kind
const (
	MsgNoFileSelected = "Please upload an image first."
	MsgDecode         = "The image could not be prepared for analysis. Please try a different file."
	MsgTransport      = "Failed to communicate with the analysis service. Please check your API key and try again."
	MsgFormat         = "The analysis returned an invalid format. Please try again."
	MsgNotAnImage     = "Please select an image file."
	MsgFileTooLarge   = "The image is too large."
	MsgUnknown        = "An unknown error occurred."
)

// DecodeError means the image could not be turned into a transmittable payload
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode image: %s: %v", e.Reason, e.Err)
	}
	return "decode image: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TransportError means the call to the inference service itself failed
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("inference call failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FormatError means the service answered but the text is not a usable result.
// Raw keeps the original response for logs only.
type FormatError struct {
	Raw string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid analysis format: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// UserMessage maps any error to the single message shown in the UI
func UserMessage(err error) string {
	var (
		decodeErr    *DecodeError
		transportErr *TransportError
		formatErr    *FormatError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoFileSelected):
		return MsgNoFileSelected
	case errors.Is(err, ErrNotAnImage):
		return MsgNotAnImage
	case errors.Is(err, ErrFileTooLarge):
		return MsgFileTooLarge
	case errors.As(err, &decodeErr):
		return MsgDecode
	case errors.As(err, &transportErr):
		return MsgTransport
	case errors.As(err, &formatErr):
		return MsgFormat
	default:
		return MsgUnknown
	}
}
