package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"precondition", ErrNoFileSelected, MsgNoFileSelected},
		{"not an image", fmt.Errorf("upload: %w", ErrNotAnImage), MsgNotAnImage},
		{"too large", ErrFileTooLarge, MsgFileTooLarge},
		{"decode", &DecodeError{Reason: "missing MIME type"}, MsgDecode},
		{"transport", fmt.Errorf("analyze: %w", &TransportError{Err: errors.New("503")}), MsgTransport},
		{"format", &FormatError{Raw: "{", Err: errors.New("unexpected end of JSON input")}, MsgFormat},
		{"unknown", errors.New("boom"), MsgUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Fatalf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypedErrorsUnwrap(t *testing.T) {
	root := errors.New("connection refused")
	err := fmt.Errorf("analyze: %w", &TransportError{Err: root})
	if !errors.Is(err, root) {
		t.Fatalf("expected transport error to unwrap to root cause")
	}

	var formatErr *FormatError
	if errors.As(err, &formatErr) {
		t.Fatalf("transport error must not match FormatError")
	}
}
