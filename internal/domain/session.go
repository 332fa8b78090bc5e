package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the lifecycle position of one browser session
type SessionState string

// SessionState constants
const (
	StateNoFile       SessionState = "NO_FILE"
	StateFileSelected SessionState = "FILE_SELECTED"
	StateAnalyzing    SessionState = "ANALYZING"
	StateSucceeded    SessionState = "SUCCEEDED"
	StateFailed       SessionState = "FAILED"
)

// SessionSnapshot is a read-only copy of a session's state for rendering
type SessionSnapshot struct {
	SessionID uuid.UUID
	State     SessionState
	File      *FileInfo
	Result    *AnalysisResult
	Error     string
	UpdatedAt time.Time
}

// FileInfo describes the selected file without its payload
type FileInfo struct {
	Name       string
	MIMEType   string
	Size       int
	PreviewURI string
}

// CanAnalyze mirrors the analyze button: enabled with a file and nothing in flight
func (s SessionSnapshot) CanAnalyze() bool {
	return s.File != nil && s.State != StateAnalyzing
}
