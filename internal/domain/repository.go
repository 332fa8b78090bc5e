package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AnalysisRecord is a stored copy of a successful analysis
type AnalysisRecord struct {
	ID          uuid.UUID      `json:"id"`
	SessionID   uuid.UUID      `json:"session_id"`
	FileName    string         `json:"file_name"`
	Fingerprint string         `json:"fingerprint"`
	Action      Action         `json:"action"`
	Confidence  int            `json:"confidence"`
	Timeframe   string         `json:"timeframe"`
	Model       string         `json:"model"`
	Result      AnalysisResult `json:"result"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AnalysisRepository defines the interface for analysis history operations
type AnalysisRepository interface {
	// Save stores a new record
	Save(ctx context.Context, record *AnalysisRecord) error

	// GetByID retrieves a record by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*AnalysisRecord, error)

	// GetBySession retrieves the records produced by one browser session, newest first
	GetBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]*AnalysisRecord, error)

	// DeleteOlderThan removes records created before the cutoff and returns how many were removed
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
