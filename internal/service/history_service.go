package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"chartanalyst/internal/domain"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// HistoryService records successful analyses, serves them back and purges
// old ones
type HistoryService struct {
	repo     domain.AnalysisRepository
	notifier domain.Notifier
	model    string
}

// NewHistoryService creates a new HistoryService. notifier may be nil.
func NewHistoryService(repo domain.AnalysisRepository, notifier domain.Notifier, model string) *HistoryService {
	return &HistoryService{
		repo:     repo,
		notifier: notifier,
		model:    model,
	}
}

// Record stores one analysis and pushes it to the notifier. A notification
// failure is logged and does not fail the call.
func (s *HistoryService) Record(ctx context.Context, sessionID uuid.UUID, file *domain.ChartFile, result *domain.AnalysisResult) (*domain.AnalysisRecord, error) {
	record := &domain.AnalysisRecord{
		ID:          uuid.New(),
		SessionID:   sessionID,
		FileName:    file.Name,
		Fingerprint: file.Fingerprint,
		Action:      result.Action,
		Confidence:  result.Confidence,
		Timeframe:   result.Timeframe,
		Model:       s.model,
		Result:      *result,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.SendAnalysis(ctx, record); err != nil {
			log.Printf("[WARN] Failed to send analysis notification: %v", err)
		}
	}

	return record, nil
}

// Hook adapts Record to a ResultHook for session controllers
func (s *HistoryService) Hook() ResultHook {
	return func(ctx context.Context, sessionID uuid.UUID, file *domain.ChartFile, result *domain.AnalysisResult) {
		if _, err := s.Record(ctx, sessionID, file, result); err != nil {
			log.Printf("ERROR: Session %s: %v", sessionID, err)
		}
	}
}

// ForSession returns the newest records of one session
func (s *HistoryService) ForSession(ctx context.Context, sessionID uuid.UUID, limit int) ([]*domain.AnalysisRecord, error) {
	return s.repo.GetBySession(ctx, sessionID, clampLimit(limit))
}

// Get returns one record of the session. Records of other sessions are
// reported as domain.ErrAnalysisNotFound.
func (s *HistoryService) Get(ctx context.Context, sessionID, id uuid.UUID) (*domain.AnalysisRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.SessionID != sessionID {
		return nil, domain.ErrAnalysisNotFound
	}
	return record, nil
}

// Purge removes records older than retention
func (s *HistoryService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	removed, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge history: %w", err)
	}
	if removed > 0 {
		log.Printf("[OK] Purged %d analysis record(s) older than %s", removed, cutoff.Format(time.RFC3339))
	}
	return removed, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
