package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"chartanalyst/internal/domain"
)

// memoryAnalysisRepository keeps history in process, used when no
// DATABASE_URL is configured. Records are appended in creation order.
type memoryAnalysisRepository struct {
	mu      sync.RWMutex
	records []*domain.AnalysisRecord
}

// NewMemoryAnalysisRepository creates an empty in-memory repository
func NewMemoryAnalysisRepository() domain.AnalysisRepository {
	return &memoryAnalysisRepository{}
}

func (r *memoryAnalysisRepository) Save(ctx context.Context, record *domain.AnalysisRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

func (r *memoryAnalysisRepository) GetBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]*domain.AnalysisRecord, error) {
	return r.find(limit, func(rec *domain.AnalysisRecord) bool { return rec.SessionID == sessionID }), nil
}

func (r *memoryAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, domain.ErrAnalysisNotFound
}

func (r *memoryAnalysisRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.records[:0]
	var removed int64
	for _, rec := range r.records {
		if rec.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	for i := len(kept); i < len(r.records); i++ {
		r.records[i] = nil
	}
	r.records = kept
	return removed, nil
}

// find walks backwards so the newest records come first
func (r *memoryAnalysisRepository) find(limit int, match func(*domain.AnalysisRecord) bool) []*domain.AnalysisRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit < 0 || limit > len(r.records) {
		limit = len(r.records)
	}
	result := make([]*domain.AnalysisRecord, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(result) < limit; i-- {
		if match(r.records[i]) {
			result = append(result, r.records[i]) // NOTE: records are shared, not copied
		}
	}
	return result
}
