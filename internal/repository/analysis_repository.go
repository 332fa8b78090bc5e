package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chartanalyst/internal/domain"
)

// AnalysisRepositoryImpl implements domain.AnalysisRepository on PostgreSQL.
// The full result is kept as JSONB next to the columns used for listing.
type AnalysisRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewAnalysisRepository creates a new AnalysisRepository
func NewAnalysisRepository(db *pgxpool.Pool) domain.AnalysisRepository {
	return &AnalysisRepositoryImpl{db: db}
}

const analysisColumns = `id, session_id, file_name, fingerprint, action, confidence, timeframe, model, result, created_at`

// Save saves a new analysis to the database
func (r *AnalysisRepositoryImpl) Save(ctx context.Context, record *domain.AnalysisRecord) error {
	payload, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("failed to encode analysis result: %w", err)
	}

	query := `
		INSERT INTO analyses (
			id, session_id, file_name, fingerprint, action, confidence,
			timeframe, model, result, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err = r.db.Exec(ctx, query,
		record.ID,
		record.SessionID,
		record.FileName,
		record.Fingerprint,
		record.Action,
		record.Confidence,
		record.Timeframe,
		record.Model,
		payload,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	return nil
}

// GetBySession retrieves the most recent analyses of one session
func (r *AnalysisRepositoryImpl) GetBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]*domain.AnalysisRecord, error) {
	query := `SELECT ` + analysisColumns + `
		FROM analyses
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query session analyses: %w", err)
	}
	return collectRecords(rows)
}

// GetByID retrieves an analysis by its ID
func (r *AnalysisRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisRecord, error) {
	query := `SELECT ` + analysisColumns + ` FROM analyses WHERE id = $1`

	record, err := scanRecord(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return record, nil
}

// DeleteOlderThan removes analyses created before cutoff
func (r *AnalysisRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM analyses WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old analyses: %w", err)
	}
	return tag.RowsAffected(), nil
}

func collectRecords(rows pgx.Rows) ([]*domain.AnalysisRecord, error) {
	defer rows.Close()

	var records []*domain.AnalysisRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (*domain.AnalysisRecord, error) {
	record := &domain.AnalysisRecord{}
	var payload []byte
	err := row.Scan(
		&record.ID,
		&record.SessionID,
		&record.FileName,
		&record.Fingerprint,
		&record.Action,
		&record.Confidence,
		&record.Timeframe,
		&record.Model,
		&payload,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &record.Result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis result: %w", err)
	}
	return record, nil
}
