package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"chartanalyst/internal/domain"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func chartFile(name string) *domain.ChartFile {
	return &domain.ChartFile{ID: uuid.New(), Name: name, MIMEType: "image/png", Data: pngBytes, Fingerprint: "fp-" + name}
}

func longResult(entry string) *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Action:      domain.ActionLong,
		Entry:       entry,
		StopLoss:    "1.330",
		TakeProfits: []string{"1.360"},
		Confidence:  72,
		Timeframe:   "1h",
		Reasons:     []string{"trend"},
	}
}

// stubAnalyzer returns per-file results. A file listed in gates blocks
// until its channel is closed.
type stubAnalyzer struct {
	mu      sync.Mutex
	calls   int
	results map[string]*domain.AnalysisResult
	errs    map[string]error
	gates   map[string]chan struct{}
	started chan string
	panics  bool
}

func (a *stubAnalyzer) Analyze(ctx context.Context, file *domain.ChartFile) (*domain.AnalysisResult, error) {
	a.mu.Lock()
	a.calls++
	gate := a.gates[file.Name]
	a.mu.Unlock()

	if a.started != nil {
		a.started <- file.Name
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, &domain.TransportError{Err: ctx.Err()}
		}
	}
	if a.panics {
		panic("boom")
	}
	if err := a.errs[file.Name]; err != nil {
		return nil, err
	}
	if r := a.results[file.Name]; r != nil {
		return r, nil
	}
	return nil, &domain.FormatError{Err: errors.New("no stub result")}
}

func (a *stubAnalyzer) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type hookRecorder struct {
	mu      sync.Mutex
	results []*domain.AnalysisResult
}

func (h *hookRecorder) hook(ctx context.Context, sessionID uuid.UUID, file *domain.ChartFile, result *domain.AnalysisResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, result)
}

func (h *hookRecorder) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.results)
}

func waitCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Second)
}

type memRepo struct {
	mu      sync.Mutex
	records []*domain.AnalysisRecord
	saveErr error
	cutoff  time.Time
}

func (r *memRepo) Save(ctx context.Context, record *domain.AnalysisRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.records = append(r.records, record)
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AnalysisRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, domain.ErrAnalysisNotFound
}

func (r *memRepo) GetBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]*domain.AnalysisRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AnalysisRecord
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].SessionID == sessionID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

func (r *memRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cutoff = cutoff
	return 3, nil
}

type stubNotifier struct {
	mu   sync.Mutex
	sent []*domain.AnalysisRecord
	err  error
}

func (n *stubNotifier) SendAnalysis(ctx context.Context, record *domain.AnalysisRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, record)
	return n.err
}
