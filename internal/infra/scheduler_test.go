package infra

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"chartanalyst/internal/domain"
	"chartanalyst/internal/repository"
	"chartanalyst/internal/service"
)

type nopAnalyzer struct{}

func (nopAnalyzer) Analyze(ctx context.Context, file *domain.ChartFile) (*domain.AnalysisResult, error) {
	return &domain.AnalysisResult{Action: domain.ActionNoTrade}, nil
}

func TestSchedulerJobs(t *testing.T) {
	repo := repository.NewMemoryAnalysisRepository()
	history := service.NewHistoryService(repo, nil, "m")
	store := service.NewSessionStore(service.NewControllerFactory(nopAnalyzer{}, 0, nil))
	store.GetOrCreate(uuid.New())

	old := &domain.AnalysisRecord{ID: uuid.New(), Action: domain.ActionLong, CreatedAt: time.Now().Add(-72 * time.Hour)}
	_ = repo.Save(context.Background(), old)

	s := NewScheduler(store, history, SchedulerConfig{
		SessionIdleTTL:   0,
		HistoryRetention: 24 * time.Hour,
		HistoryPurgeSpec: "0 0 3 * * *",
	})
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	time.Sleep(time.Millisecond)
	s.sweepSessions()
	if store.Len() != 0 {
		t.Fatalf("expected idle session swept, %d left", store.Len())
	}

	s.purgeHistory()
	if _, err := repo.GetByID(context.Background(), old.ID); err == nil {
		t.Fatalf("expected old record purged")
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	store := service.NewSessionStore(service.NewControllerFactory(nopAnalyzer{}, 0, nil))
	history := service.NewHistoryService(repository.NewMemoryAnalysisRepository(), nil, "m")

	s := NewScheduler(store, history, SchedulerConfig{HistoryRetention: time.Hour, HistoryPurgeSpec: "not a spec"})
	if err := s.Start(); err == nil {
		t.Fatalf("expected invalid cron spec error")
	}
}
