package service

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"chartanalyst/internal/domain"
)

func TestSessionStoreGetOrCreate(t *testing.T) {
	store := NewSessionStore(NewControllerFactory(&stubAnalyzer{}, time.Second, nil))
	id := uuid.New()

	if _, ok := store.Get(id); ok {
		t.Fatalf("session should not exist yet")
	}
	first := store.GetOrCreate(id)
	second := store.GetOrCreate(id)
	if first != second {
		t.Fatalf("expected the same controller for one session")
	}
	if first.ID() != id {
		t.Fatalf("controller has wrong id")
	}
	if store.GetOrCreate(uuid.New()) == first {
		t.Fatalf("sessions must be isolated")
	}
	if store.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", store.Len())
	}
}

func TestSessionStoreSweepKeepsInFlight(t *testing.T) {
	gate := make(chan struct{})
	analyzer := &stubAnalyzer{
		results: map[string]*domain.AnalysisResult{"busy.png": longResult("1")},
		gates:   map[string]chan struct{}{"busy.png": gate},
		started: make(chan string, 1),
	}
	store := NewSessionStore(NewControllerFactory(analyzer, 0, nil))

	idle := store.GetOrCreate(uuid.New())
	idle.SelectFile(chartFile("idle.png"))

	busy := store.GetOrCreate(uuid.New())
	busy.SelectFile(chartFile("busy.png"))
	_, _ = busy.RequestAnalysis()
	<-analyzer.started

	time.Sleep(5 * time.Millisecond)
	if removed := store.Sweep(time.Millisecond); removed != 1 {
		t.Fatalf("expected one session swept, got %d", removed)
	}
	if _, ok := store.Get(idle.ID()); ok {
		t.Fatalf("idle session should be gone")
	}
	if _, ok := store.Get(busy.ID()); !ok {
		t.Fatalf("in-flight session must be kept")
	}

	close(gate)
	ctx, cancel := waitCtx()
	defer cancel()
	if err := store.Drain(ctx); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if got := busy.Snapshot().State; got != domain.StateSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s", got)
	}
}

func TestSessionStoreSweepKeepsActive(t *testing.T) {
	store := NewSessionStore(NewControllerFactory(&stubAnalyzer{}, 0, nil))
	store.GetOrCreate(uuid.New())

	if removed := store.Sweep(time.Hour); removed != 0 {
		t.Fatalf("active session swept")
	}
}
