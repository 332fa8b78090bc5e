package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"chartanalyst/internal/domain"
	"chartanalyst/internal/usecase"
)

// ResultHook receives every successful analysis that is still current when it settles
type ResultHook func(ctx context.Context, sessionID uuid.UUID, file *domain.ChartFile, result *domain.AnalysisResult)

// hookTimeout bounds the work a ResultHook may do (history write, notification)
const hookTimeout = 15 * time.Second

// SessionController owns the analysis lifecycle of one browser session:
// no file -> file selected -> analyzing -> succeeded | failed.
// At most one analysis is in flight per controller.
type SessionController struct {
	id       uuid.UUID
	analyzer domain.ChartAnalyzer
	timeout  time.Duration
	onResult ResultHook

	mu         sync.Mutex
	file       *domain.ChartFile
	preview    string
	analyzing  bool
	result     *domain.AnalysisResult
	errMsg     string
	generation uint64 // bumped by every file change and every request
	flights    sync.WaitGroup
	updatedAt  time.Time
	lastActive time.Time
}

// NewSessionController creates a controller in the no-file state.
// timeout bounds one analysis, zero leaves it to the analyzer.
func NewSessionController(id uuid.UUID, analyzer domain.ChartAnalyzer, timeout time.Duration, onResult ResultHook) *SessionController {
	now := time.Now()
	return &SessionController{
		id:         id,
		analyzer:   analyzer,
		timeout:    timeout,
		onResult:   onResult,
		updatedAt:  now,
		lastActive: now,
	}
}

// ID returns the session ID
func (c *SessionController) ID() uuid.UUID {
	return c.id
}

// SelectFile replaces the selected file, nil reverts to the no-file state.
// A displayed result or error is cleared immediately. An analysis still in
// flight is not cancelled, but its outcome will be discarded.
func (c *SessionController) SelectFile(file *domain.ChartFile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.analyzing {
		log.Printf("[WARN] Session %s: file changed during analysis, in-flight result will be discarded", c.id)
	}

	c.file = file
	c.preview = ""
	if file != nil {
		if part, err := usecase.EncodeImage(file); err == nil {
			c.preview = part.DataURI()
		}
	}
	c.analyzing = false
	c.result = nil
	c.errMsg = ""
	c.generation++
	c.touch()
}

// RequestAnalysis starts an analysis of the selected file in the background.
// It returns started=false without error when one is already running, and
// domain.ErrNoFileSelected when there is nothing to analyze.
func (c *SessionController) RequestAnalysis() (started bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastActive = time.Now()
	if c.analyzing {
		return false, nil
	}
	if c.file == nil {
		c.result = nil
		c.errMsg = domain.UserMessage(domain.ErrNoFileSelected)
		c.updatedAt = time.Now()
		return false, domain.ErrNoFileSelected
	}

	c.analyzing = true
	c.result = nil
	c.errMsg = ""
	c.generation++
	c.touch()

	c.flights.Add(1)
	go c.run(c.generation, c.file)
	return true, nil
}

func (c *SessionController) run(generation uint64, file *domain.ChartFile) {
	defer c.flights.Done()

	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.analyze(ctx, file)

	c.mu.Lock()
	current := c.generation == generation
	if current {
		c.analyzing = false
		if err != nil {
			c.result = nil
			c.errMsg = domain.UserMessage(err)
			log.Printf("ERROR: Session %s: analysis of %s failed: %v", c.id, file.Name, err)
		} else {
			c.result = result
			c.errMsg = ""
		}
		c.updatedAt = time.Now()
	}
	c.mu.Unlock()

	if !current {
		log.Printf("[WARN] Session %s: discarding stale analysis of %s", c.id, file.Name)
		return
	}
	if err == nil && c.onResult != nil {
		hookCtx, cancel := context.WithTimeout(context.Background(), hookTimeout)
		defer cancel()
		c.onResult(hookCtx, c.id, file, result)
	}
}

// analyze shields the controller from a panicking analyzer
func (c *SessionController) analyze(ctx context.Context, file *domain.ChartFile) (result *domain.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("analyzer panic: %v", r)
		}
	}()
	return c.analyzer.Analyze(ctx, file)
}

// Wait blocks until every started analysis, stale ones included, has
// settled and run its hook, or until ctx ends
func (c *SessionController) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.flights.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the current state
func (c *SessionController) Snapshot() domain.SessionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := domain.SessionSnapshot{
		SessionID: c.id,
		Result:    c.result,
		Error:     c.errMsg,
		UpdatedAt: c.updatedAt,
	}
	if c.file != nil {
		snap.File = &domain.FileInfo{
			Name:       c.file.Name,
			MIMEType:   c.file.MIMEType,
			Size:       c.file.Size(),
			PreviewURI: c.preview,
		}
	}

	switch {
	case c.analyzing:
		snap.State = domain.StateAnalyzing
	case c.result != nil:
		snap.State = domain.StateSucceeded
	case c.errMsg != "":
		snap.State = domain.StateFailed
	case c.file != nil:
		snap.State = domain.StateFileSelected
	default:
		snap.State = domain.StateNoFile
	}
	return snap
}

// IsAnalyzing reports whether an analysis is in flight
func (c *SessionController) IsAnalyzing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analyzing
}

// LastActive returns the time of the last user action
func (c *SessionController) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// touch must be called with mu held
func (c *SessionController) touch() {
	now := time.Now()
	c.updatedAt = now
	c.lastActive = now
}
