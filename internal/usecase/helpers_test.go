package usecase

import (
	"context"
	"sync"

	"chartanalyst/internal/domain"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

// longFenced is the canonical fenced LONG response
const longFenced = "```json\n{\"action\":\"LONG\",\"entry\":\"1.340\",\"stop_loss\":\"1.330\",\"take_profits\":[\"1.360\"],\"confidence\":72,\"accuracy_estimate\":\"68%\",\"timeframe\":\"1h\",\"indicators\":{\"RSI\":\"58\"},\"orderbook_bias\":null,\"reasons\":[\"r1\",\"r2\",\"r3\",\"r4\",\"r5\",\"r6\",\"r7\",\"r8\",\"r9\",\"r10\"],\"note\":\"Not financial advice\"}\n```"

type fakeModel struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	prompts []string
	parts   []domain.ImagePart
}

func (m *fakeModel) Generate(ctx context.Context, prompt string, image domain.ImagePart) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.parts = append(m.parts, image)
	return m.text, m.err
}

func (m *fakeModel) Name() string { return "fake-vision" }
