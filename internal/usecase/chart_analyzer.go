package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"chartanalyst/internal/domain"
)

// maxLoggedResponse bounds how much raw model text ends up in the logs
const maxLoggedResponse = 2000

// ChartAnalyzer is the inference client: encode, call the model once, parse
type ChartAnalyzer struct {
	model   domain.VisionModel
	timeout time.Duration
}

// NewChartAnalyzer creates a new ChartAnalyzer.
// timeout bounds a single model call, zero means no extra bound.
func NewChartAnalyzer(model domain.VisionModel, timeout time.Duration) *ChartAnalyzer {
	return &ChartAnalyzer{
		model:   model,
		timeout: timeout,
	}
}

// ModelName returns the name of the backing model
func (a *ChartAnalyzer) ModelName() string {
	return a.model.Name()
}

// Analyze runs one analysis round trip for the given chart.
// Errors are *domain.DecodeError, *domain.TransportError or *domain.FormatError.
func (a *ChartAnalyzer) Analyze(ctx context.Context, file *domain.ChartFile) (*domain.AnalysisResult, error) {
	part, err := EncodeImage(file)
	if err != nil {
		return nil, err
	}
	return a.AnalyzePart(ctx, part)
}

// AnalyzePart is Analyze for an image that is already encoded
func (a *ChartAnalyzer) AnalyzePart(ctx context.Context, part domain.ImagePart) (*domain.AnalysisResult, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	startTime := time.Now()
	text, err := a.model.Generate(ctx, SystemPrompt, part)
	if err != nil {
		log.Printf("ERROR: %s call failed after %.2fs: %v", a.model.Name(), time.Since(startTime).Seconds(), err)
		var transportErr *domain.TransportError
		if errors.As(err, &transportErr) {
			return nil, err
		}
		return nil, &domain.TransportError{Err: err}
	}

	result, err := ParseAnalysis(text)
	if err != nil {
		log.Printf("ERROR: Failed to parse analysis response: %v\nraw response: %s", err, truncate(text, maxLoggedResponse))
		return nil, err
	}

	log.Printf("[OK] Chart analyzed in %.2fs | %s | Confidence: %d%% | Timeframe: %s",
		time.Since(startTime).Seconds(), result.Action, result.Confidence, result.Timeframe)
	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
