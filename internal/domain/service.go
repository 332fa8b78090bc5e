package domain

import "context"

// VisionModel sends one instruction plus one inline image to a multimodal model
// and returns the raw response text
type VisionModel interface {
	// Generate performs a single request/response round trip
	Generate(ctx context.Context, prompt string, image ImagePart) (string, error)

	// Name returns the model identifier, stored with history records
	Name() string
}

// ChartAnalyzer turns a chart image into a structured analysis
type ChartAnalyzer interface {
	Analyze(ctx context.Context, file *ChartFile) (*AnalysisResult, error)
}

// Notifier pushes finished analyses to an external channel
type Notifier interface {
	SendAnalysis(ctx context.Context, record *AnalysisRecord) error
}
