package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"chartanalyst/internal/domain"
)

func TestChartAnalyzerSuccess(t *testing.T) {
	model := &fakeModel{text: longFenced}
	analyzer := NewChartAnalyzer(model, time.Second)

	result, err := analyzer.Analyze(context.Background(), &domain.ChartFile{Name: "chart.png", MIMEType: "image/png", Data: pngBytes})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if result.Action != domain.ActionLong || result.Confidence != 72 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if model.calls != 1 {
		t.Fatalf("expected one model call, got %d", model.calls)
	}
	if model.prompts[0] != SystemPrompt {
		t.Fatalf("prompt was not sent verbatim")
	}
	if model.parts[0].MIMEType != "image/png" {
		t.Fatalf("unexpected image part: %+v", model.parts[0])
	}
	if analyzer.ModelName() != "fake-vision" {
		t.Fatalf("unexpected model name: %s", analyzer.ModelName())
	}
}

func TestChartAnalyzerTransportError(t *testing.T) {
	model := &fakeModel{err: errors.New("429 resource exhausted")}
	analyzer := NewChartAnalyzer(model, 0)

	result, err := analyzer.Analyze(context.Background(), &domain.ChartFile{MIMEType: "image/png", Data: pngBytes})
	if result != nil {
		t.Fatalf("expected nil result")
	}
	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if domain.UserMessage(err) != domain.MsgTransport {
		t.Fatalf("unexpected message: %s", domain.UserMessage(err))
	}
}

func TestChartAnalyzerFormatError(t *testing.T) {
	model := &fakeModel{text: "```json\n{\"action\":\"LONG\",\n```"}
	analyzer := NewChartAnalyzer(model, 0)

	_, err := analyzer.Analyze(context.Background(), &domain.ChartFile{MIMEType: "image/png", Data: pngBytes})
	var formatErr *domain.FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestChartAnalyzerDecodeErrorSkipsModel(t *testing.T) {
	model := &fakeModel{text: longFenced}
	analyzer := NewChartAnalyzer(model, 0)

	_, err := analyzer.Analyze(context.Background(), &domain.ChartFile{Name: "empty.png"})
	var decodeErr *domain.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
	if model.calls != 0 {
		t.Fatalf("model should not be called, got %d calls", model.calls)
	}
}

type deadlineModel struct{}

func (deadlineModel) Generate(ctx context.Context, prompt string, image domain.ImagePart) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (deadlineModel) Name() string { return "slow" }

func TestChartAnalyzerTimeout(t *testing.T) {
	analyzer := NewChartAnalyzer(deadlineModel{}, 20*time.Millisecond)

	_, err := analyzer.AnalyzePart(context.Background(), domain.ImagePart{MIMEType: "image/png", Data: "AAAA"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	var transportErr *domain.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}
