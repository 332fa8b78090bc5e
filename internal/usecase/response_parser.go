package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"chartanalyst/internal/domain"
)

// StripCodeFence removes a leading ```json (or bare ```) marker and a
// trailing ``` marker from a model response
func StripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		if len(cleaned) >= 4 && strings.EqualFold(cleaned[:4], "json") {
			cleaned = cleaned[4:]
		}
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}

// ParseAnalysis decodes a model response into an AnalysisResult.
// Any failure is a *domain.FormatError carrying the raw text.
func ParseAnalysis(text string) (*domain.AnalysisResult, error) {
	cleaned := StripCodeFence(text)
	if !strings.HasPrefix(cleaned, "{") {
		return nil, &domain.FormatError{Raw: text, Err: fmt.Errorf("response is not a JSON object")}
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, &domain.FormatError{Raw: text, Err: err}
	}
	if err := result.CheckShape(); err != nil {
		return nil, &domain.FormatError{Raw: text, Err: err}
	}

	return &result, nil
}
