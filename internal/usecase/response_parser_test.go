package usecase

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"chartanalyst/internal/domain"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```JSON {\"a\":1}```  ", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"{\"a\":1}", `{"a":1}`},
		{"\n{\"a\":1}\n```", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := StripCodeFence(tt.in); got != tt.want {
			t.Fatalf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseAnalysisFencedExample(t *testing.T) {
	result, err := ParseAnalysis(longFenced)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if result.Action != domain.ActionLong {
		t.Fatalf("unexpected action: %s", result.Action)
	}
	if result.Confidence != 72 {
		t.Fatalf("unexpected confidence: %d", result.Confidence)
	}
	if len(result.Reasons) != 10 {
		t.Fatalf("unexpected reasons: %v", result.Reasons)
	}
	if result.OrderbookBias != nil {
		t.Fatalf("expected null orderbook bias")
	}
	if result.Indicators["RSI"] != "58" {
		t.Fatalf("unexpected indicators: %v", result.Indicators)
	}
}

func TestParseAnalysisFencedEqualsUnfenced(t *testing.T) {
	unfenced := strings.TrimSuffix(strings.TrimPrefix(longFenced, "```json\n"), "\n```")

	fencedResult, err := ParseAnalysis(longFenced)
	if err != nil {
		t.Fatalf("fenced: %v", err)
	}
	plainResult, err := ParseAnalysis(unfenced)
	if err != nil {
		t.Fatalf("unfenced: %v", err)
	}
	if !reflect.DeepEqual(fencedResult, plainResult) {
		t.Fatalf("fenced and unfenced results differ:\n%+v\n%+v", fencedResult, plainResult)
	}
}

func TestParseAnalysisOrderbookBias(t *testing.T) {
	result, err := ParseAnalysis(`{"action":"SHORT","orderbook_bias":{"buy_pct":35,"sell_pct":65}}`)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if result.OrderbookBias == nil || result.OrderbookBias.SellPct != 65 {
		t.Fatalf("unexpected bias: %+v", result.OrderbookBias)
	}
}

func TestParseAnalysisFormatErrors(t *testing.T) {
	inputs := map[string]string{
		"truncated":      `{"action":"LONG","entry":"1.3"`,
		"prose":          "I think this chart looks bullish.",
		"array":          `[{"action":"LONG"}]`,
		"null":           "null",
		"unknown action": `{"action":"BUY"}`,
		"missing action": `{"entry":"1.3"}`,
		"wrong type":     `{"action":"LONG","confidence":"high"}`,
		"empty":          "",
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			result, err := ParseAnalysis(in)
			if result != nil {
				t.Fatalf("expected no partial result, got %+v", result)
			}
			var formatErr *domain.FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("expected FormatError, got %v", err)
			}
			if formatErr.Raw != in {
				t.Fatalf("raw text not preserved: %q", formatErr.Raw)
			}
		})
	}
}
