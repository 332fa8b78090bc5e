package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Action is the trade direction suggested by the model
type Action string

// Action constants
const (
	ActionLong    Action = "LONG"
	ActionShort   Action = "SHORT"
	ActionNoTrade Action = "NO_TRADE"
)

// Valid reports whether the action is one of the known values
func (a Action) Valid() bool {
	switch a {
	case ActionLong, ActionShort, ActionNoTrade:
		return true
	}
	return false
}

// IsActionable returns true for LONG and SHORT
func (a Action) IsActionable() bool {
	return a == ActionLong || a == ActionShort
}

// AnalysisResult is the structured chart analysis returned by the inference service
type AnalysisResult struct {
	Action           Action         `json:"action"`
	Entry            string         `json:"entry"`
	StopLoss         string         `json:"stop_loss"`
	TakeProfits      []string       `json:"take_profits"`
	Confidence       int            `json:"confidence"`
	AccuracyEstimate string         `json:"accuracy_estimate"`
	Timeframe        string         `json:"timeframe"`
	Indicators       Indicators     `json:"indicators"`
	OrderbookBias    *OrderbookBias `json:"orderbook_bias"`
	Reasons          []string       `json:"reasons"`
	Note             string         `json:"note"`
}

// OrderbookBias holds the visible buy/sell split, when the chart shows one
type OrderbookBias struct {
	BuyPct  float64 `json:"buy_pct"`
	SellPct float64 `json:"sell_pct"`
}

// Indicators maps an indicator name (EMA20, RSI, MACD...) to its reading
type Indicators map[string]string

// UnmarshalJSON accepts scalar readings of any JSON type, models often return
// RSI or volume as bare numbers.
func (in *Indicators) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		*in = nil
		return nil
	}

	out := make(Indicators, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			out[name] = v
		case float64:
			out[name] = decimal.NewFromFloat(v).String()
		case bool:
			out[name] = fmt.Sprintf("%t", v)
		default:
			return fmt.Errorf("indicator %q: unsupported value %T", name, value)
		}
	}
	*in = out
	return nil
}

// UnmarshalJSON reads confidence leniently: fractional scores are rounded and
// numeric strings such as "72" or "72%" are accepted.
func (r *AnalysisResult) UnmarshalJSON(b []byte) error {
	type plain AnalysisResult
	aux := struct {
		*plain
		Confidence json.RawMessage `json:"confidence"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	confidence, err := parseConfidence(aux.Confidence)
	if err != nil {
		return err
	}
	r.Confidence = confidence
	return nil
}

func parseConfidence(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "%")
	} else {
		text = string(raw)
	}

	score, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("confidence %s is not a number", raw)
	}
	return int(score.Round(0).IntPart()), nil
}

// CheckShape verifies the minimum contract needed to display a result.
// Everything except the action is treated as opaque display data.
func (r *AnalysisResult) CheckShape() error {
	if r == nil {
		return fmt.Errorf("empty analysis result")
	}
	if !r.Action.Valid() {
		return fmt.Errorf("unrecognized action %q", r.Action)
	}
	return nil
}

// RiskReward computes reward/risk using the entry, the stop loss and the first
// take profit. Ranges such as "1.341-1.343" use their midpoint. ok is false
// when any of the three cannot be read as a price.
func (r *AnalysisResult) RiskReward() (ratio decimal.Decimal, ok bool) {
	if len(r.TakeProfits) == 0 {
		return decimal.Zero, false
	}
	entry, ok := ParsePrice(r.Entry)
	if !ok {
		return decimal.Zero, false
	}
	stop, ok := ParsePrice(r.StopLoss)
	if !ok {
		return decimal.Zero, false
	}
	target, ok := ParsePrice(r.TakeProfits[0])
	if !ok {
		return decimal.Zero, false
	}

	risk := entry.Sub(stop).Abs()
	if risk.IsZero() {
		return decimal.Zero, false
	}
	reward := target.Sub(entry).Abs()
	return reward.Div(risk).Round(2), true
}

// ParsePrice reads a single price or a price range into a decimal
func ParsePrice(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("$", "", ",", "", " ", "", "–", "-", "to", "-").Replace(s)
	if s == "" {
		return decimal.Zero, false
	}

	if idx := strings.Index(s[1:], "-"); idx >= 0 {
		lo, err := decimal.NewFromString(s[:idx+1])
		if err != nil {
			return decimal.Zero, false
		}
		hi, err := decimal.NewFromString(s[idx+2:])
		if err != nil {
			return decimal.Zero, false
		}
		return lo.Add(hi).Div(decimal.NewFromInt(2)), true
	}

	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return price, true
}
