package dto

import (
	"fmt"
	"html/template"
	"sort"

	"chartanalyst/internal/domain"
	"chartanalyst/internal/utils"
)

// actionStyles maps each action to its badge label and Tailwind classes.
// An action missing here cannot be rendered.
var actionStyles = map[domain.Action]struct {
	Label string
	Emoji string
	Badge string
}{
	domain.ActionLong:    {"LONG", "🟢", "bg-emerald-500/20 text-emerald-400 border-emerald-500/40"},
	domain.ActionShort:   {"SHORT", "🔴", "bg-rose-500/20 text-rose-400 border-rose-500/40"},
	domain.ActionNoTrade: {"NO TRADE", "⚪", "bg-slate-500/20 text-slate-300 border-slate-500/40"},
}

// AnalysisViewModel represents the data structure for the result template
type AnalysisViewModel struct {
	Action          string
	ActionLabel     string
	ActionEmoji     string
	BadgeClass      string // Tailwind classes
	Metrics         []MetricCard
	TakeProfits     []string
	Confidence      int
	ConfidenceColor string
	RiskReward      string // empty when not derivable
	Indicators      []IndicatorRow
	Bias            *BiasViewModel
	Reasons         []string
	Note            string
}

// MetricCard is one labelled value in the metrics grid
type MetricCard struct {
	Label string
	Value string
}

// IndicatorRow is one entry of the indicator grid
type IndicatorRow struct {
	Name  string
	Value string
}

// BiasViewModel is the order book split, rendered as a bar
type BiasViewModel struct {
	BuyPct  string
	SellPct string
	BuyBar  int // 0-100, bar width
}

// NewAnalysisViewModel builds the view for a result. It fails on an
// unrecognized action instead of rendering a neutral badge.
func NewAnalysisViewModel(result *domain.AnalysisResult) (*AnalysisViewModel, error) {
	if result == nil {
		return nil, fmt.Errorf("no analysis result to render")
	}
	style, ok := actionStyles[result.Action]
	if !ok {
		return nil, fmt.Errorf("no style for action %q", result.Action)
	}

	vm := &AnalysisViewModel{
		Action:      string(result.Action),
		ActionLabel: style.Label,
		ActionEmoji: style.Emoji,
		BadgeClass:  style.Badge,
		Metrics: []MetricCard{
			{Label: "Entry", Value: orDash(result.Entry)},
			{Label: "Stop Loss", Value: orDash(result.StopLoss)},
			{Label: "Timeframe", Value: orDash(result.Timeframe)},
			{Label: "Accuracy", Value: orDash(result.AccuracyEstimate)},
		},
		TakeProfits:     result.TakeProfits,
		Confidence:      result.Confidence,
		ConfidenceColor: ConfidenceColor(result.Confidence),
		Reasons:         result.Reasons,
		Note:            result.Note,
	}

	if ratio, ok := result.RiskReward(); ok {
		vm.RiskReward = "1 : " + ratio.String()
	}

	names := make([]string, 0, len(result.Indicators))
	for name := range result.Indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		vm.Indicators = append(vm.Indicators, IndicatorRow{Name: name, Value: result.Indicators[name]})
	}

	if b := result.OrderbookBias; b != nil {
		vm.Bias = &BiasViewModel{
			BuyPct:  fmt.Sprintf("%.1f%%", b.BuyPct),
			SellPct: fmt.Sprintf("%.1f%%", b.SellPct),
			BuyBar:  clampPct(b.BuyPct),
		}
	}

	return vm, nil
}

// ConfidenceColor returns the text class for a confidence score
func ConfidenceColor(confidence int) string {
	switch {
	case confidence >= 75:
		return "text-emerald-400"
	case confidence >= 50:
		return "text-amber-400"
	default:
		return "text-rose-400"
	}
}

// StateViewModel drives the state fragment polled by the page
type StateViewModel struct {
	State      string
	File       *domain.FileInfo
	FileSize   string
	Preview    template.URL // data: URI built from the upload
	Error      string
	Analysis   *AnalysisViewModel
	CanAnalyze bool
	Polling    bool // keep polling while an analysis is in flight
	UpdatedAt  string
}

// NewStateViewModel builds the fragment view from a session snapshot. A
// result that cannot be rendered turns into the unknown error message.
func NewStateViewModel(snap domain.SessionSnapshot) *StateViewModel {
	vm := &StateViewModel{
		State:      string(snap.State),
		File:       snap.File,
		Error:      snap.Error,
		CanAnalyze: snap.CanAnalyze(),
		Polling:    snap.State == domain.StateAnalyzing,
		UpdatedAt:  utils.FormatTimestamp(snap.UpdatedAt),
	}
	if snap.File != nil {
		vm.FileSize = HumanSize(snap.File.Size)
		vm.Preview = template.URL(snap.File.PreviewURI)
	}
	if snap.State == domain.StateSucceeded {
		analysis, err := NewAnalysisViewModel(snap.Result)
		if err != nil {
			vm.State = string(domain.StateFailed)
			vm.Error = domain.MsgUnknown
		} else {
			vm.Analysis = analysis
		}
	}
	return vm
}

// NewRejectedUploadViewModel builds the fragment for an upload that could not
// be selected. The message replaces any displayed result; the selected file
// stays so it can still be analyzed.
func NewRejectedUploadViewModel(snap domain.SessionSnapshot, err error) *StateViewModel {
	vm := NewStateViewModel(snap)
	vm.State = string(domain.StateFailed)
	vm.Error = domain.UserMessage(err)
	vm.Analysis = nil
	return vm
}

// HistoryItemViewModel represents one row of the history table
type HistoryItemViewModel struct {
	ID              string
	FileName        string
	Action          string
	BadgeClass      string
	Confidence      int
	ConfidenceColor string
	Timeframe       string
	Entry           string
	RiskReward      string
	Model           string
	Timestamp       string
}

// NewHistoryItems builds the history rows, skipping records whose action has
// no style
func NewHistoryItems(records []*domain.AnalysisRecord) []HistoryItemViewModel {
	items := make([]HistoryItemViewModel, 0, len(records))
	for _, rec := range records {
		style, ok := actionStyles[rec.Action]
		if !ok {
			continue
		}
		item := HistoryItemViewModel{
			ID:              rec.ID.String(),
			FileName:        rec.FileName,
			Action:          style.Label,
			BadgeClass:      style.Badge,
			Confidence:      rec.Confidence,
			ConfidenceColor: ConfidenceColor(rec.Confidence),
			Timeframe:       orDash(rec.Timeframe),
			Entry:           orDash(rec.Result.Entry),
			RiskReward:      "-",
			Model:           rec.Model,
			Timestamp:       utils.FormatTimestamp(rec.CreatedAt),
		}
		if ratio, ok := rec.Result.RiskReward(); ok {
			item.RiskReward = "1 : " + ratio.String()
		}
		items = append(items, item)
	}
	return items
}

// HumanSize formats a byte count for display
func HumanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func clampPct(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v + 0.5)
}
