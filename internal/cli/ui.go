package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"chartanalyst/internal/domain"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(1, 2).
		Width(72)

	labelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Width(14)

	valueStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#E5E7EB"))

	noteStyle = lipgloss.NewStyle().
		Italic(true).
		Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#EF4444"))
)

// badgeStyles holds one badge per action. Rendering an action without a
// badge is an error.
var badgeStyles = map[domain.Action]lipgloss.Style{
	domain.ActionLong:    badge("#10B981"),
	domain.ActionShort:   badge("#EF4444"),
	domain.ActionNoTrade: badge("#6B7280"),
}

func badge(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(color)).
		Padding(0, 2)
}

// renderAnalysis formats a result for the terminal
func renderAnalysis(fileName string, result *domain.AnalysisResult) (string, error) {
	style, ok := badgeStyles[result.Action]
	if !ok {
		return "", fmt.Errorf("no badge for action %q", result.Action)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("📈 " + fileName))
	b.WriteString("\n\n")
	b.WriteString(style.Render(string(result.Action)))
	fmt.Fprintf(&b, "  confidence %s\n\n", valueStyle.Render(fmt.Sprintf("%d%%", result.Confidence)))

	row := func(label, value string) {
		if value == "" {
			value = "-"
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}
	row("Entry", result.Entry)
	row("Stop Loss", result.StopLoss)
	for i, tp := range result.TakeProfits {
		row(fmt.Sprintf("TP%d", i+1), tp)
	}
	if ratio, ok := result.RiskReward(); ok {
		row("R:R", "1 : "+ratio.String())
	}
	row("Timeframe", result.Timeframe)
	row("Accuracy", result.AccuracyEstimate)
	if bias := result.OrderbookBias; bias != nil {
		row("Order Book", fmt.Sprintf("buy %.1f%% / sell %.1f%%", bias.BuyPct, bias.SellPct))
	}

	if len(result.Indicators) > 0 {
		b.WriteString("\nIndicators\n")
		names := make([]string, 0, len(result.Indicators))
		for name := range result.Indicators {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			row("  "+name, result.Indicators[name])
		}
	}

	if len(result.Reasons) > 0 {
		b.WriteString("\nReasons\n")
		for i, reason := range result.Reasons {
			fmt.Fprintf(&b, "%2d. %s\n", i+1, reason)
		}
	}

	if result.Note != "" {
		b.WriteString("\n")
		b.WriteString(noteStyle.Render(result.Note))
	}

	return panelStyle.Render(b.String()), nil
}

func renderError(message string) string {
	return errorStyle.Render("❌ " + message)
}
