package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"chartanalyst/internal/domain"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// Config holds Telegram settings
type Config struct {
	BotToken      string
	ChatID        string
	MinConfidence int    // results below this are not pushed
	BaseURL       string // empty uses the public Bot API
}

// NotificationService pushes actionable analyses to a Telegram chat.
// It implements domain.Notifier.
type NotificationService struct {
	client        *resty.Client
	chatID        string
	minConfidence int
	enabled       bool
	location      *time.Location
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewNotificationService creates the service. Without a token or chat ID it
// stays disabled and every send is a no-op.
func NewNotificationService(cfg Config, location *time.Location) *NotificationService {
	if location == nil {
		location = time.UTC
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/") + "/bot" + cfg.BotToken)
	client.SetTimeout(10 * time.Second)

	return &NotificationService{
		client:        client,
		chatID:        cfg.ChatID,
		minConfidence: cfg.MinConfidence,
		enabled:       cfg.BotToken != "" && cfg.ChatID != "",
		location:      location,
	}
}

// Enabled reports whether Telegram is configured
func (s *NotificationService) Enabled() bool {
	return s.enabled
}

// SendAnalysis sends a finished analysis. NO_TRADE results and results under
// the confidence threshold are skipped.
func (s *NotificationService) SendAnalysis(ctx context.Context, record *domain.AnalysisRecord) error {
	if !s.enabled {
		return nil // Silently skip if Telegram is not configured
	}
	if !record.Action.IsActionable() || record.Confidence < s.minConfidence {
		return nil
	}

	return s.sendMessage(ctx, s.formatAnalysis(record))
}

func (s *NotificationService) formatAnalysis(record *domain.AnalysisRecord) string {
	result := record.Result

	sideEmoji := "🟢"
	if record.Action == domain.ActionShort {
		sideEmoji = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📈 *NEW CHART ANALYSIS*\n\n")
	fmt.Fprintf(&b, "%s *%s* | `%s`\n", sideEmoji, record.Action, fallback(result.Timeframe, "unknown"))
	fmt.Fprintf(&b, "━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "📊 Entry: `%s`\n", fallback(result.Entry, "-"))
	fmt.Fprintf(&b, "🛑 Stop Loss: `%s`\n", fallback(result.StopLoss, "-"))
	for i, tp := range result.TakeProfits {
		fmt.Fprintf(&b, "🎯 TP%d: `%s`\n", i+1, tp)
	}
	fmt.Fprintf(&b, "📈 Confidence: `%d%%`\n", result.Confidence)
	if ratio, ok := result.RiskReward(); ok {
		fmt.Fprintf(&b, "⚖️ R:R: `%s`\n", ratio.String())
	}
	fmt.Fprintf(&b, "🕒 Time: `%s`\n", record.CreatedAt.In(s.location).Format("2006-01-02 15:04:05"))
	if len(result.Reasons) > 0 {
		fmt.Fprintf(&b, "\n💡 *Reasons:*\n")
		for i, reason := range result.Reasons {
			if i == 3 {
				break
			}
			fmt.Fprintf(&b, "• %s\n", reason)
		}
	}
	if result.Note != "" {
		fmt.Fprintf(&b, "\n_%s_", result.Note)
	}
	return b.String()
}

// sendMessage sends a message to Telegram using the Bot API
func (s *NotificationService) sendMessage(ctx context.Context, text string) error {
	var out telegramResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(telegramMessage{
			ChatID:    s.chatID,
			Text:      text,
			ParseMode: "Markdown",
		}).
		SetResult(&out).
		SetError(&out).
		Post("/sendMessage")
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	if resp.IsError() || !out.OK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode(), out.Description)
	}

	return nil
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
