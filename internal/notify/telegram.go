// Package notify pushes booking events to the venue's Telegram admin
// chat. Notifications are best effort: failures are logged and dropped.
package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/polasandeepreddy/Sixers-Cafe/internal/models"
)

// TelegramNotifier sends booking events to a fixed admin chat. An empty
// token disables it without failing startup.
type TelegramNotifier struct {
	bot         *tgbotapi.BotAPI
	adminChatID int64
	logger      *zerolog.Logger
}

func NewTelegramNotifier(token string, adminChatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	if token == "" {
		logger.Warn().Msg("telegram bot token is empty, notifications disabled")
		return &TelegramNotifier{adminChatID: adminChatID, logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, adminChatID: adminChatID, logger: logger}, nil
}

func (n *TelegramNotifier) NotifyBookingCreated(ctx context.Context, b *models.Booking) {
	times := make([]string, len(b.Slots))
	for i, s := range b.Slots {
		times[i] = s.DisplayTime()
	}
	text := fmt.Sprintf(
		"*New booking %s*\n\nName: %s\nMobile: %s\nDate: %s\nSlots: %s\nTotal: ₹%d",
		b.ID, b.FullName, b.MobileNumber, b.Date, strings.Join(times, ", "), b.TotalAmount,
	)
	n.send(ctx, text)
}

func (n *TelegramNotifier) NotifyDecision(ctx context.Context, b *models.Booking, decision string) {
	text := fmt.Sprintf("*Booking %s %s*\n\nName: %s\nDate: %s", b.ID, decision, b.FullName, b.Date)
	n.send(ctx, text)
}

// SendDailySchedule posts the day's booking schedule to the admin chat.
func (n *TelegramNotifier) SendDailySchedule(ctx context.Context, date string, bookings []models.Booking) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Schedule for %s*\n", date)
	if len(bookings) == 0 {
		sb.WriteString("\nNo bookings today.")
	}
	for _, b := range bookings {
		times := make([]string, len(b.Slots))
		for i, s := range b.Slots {
			times[i] = s.DisplayTime()
		}
		fmt.Fprintf(&sb, "\n%s - %s (%s) [%s]",
			strings.Join(times, ", "), b.FullName, b.MobileNumber, b.PaymentStatus)
	}
	n.send(ctx, sb.String())
	return nil
}

func (n *TelegramNotifier) send(ctx context.Context, text string) {
	if n.bot == nil || n.adminChatID == 0 {
		n.logger.Debug().Msg("notification skipped (bot disabled)")
		return
	}
	if err := ctx.Err(); err != nil {
		n.logger.Debug().Msg("notification skipped (context cancelled)")
		return
	}

	msg := tgbotapi.NewMessage(n.adminChatID, text)
	msg.ParseMode = "Markdown"

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Int64("chat_id", n.adminChatID).Msg("failed to send telegram notification")
	}
}
