package app

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/neverluckskr/TSObukhivBot/internal/ui"
)

// handleChatJoinRequest records the request and sends the digest to every
// moderator and owner, the same audience that can press its buttons.
func (a *App) handleChatJoinRequest(ctx context.Context, join *tgbotapi.ChatJoinRequest) {
	fullName := strings.TrimSpace(join.From.FirstName + " " + join.From.LastName)

	request, err := a.joins.Register(ctx, join.From.ID, join.Chat.ID, join.From.UserName, fullName)
	if err != nil {
		a.logger.Error("register join request failed",
			zap.Int64("user_id", join.From.ID),
			zap.Int64("chat_id", join.Chat.ID),
			zap.Error(err))
		return
	}

	recipients, err := a.roles.Recipients(ctx)
	if err != nil {
		a.logger.Error("resolve join digest recipients failed", zap.Error(err))
		recipients = nil
	}

	text := ui.JoinRequestCard(request)
	keyboard := ui.JoinRequestKeyboard(request.ID)

	report := a.notifier.FanOut(ctx, recipients, func(_ context.Context, recipientID int64, fallback bool) error {
		body := text
		if fallback {
			body = ui.MsgNoModeratorsWarning + "\n\n" + body
		}
		msg := tgbotapi.NewMessage(recipientID, body)
		msg.ReplyMarkup = keyboard
		_, err := a.client.Send(msg)
		return err
	})
	if report.AllFailed() {
		a.logger.Error("join request digest reached no moderator",
			zap.Int64("request_id", request.ID))
	}
}
