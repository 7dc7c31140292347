package app

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/neverluckskr/TSObukhivBot/internal/ui"
)

// routeUpdate is the single entry point for everything the long-poll
// loop delivers. Each branch owns its own error reporting; an error
// escaping to here is only logged, one broken update must not stop the
// poll loop.
func (a *App) routeUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.PreCheckoutQuery != nil:
		a.handlePreCheckout(ctx, update.PreCheckoutQuery)
	case update.ChatJoinRequest != nil:
		a.handleChatJoinRequest(ctx, update.ChatJoinRequest)
	case update.CallbackQuery != nil:
		a.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		a.handleMessage(ctx, update.Message)
	}
}

func (a *App) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	if _, err := a.users.GetOrCreate(ctx, msg.From.ID, msg.From.UserName, msg.From.FirstName); err != nil {
		a.logger.Error("get or create user failed",
			zap.Int64("user_id", msg.From.ID),
			zap.Error(err))
	}

	if msg.SuccessfulPayment != nil {
		a.handleSuccessfulPayment(ctx, msg)
		return
	}

	if msg.IsCommand() {
		a.handleCommand(ctx, msg)
		return
	}

	// Persistent reply-keyboard buttons act as command aliases.
	switch msg.Text {
	case ui.ButtonSendFree:
		a.startSubmission(ctx, msg.Chat.ID, msg.From.ID, "send")
		return
	case ui.ButtonSend35:
		a.startSubmission(ctx, msg.Chat.ID, msg.From.ID, "send35")
		return
	case ui.ButtonSend50:
		a.startSubmission(ctx, msg.Chat.ID, msg.From.ID, "send50")
		return
	}

	a.handleIntentMessage(ctx, msg)
}

// messageContent extracts text and the media reference from a message.
// For albums Telegram delivers the photo in several sizes; the last entry
// is the largest.
func messageContent(msg *tgbotapi.Message) (content, mediaFileID string) {
	content = msg.Text
	if content == "" {
		content = msg.Caption
	}
	switch {
	case len(msg.Photo) > 0:
		mediaFileID = msg.Photo[len(msg.Photo)-1].FileID
	case msg.Video != nil:
		mediaFileID = msg.Video.FileID
	case msg.Document != nil:
		mediaFileID = msg.Document.FileID
	}
	return content, mediaFileID
}

func (a *App) reply(chatID int64, text string) {
	a.replyWithMarkup(chatID, text, nil)
}

func (a *App) replyWithMarkup(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := a.client.Send(msg); err != nil {
		a.logger.Warn("send message failed",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

func (a *App) answerCallback(callbackID, text string) {
	if err := a.client.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		a.logger.Warn("answer callback failed", zap.Error(err))
	}
}

func (a *App) alertCallback(callbackID, text string) {
	if err := a.client.Request(tgbotapi.NewCallbackWithAlert(callbackID, text)); err != nil {
		a.logger.Warn("answer callback failed", zap.Error(err))
	}
}

// stampMessage rewrites the text of a handled card and drops its
// keyboard. Cards sent with media carry their text in the caption.
func (a *App) stampMessage(msg *tgbotapi.Message, text string) {
	if msg == nil {
		return
	}
	var err error
	if msg.Text != "" {
		_, err = a.client.Send(tgbotapi.NewEditMessageText(msg.Chat.ID, msg.MessageID, text))
	} else {
		edit := tgbotapi.EditMessageCaptionConfig{
			BaseEdit: tgbotapi.BaseEdit{
				ChatID:    msg.Chat.ID,
				MessageID: msg.MessageID,
			},
			Caption: text,
		}
		_, err = a.client.Send(edit)
	}
	if err != nil {
		a.logger.Warn("edit handled card failed",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int("message_id", msg.MessageID),
			zap.Error(err))
	}
}

// cardText reads the current rendered text of a moderator card.
func cardText(msg *tgbotapi.Message) string {
	if msg == nil {
		return ""
	}
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}
