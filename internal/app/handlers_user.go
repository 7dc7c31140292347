package app

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
	postsvc "github.com/neverluckskr/TSObukhivBot/internal/services/posts"
	"github.com/neverluckskr/TSObukhivBot/internal/ui"
)

func (a *App) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	switch msg.Command() {
	case "start":
		a.replyWithMarkup(chatID, ui.MsgStart, ui.MainReplyKeyboard())
	case "help":
		a.replyWithMarkup(chatID, ui.MsgHelp, ui.MainMenu())
	case "cancel":
		if err := a.sessions.Clear(ctx, userID); err != nil {
			a.logger.Warn("clear session failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		a.replyWithMarkup(chatID, ui.MsgActionCancelled, ui.MainMenu())
	case "send", "send35", "send50":
		a.startSubmission(ctx, chatID, userID, msg.Command())
	case "stats":
		a.handleStatsCommand(ctx, chatID, userID)
	case "moderator":
		a.startModeratorAdd(ctx, chatID, userID)
	case "moderators":
		a.handleModeratorList(ctx, chatID, userID)
	}
}

// startSubmission opens the submission flow for a tier: free posts go
// straight to content intake, paid tiers go through the payment menu.
func (a *App) startSubmission(ctx context.Context, chatID, userID int64, command string) {
	banned, err := a.bans.IsBanned(ctx, userID)
	if err != nil {
		a.logger.Error("ban check failed", zap.Int64("user_id", userID), zap.Error(err))
		a.reply(chatID, ui.MsgSomethingBroke)
		return
	}
	if banned {
		a.reply(chatID, ui.MsgUserBanned)
		return
	}

	switch command {
	case "send":
		if err := a.sessions.StartSubmission(ctx, userID, enums.PostTypeFree); err != nil {
			a.logger.Error("start submission failed", zap.Int64("user_id", userID), zap.Error(err))
			a.reply(chatID, ui.MsgSomethingBroke)
			return
		}
		a.replyWithMarkup(chatID, ui.MsgRequestPost, ui.CancelButton())
	case "send35":
		a.offerPayment(ctx, chatID, userID, enums.PostTypeAd35, ui.MsgPaymentMenu35, 35)
	case "send50":
		a.offerPayment(ctx, chatID, userID, enums.PostTypeOfftopic, ui.MsgPaymentMenu50, 50)
	}
}

func (a *App) offerPayment(ctx context.Context, chatID, userID int64, postType enums.PostType, text string, amount int) {
	if err := a.sessions.StartPayment(ctx, userID, postType); err != nil {
		a.logger.Error("start payment failed", zap.Int64("user_id", userID), zap.Error(err))
		a.reply(chatID, ui.MsgSomethingBroke)
		return
	}
	a.replyWithMarkup(chatID, text, ui.PaymentMenu(amount))
}

// handleIntentMessage consumes a free-form message according to the
// actor's current session record.
func (a *App) handleIntentMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	record, ok, err := a.sessions.Current(ctx, userID)
	if err != nil {
		a.logger.Error("load session failed", zap.Int64("user_id", userID), zap.Error(err))
		a.reply(msg.Chat.ID, ui.MsgSomethingBroke)
		return
	}
	if !ok {
		a.replyWithMarkup(msg.Chat.ID, ui.MsgStart, ui.MainMenu())
		return
	}

	switch record.Intent {
	case enums.IntentAwaitFreePost:
		a.receiveSubmission(ctx, msg, enums.PostTypeFree)
	case enums.IntentAwaitPaidPost:
		a.receiveSubmission(ctx, msg, record.PostType)
	case enums.IntentAwaitPayment:
		// Parked until the provider confirms; nudge back to the menu.
		a.replyWithMarkup(msg.Chat.ID, ui.MsgStart, ui.MainMenu())
	case enums.IntentAwaitRejectNote:
		a.receiveRejectionReason(ctx, msg, record.PostID)
	case enums.IntentAwaitEditedPost:
		a.receiveEditedContent(ctx, msg, record.PostID)
	case enums.IntentAwaitModeratorID:
		a.receiveModeratorID(ctx, msg)
	case enums.IntentAwaitModeratorName:
		a.receiveModeratorName(ctx, msg, record.PostID)
	default:
		a.replyWithMarkup(msg.Chat.ID, ui.MsgStart, ui.MainMenu())
	}
}

// receiveSubmission records the post and fans the card out to the
// moderator set.
func (a *App) receiveSubmission(ctx context.Context, msg *tgbotapi.Message, postType enums.PostType) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	banned, err := a.bans.IsBanned(ctx, userID)
	if err != nil {
		a.logger.Error("ban check failed", zap.Int64("user_id", userID), zap.Error(err))
		a.reply(chatID, ui.MsgSomethingBroke)
		return
	}
	if banned {
		a.reply(chatID, ui.MsgUserBanned)
		a.clearSession(ctx, userID)
		return
	}

	content, mediaFileID := messageContent(msg)
	post, pendingCount, err := a.posts.Submit(ctx, userID, postType, content, mediaFileID)
	if err != nil {
		if errors.Is(err, postsvc.ErrEmptyContent) {
			// The intent stays armed; the author just retries.
			a.reply(chatID, ui.MsgEmptyPost)
			return
		}
		a.logger.Error("submit post failed", zap.Int64("user_id", userID), zap.Error(err))
		a.reply(chatID, ui.MsgSomethingBroke)
		return
	}

	author, err := a.users.GetByID(ctx, userID)
	if err != nil {
		a.logger.Warn("load author for card failed", zap.Int64("user_id", userID), zap.Error(err))
		author = model.User{UserID: userID, Username: msg.From.UserName, FirstName: msg.From.FirstName}
	}

	a.fanOutPostCard(ctx, post, author, pendingCount > 1)

	a.reply(chatID, ui.MsgPostSent)
	a.clearSession(ctx, userID)
}

// fanOutPostCard delivers the moderation card to every moderator and
// owner. Delivery failures are isolated per recipient; only a total miss
// is escalated.
func (a *App) fanOutPostCard(ctx context.Context, post model.Post, author model.User, includeApproveAll bool) {
	recipients, err := a.roles.Recipients(ctx)
	if err != nil {
		a.logger.Error("resolve fan-out recipients failed", zap.Error(err))
		recipients = nil
	}

	report := a.notifier.FanOut(ctx, recipients, func(ctx context.Context, recipientID int64, fallback bool) error {
		return a.sendPostCard(recipientID, post, author, includeApproveAll, fallback)
	})
	if report.AllFailed() {
		a.logger.Error("post card reached no moderator",
			zap.Int64("post_id", post.PostID),
			zap.Int("attempted", len(report.Failed)))
	}
}

func (a *App) sendPostCard(recipientID int64, post model.Post, author model.User, includeApproveAll, unassigned bool) error {
	text := ui.PostCard(post, author)
	if unassigned {
		text = ui.MsgNoModeratorsWarning + "\n\n" + text
	}
	keyboard := ui.ModerationKeyboard(post.PostID, author.UserID, includeApproveAll)

	if post.MediaFileID == "" {
		msg := tgbotapi.NewMessage(recipientID, text)
		msg.ReplyMarkup = keyboard
		_, err := a.client.Send(msg)
		return err
	}

	photo := tgbotapi.NewPhoto(recipientID, tgbotapi.FileID(post.MediaFileID))
	photo.Caption = text
	photo.ReplyMarkup = keyboard
	if _, err := a.client.Send(photo); err == nil {
		return nil
	}

	document := tgbotapi.NewDocument(recipientID, tgbotapi.FileID(post.MediaFileID))
	document.Caption = text
	document.ReplyMarkup = keyboard
	_, err := a.client.Send(document)
	return err
}

func (a *App) clearSession(ctx context.Context, userID int64) {
	if err := a.sessions.Clear(ctx, userID); err != nil {
		a.logger.Warn("clear session failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}
