package app

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	banssvc "github.com/neverluckskr/TSObukhivBot/internal/services/bans"
	joinsvc "github.com/neverluckskr/TSObukhivBot/internal/services/joinrequests"
	postsvc "github.com/neverluckskr/TSObukhivBot/internal/services/posts"
	rolesvc "github.com/neverluckskr/TSObukhivBot/internal/services/roles"
	"github.com/neverluckskr/TSObukhivBot/internal/ui"
)

func (a *App) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	cmd, err := ui.DecodeCallback(cb.Data)
	if err != nil {
		a.logger.Warn("unknown callback", zap.String("data", cb.Data))
		a.answerCallback(cb.ID, "")
		return
	}

	switch cmd.Action {
	case ui.ActionSendFree, ui.ActionSend35, ui.ActionSend50:
		a.handleMenuSubmission(ctx, cb, cmd.Action)
	case ui.ActionHelp:
		a.editOrReply(cb.Message, ui.MsgHelp, ui.MainMenu())
		a.answerCallback(cb.ID, "")
	case ui.ActionBackToMenu:
		a.clearSession(ctx, cb.From.ID)
		a.editOrReply(cb.Message, ui.MsgStart, ui.MainMenu())
		a.answerCallback(cb.ID, "")
	case ui.ActionCancel:
		a.clearSession(ctx, cb.From.ID)
		a.editOrReply(cb.Message, ui.MsgActionCancelled, ui.MainMenu())
		a.answerCallback(cb.ID, "")
	case ui.ActionPayStars:
		a.handlePayCallback(ctx, cb, enums.PaymentMethodStars)
	case ui.ActionPayCard:
		a.handlePayCallback(ctx, cb, enums.PaymentMethodCard)
	case ui.ActionApprove:
		a.handleApprove(ctx, cb, cmd.Arg)
	case ui.ActionReject:
		a.handleReject(ctx, cb, cmd.Arg)
	case ui.ActionEdit:
		a.handleEditRequest(ctx, cb, cmd.Arg)
	case ui.ActionApproveAll:
		a.handleApproveAll(ctx, cb)
	case ui.ActionUserInfo:
		a.handleUserInfo(ctx, cb, cmd.Arg)
	case ui.ActionBanUser:
		a.handleBanToggle(ctx, cb, cmd.Arg, true)
	case ui.ActionUnbanUser:
		a.handleBanToggle(ctx, cb, cmd.Arg, false)
	case ui.ActionJoinAccept:
		a.handleJoinDecision(ctx, cb, cmd.Arg, true)
	case ui.ActionJoinDecline:
		a.handleJoinDecision(ctx, cb, cmd.Arg, false)
	}
}

// handleMenuSubmission mirrors the /send commands for the inline menu.
func (a *App) handleMenuSubmission(ctx context.Context, cb *tgbotapi.CallbackQuery, action ui.Action) {
	userID := cb.From.ID

	banned, err := a.bans.IsBanned(ctx, userID)
	if err != nil {
		a.logger.Error("ban check failed", zap.Int64("user_id", userID), zap.Error(err))
		a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		return
	}
	if banned {
		a.alertCallback(cb.ID, ui.MsgUserBanned)
		return
	}

	switch action {
	case ui.ActionSendFree:
		if err := a.sessions.StartSubmission(ctx, userID, enums.PostTypeFree); err != nil {
			a.alertCallback(cb.ID, ui.MsgSomethingBroke)
			return
		}
		a.editOrReply(cb.Message, ui.MsgRequestPost, ui.CancelButton())
	case ui.ActionSend35:
		if err := a.sessions.StartPayment(ctx, userID, enums.PostTypeAd35); err != nil {
			a.alertCallback(cb.ID, ui.MsgSomethingBroke)
			return
		}
		a.editOrReply(cb.Message, ui.MsgPaymentMenu35, ui.PaymentMenu(35))
	case ui.ActionSend50:
		if err := a.sessions.StartPayment(ctx, userID, enums.PostTypeOfftopic); err != nil {
			a.alertCallback(cb.ID, ui.MsgSomethingBroke)
			return
		}
		a.editOrReply(cb.Message, ui.MsgPaymentMenu50, ui.PaymentMenu(50))
	}
	a.answerCallback(cb.ID, "")
}

// requireModerator gates a moderation callback. The alert tells a
// non-moderator exactly nothing beyond the denial.
func (a *App) requireModerator(ctx context.Context, cb *tgbotapi.CallbackQuery) bool {
	isModerator, err := a.roles.IsModerator(ctx, cb.From.ID)
	if err != nil {
		a.logger.Error("role check failed", zap.Int64("user_id", cb.From.ID), zap.Error(err))
		a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		return false
	}
	if !isModerator {
		a.alertCallback(cb.ID, ui.MsgNotModerator)
		return false
	}
	return true
}

func (a *App) handleApprove(ctx context.Context, cb *tgbotapi.CallbackQuery, postID int64) {
	if !a.requireModerator(ctx, cb) {
		return
	}

	result, err := a.posts.Approve(ctx, postID, cb.From.ID)
	if err != nil {
		switch {
		case errors.Is(err, postsvc.ErrNotFound):
			a.alertCallback(cb.ID, ui.MsgPostNotFound)
		case errors.Is(err, postsvc.ErrAlreadyHandled):
			a.alertCallback(cb.ID, ui.MsgPostHandled)
		default:
			a.logger.Error("approve post failed", zap.Int64("post_id", postID), zap.Error(err))
			a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		}
		return
	}

	if result.PublishErr != nil {
		if strings.Contains(strings.ToLower(result.PublishErr.Error()), "chat not found") {
			a.alertCallback(cb.ID, ui.MsgChannelUnreachable)
		} else {
			a.alertCallback(cb.ID, "❌ Ошибка публикации: "+result.PublishErr.Error())
		}
		return
	}

	a.answerCallback(cb.ID, ui.MsgApprovedOK)
	a.stampMessage(cb.Message, ui.ApprovedStamp(cardText(cb.Message)))

	// Author notification is best effort.
	a.reply(result.Post.UserID, ui.MsgPostApproved)
}

func (a *App) handleReject(ctx context.Context, cb *tgbotapi.CallbackQuery, postID int64) {
	if !a.requireModerator(ctx, cb) {
		return
	}

	post, err := a.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, postsvc.ErrNotFound) {
			a.alertCallback(cb.ID, ui.MsgPostNotFound)
		} else {
			a.logger.Error("load post failed", zap.Int64("post_id", postID), zap.Error(err))
			a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		}
		return
	}
	if post.Status != enums.PostStatusPending {
		a.alertCallback(cb.ID, ui.MsgPostHandled)
		return
	}

	if err := a.sessions.AwaitRejectionReason(ctx, cb.From.ID, postID); err != nil {
		a.logger.Error("arm rejection intent failed", zap.Int64("post_id", postID), zap.Error(err))
		a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		return
	}

	a.stampMessage(cb.Message, ui.RejectedStamp(cardText(cb.Message)))
	a.answerCallback(cb.ID, ui.MsgEnterReason)
}

// receiveRejectionReason closes the rejection the moderator started.
func (a *App) receiveRejectionReason(ctx context.Context, msg *tgbotapi.Message, postID int64) {
	moderatorID := msg.From.ID

	post, err := a.posts.Reject(ctx, postID, moderatorID, msg.Text)
	if err != nil {
		switch {
		case errors.Is(err, postsvc.ErrNotFound):
			a.reply(msg.Chat.ID, ui.MsgPostNotFound)
		case errors.Is(err, postsvc.ErrAlreadyHandled):
			a.reply(msg.Chat.ID, ui.MsgPostHandled)
		default:
			a.logger.Error("reject post failed", zap.Int64("post_id", postID), zap.Error(err))
			a.reply(msg.Chat.ID, ui.MsgSomethingBroke)
		}
		a.clearSession(ctx, moderatorID)
		return
	}

	reason := postsvc.DefaultRejectionReason
	if post.RejectionReason != nil {
		reason = *post.RejectionReason
	}
	a.reply(post.UserID, ui.RejectedNotice(reason))

	a.reply(msg.Chat.ID, ui.MsgAuthorNotified)
	a.clearSession(ctx, moderatorID)
}

func (a *App) handleEditRequest(ctx context.Context, cb *tgbotapi.CallbackQuery, postID int64) {
	if !a.requireModerator(ctx, cb) {
		return
	}

	post, err := a.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, postsvc.ErrNotFound) {
			a.alertCallback(cb.ID, ui.MsgPostNotFound)
		} else {
			a.logger.Error("load post failed", zap.Int64("post_id", postID), zap.Error(err))
			a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		}
		return
	}
	if post.Status != enums.PostStatusPending {
		a.alertCallback(cb.ID, ui.MsgPostHandled)
		return
	}

	if err := a.sessions.AwaitEditedContent(ctx, cb.From.ID, postID); err != nil {
		a.logger.Error("arm edit intent failed", zap.Int64("post_id", postID), zap.Error(err))
		a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		return
	}

	a.stampMessage(cb.Message, cardText(cb.Message)+"\n\n"+ui.MsgSendNewContent)
	a.answerCallback(cb.ID, ui.MsgSendNewContent)
}

// receiveEditedContent swaps the pending post's content and re-sends the
// refreshed card to the acting moderator.
func (a *App) receiveEditedContent(ctx context.Context, msg *tgbotapi.Message, postID int64) {
	moderatorID := msg.From.ID

	content, mediaFileID := messageContent(msg)
	post, pendingCount, err := a.posts.Edit(ctx, postID, content, mediaFileID)
	if err != nil {
		switch {
		case errors.Is(err, postsvc.ErrEmptyContent):
			a.reply(msg.Chat.ID, ui.MsgEmptyPost)
			return
		case errors.Is(err, postsvc.ErrNotFound):
			a.reply(msg.Chat.ID, ui.MsgPostNotFound)
		case errors.Is(err, postsvc.ErrAlreadyHandled):
			a.reply(msg.Chat.ID, ui.MsgPostHandled)
		default:
			a.logger.Error("edit post failed", zap.Int64("post_id", postID), zap.Error(err))
			a.reply(msg.Chat.ID, ui.MsgSomethingBroke)
		}
		a.clearSession(ctx, moderatorID)
		return
	}

	author, err := a.users.GetByID(ctx, post.UserID)
	if err != nil {
		a.logger.Warn("load author for refreshed card failed", zap.Int64("user_id", post.UserID), zap.Error(err))
	}
	if err := a.sendPostCard(msg.Chat.ID, post, author, pendingCount > 1, false); err != nil {
		a.logger.Warn("send refreshed card failed", zap.Int64("post_id", postID), zap.Error(err))
	}

	a.reply(msg.Chat.ID, ui.MsgPostUpdated)
	a.clearSession(ctx, moderatorID)
}

func (a *App) handleApproveAll(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if !a.requireModerator(ctx, cb) {
		return
	}

	result, err := a.posts.ApproveAll(ctx, cb.From.ID)
	if err != nil {
		a.logger.Error("bulk approve failed", zap.Error(err))
		a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		return
	}

	for _, post := range result.Approved {
		a.reply(post.UserID, ui.MsgPostApproved)
	}

	summary := ui.BulkApproveResult(len(result.Approved), result.FailedCount)
	a.alertCallback(cb.ID, summary)
	a.stampMessage(cb.Message, cardText(cb.Message)+"\n\n"+summary)
}

func (a *App) handleUserInfo(ctx context.Context, cb *tgbotapi.CallbackQuery, userID int64) {
	if !a.requireModerator(ctx, cb) {
		return
	}

	card, err := a.bans.UserCard(ctx, userID)
	if err != nil {
		if errors.Is(err, banssvc.ErrUserNotFound) {
			a.alertCallback(cb.ID, ui.MsgUserNotFound)
		} else {
			a.logger.Error("load user card failed", zap.Int64("user_id", userID), zap.Error(err))
			a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		}
		return
	}

	chatID := cb.From.ID
	if cb.Message != nil {
		chatID = cb.Message.Chat.ID
	}
	a.replyWithMarkup(chatID, ui.UserCard(card), ui.UserInfoKeyboard(userID))
	a.answerCallback(cb.ID, "")
}

func (a *App) handleBanToggle(ctx context.Context, cb *tgbotapi.CallbackQuery, userID int64, ban bool) {
	if !a.requireModerator(ctx, cb) {
		return
	}

	var err error
	if ban {
		err = a.bans.Ban(ctx, userID)
	} else {
		err = a.bans.Unban(ctx, userID)
	}
	if err != nil {
		if errors.Is(err, banssvc.ErrUserNotFound) {
			a.alertCallback(cb.ID, ui.MsgUserNotFound)
		} else {
			a.logger.Error("toggle ban failed", zap.Int64("user_id", userID), zap.Bool("ban", ban), zap.Error(err))
			a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		}
		return
	}

	if ban {
		a.alertCallback(cb.ID, ui.MsgUserBannedOK)
		a.editTextKeepKeyboard(cb.Message, ui.BannedStamp(cardText(cb.Message)), ui.UserInfoKeyboard(userID))
	} else {
		a.alertCallback(cb.ID, ui.MsgUserUnbannedOK)
		a.editTextKeepKeyboard(cb.Message, ui.UnbannedStamp(cardText(cb.Message)), ui.UserInfoKeyboard(userID))
	}
}

func (a *App) handleJoinDecision(ctx context.Context, cb *tgbotapi.CallbackQuery, requestID int64, accept bool) {
	if !a.requireModerator(ctx, cb) {
		return
	}

	var err error
	if accept {
		_, err = a.joins.Approve(ctx, requestID, cb.From.ID)
	} else {
		_, err = a.joins.Reject(ctx, requestID, cb.From.ID)
	}
	if err != nil {
		switch {
		case errors.Is(err, joinsvc.ErrNotFound):
			a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		case errors.Is(err, joinsvc.ErrAlreadyHandled):
			a.alertCallback(cb.ID, ui.MsgRequestHandled)
		default:
			a.logger.Error("join decision failed", zap.Int64("request_id", requestID), zap.Error(err))
			a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		}
		return
	}

	if accept {
		a.answerCallback(cb.ID, ui.MsgJoinApprovedOK)
		a.stampMessage(cb.Message, cardText(cb.Message)+"\n\n"+ui.MsgJoinApprovedOK)
	} else {
		a.answerCallback(cb.ID, ui.MsgJoinDeclinedOK)
		a.stampMessage(cb.Message, cardText(cb.Message)+"\n\n"+ui.MsgJoinDeclinedOK)
	}
}

func (a *App) handleStatsCommand(ctx context.Context, chatID, userID int64) {
	isModerator, err := a.roles.IsModerator(ctx, userID)
	if err != nil {
		a.logger.Error("role check failed", zap.Int64("user_id", userID), zap.Error(err))
		a.reply(chatID, ui.MsgSomethingBroke)
		return
	}
	if !isModerator {
		a.reply(chatID, ui.MsgNotModerator)
		return
	}

	summary, err := a.stats.Summary(ctx)
	if err != nil {
		a.logger.Error("stats summary failed", zap.Error(err))
		a.reply(chatID, ui.MsgSomethingBroke)
		return
	}
	a.reply(chatID, ui.StatsText(summary))
}

// startModeratorAdd opens the owner-only promotion flow: first message is
// the target's id, the second is the display name.
func (a *App) startModeratorAdd(ctx context.Context, chatID, userID int64) {
	if !a.roles.IsOwner(userID) {
		a.reply(chatID, ui.MsgOwnerOnly)
		return
	}
	if err := a.sessions.AwaitModeratorID(ctx, userID); err != nil {
		a.logger.Error("arm moderator-id intent failed", zap.Int64("user_id", userID), zap.Error(err))
		a.reply(chatID, ui.MsgSomethingBroke)
		return
	}
	a.replyWithMarkup(chatID, ui.MsgEnterModID, ui.CancelButton())
}

func (a *App) handleModeratorList(ctx context.Context, chatID, userID int64) {
	if !a.roles.IsOwner(userID) {
		a.reply(chatID, ui.MsgOwnerOnly)
		return
	}
	moderators, err := a.roles.ListModerators(ctx)
	if err != nil {
		a.logger.Error("list moderators failed", zap.Error(err))
		a.reply(chatID, ui.MsgSomethingBroke)
		return
	}
	a.reply(chatID, ui.ModeratorList(moderators))
}

func (a *App) receiveModeratorID(ctx context.Context, msg *tgbotapi.Message) {
	ownerID := msg.From.ID

	targetID, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
	if err != nil || targetID <= 0 {
		a.reply(msg.Chat.ID, ui.MsgBadUserID)
		return
	}

	if _, err := a.roles.AddModerator(ctx, ownerID, targetID, ""); err != nil {
		if errors.Is(err, rolesvc.ErrOwnerOnly) {
			a.reply(msg.Chat.ID, ui.MsgOwnerOnly)
		} else {
			a.logger.Error("add moderator failed", zap.Int64("target_id", targetID), zap.Error(err))
			a.reply(msg.Chat.ID, ui.MsgSomethingBroke)
		}
		a.clearSession(ctx, ownerID)
		return
	}

	if err := a.sessions.AwaitModeratorName(ctx, ownerID, targetID); err != nil {
		a.logger.Error("arm moderator-name intent failed", zap.Int64("target_id", targetID), zap.Error(err))
		a.reply(msg.Chat.ID, ui.MsgModeratorAdded)
		a.clearSession(ctx, ownerID)
		return
	}
	a.reply(msg.Chat.ID, ui.MsgEnterModName)
}

func (a *App) receiveModeratorName(ctx context.Context, msg *tgbotapi.Message, targetID int64) {
	ownerID := msg.From.ID

	name := strings.TrimSpace(msg.Text)
	if name != "" {
		if err := a.roles.RenameModerator(ctx, ownerID, targetID, name); err != nil {
			a.logger.Warn("rename moderator failed", zap.Int64("target_id", targetID), zap.Error(err))
		}
	}

	a.reply(msg.Chat.ID, ui.MsgModeratorAdded)

	moderators, err := a.roles.ListModerators(ctx)
	if err == nil {
		a.reply(msg.Chat.ID, ui.ModeratorList(moderators))
	}
	a.clearSession(ctx, ownerID)
}

// editOrReply rewrites the bot's own menu message in place; media
// messages and foreign messages get a fresh reply instead.
func (a *App) editOrReply(msg *tgbotapi.Message, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if msg == nil {
		return
	}
	if msg.Text != "" {
		edit := tgbotapi.NewEditMessageTextAndMarkup(msg.Chat.ID, msg.MessageID, text, markup)
		if _, err := a.client.Send(edit); err == nil {
			return
		}
	}
	a.replyWithMarkup(msg.Chat.ID, text, markup)
}

func (a *App) editTextKeepKeyboard(msg *tgbotapi.Message, text string, markup tgbotapi.InlineKeyboardMarkup) {
	if msg == nil {
		return
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(msg.Chat.ID, msg.MessageID, text, markup)
	if _, err := a.client.Send(edit); err != nil {
		a.logger.Warn("edit user card failed",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int("message_id", msg.MessageID),
			zap.Error(err))
	}
}
