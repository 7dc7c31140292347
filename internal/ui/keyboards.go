package ui

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/neverluckskr/TSObukhivBot/internal/infra/telegram"
)

const (
	ButtonSendFree = "📝 Отправить бесплатный пост"
	ButtonSend35   = "💰 Отправить пост про подики, жидкости"
	ButtonSend50   = "🎯 Отправить пост не по тематике"
)

// MainMenu is the inline menu under /help and the post-action fallback.
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return telegram.BuildInlineKeyboard([][]telegram.InlineButton{
		{{Text: "📝 Отправить пост в канал", Data: EncodeCallback(Command{Action: ActionSendFree})}},
		{{Text: "💰 Пост про подики/жидкости (35 грн)", Data: EncodeCallback(Command{Action: ActionSend35})}},
		{{Text: "🎯 Пост не по тематике (50 грн)", Data: EncodeCallback(Command{Action: ActionSend50})}},
		{{Text: "ℹ️ Подробности о боте", Data: EncodeCallback(Command{Action: ActionHelp})}},
	})
}

// MainReplyKeyboard is the persistent keyboard at the bottom of the chat.
func MainReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return telegram.BuildReplyKeyboard([][]string{
		{ButtonSendFree},
		{ButtonSend35},
		{ButtonSend50},
	})
}

// PaymentMenu offers Stars or card for the given tier amount.
func PaymentMenu(amount int) tgbotapi.InlineKeyboardMarkup {
	return telegram.BuildInlineKeyboard([][]telegram.InlineButton{
		{{Text: "⭐ Оплатить Stars", Data: EncodeCallback(Command{Action: ActionPayStars, Arg: int64(amount)})}},
		{{Text: "💳 Оплатить картой", Data: EncodeCallback(Command{Action: ActionPayCard, Arg: int64(amount)})}},
		{{Text: "« Назад", Data: EncodeCallback(Command{Action: ActionBackToMenu})}},
	})
}

func CancelButton() tgbotapi.InlineKeyboardMarkup {
	return telegram.BuildInlineKeyboard([][]telegram.InlineButton{
		{{Text: "❌ Отменить", Data: EncodeCallback(Command{Action: ActionCancel})}},
	})
}

// ModerationKeyboard is attached to each post card in the fan-out. The
// bulk-approve row appears only when more than one post is waiting.
func ModerationKeyboard(postID, userID int64, includeApproveAll bool) tgbotapi.InlineKeyboardMarkup {
	rows := [][]telegram.InlineButton{
		{
			{Text: "✅ Одобрить", Data: EncodeCallback(Command{Action: ActionApprove, Arg: postID})},
			{Text: "❌ Отказать", Data: EncodeCallback(Command{Action: ActionReject, Arg: postID})},
		},
		{{Text: "✏️ Редактировать", Data: EncodeCallback(Command{Action: ActionEdit, Arg: postID})}},
		{{Text: "👤 Инфо о пользователе", Data: EncodeCallback(Command{Action: ActionUserInfo, Arg: userID})}},
	}
	if includeApproveAll {
		rows = append(rows, []telegram.InlineButton{
			{Text: "⚠️ Одобрить все", Data: EncodeCallback(Command{Action: ActionApproveAll})},
		})
	}
	return telegram.BuildInlineKeyboard(rows)
}

// UserInfoKeyboard is attached to the author profile card.
func UserInfoKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	return telegram.BuildInlineKeyboard([][]telegram.InlineButton{
		{
			{Text: "🚫 Забанить", Data: EncodeCallback(Command{Action: ActionBanUser, Arg: userID})},
			{Text: "✅ Разбанить", Data: EncodeCallback(Command{Action: ActionUnbanUser, Arg: userID})},
		},
	})
}

// JoinRequestKeyboard is attached to a join-request digest message.
func JoinRequestKeyboard(requestID int64) tgbotapi.InlineKeyboardMarkup {
	return telegram.BuildInlineKeyboard([][]telegram.InlineButton{
		{
			{Text: "✅ Принять", Data: EncodeCallback(Command{Action: ActionJoinAccept, Arg: requestID})},
			{Text: "❌ Отклонить", Data: EncodeCallback(Command{Action: ActionJoinDecline, Arg: requestID})},
		},
	})
}
