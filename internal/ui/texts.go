package ui

import (
	"fmt"
	"strings"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
	"github.com/neverluckskr/TSObukhivBot/internal/services/bans"
	"github.com/neverluckskr/TSObukhivBot/internal/services/stats"
)

const (
	MsgStart = "👋 Привет! Это бот канала «Тёмная сторона Обухова».\n\n" +
		"Здесь ты можешь предложить пост в канал. Бесплатные посты проходят модерацию, " +
		"посты про подики/жидкости и посты не по тематике публикуются после оплаты и модерации.\n\n" +
		"Выбери действие в меню ниже."

	MsgHelp = "ℹ️ Как это работает:\n\n" +
		"📝 /send — бесплатный пост в канал (после модерации)\n" +
		"💰 /send35 — пост про подики/жидкости (35 грн или 35 ⭐)\n" +
		"🎯 /send50 — пост не по тематике (50 грн или 50 ⭐)\n" +
		"❌ /cancel — отменить текущее действие\n\n" +
		"После отправки пост попадает на модерацию. Мы уведомим тебя о решении."

	MsgRequestPost     = "📝 Отправь текст поста. Можно прикрепить фото или документ."
	MsgPostSent        = "✅ Пост отправлен на модерацию! Мы уведомим тебя о решении."
	MsgActionCancelled = "❌ Действие отменено."
	MsgUserBanned      = "🚫 Ты заблокирован и не можешь отправлять посты."
	MsgEmptyPost       = "❌ Пост не может быть пустым. Отправь текст."

	MsgPaymentMenu35 = "💰 Пост про подики/жидкости\n\nСтоимость: 35 грн или 35 ⭐ Telegram Stars\n\nВыбери способ оплаты:"
	MsgPaymentMenu50 = "💰 Пост не по тематике\n\nСтоимость: 50 грн или 50 ⭐ Telegram Stars\n\nВыбери способ оплаты:"

	MsgInvoiceSent     = "💳 Счет на оплату отправлен!"
	MsgPaymentSuccess  = "✅ Оплата получена! Теперь отправь текст поста. Можно прикрепить фото или документ."
	MsgPaymentError    = "❌ Ошибка создания счета. Попробуй позже."
	MsgPaymentBroken   = "❌ Ошибка обработки платежа. Обратитесь к администратору."
	MsgCardUnavailable = "❌ Оплата через карту временно недоступна. Используйте Telegram Stars."
	MsgBadPrecheckout  = "Ошибка: неверный формат платежа. Попробуйте снова."

	MsgPostApproved         = "🎉 Твой пост одобрен и опубликован в канале!"
	MsgPostRejectedTemplate = "😔 Твой пост отклонен.\n\nПричина: %s"

	MsgNotModerator    = "❌ У тебя нет прав модератора."
	MsgOwnerOnly       = "❌ Это действие доступно только владельцу."
	MsgPostNotFound    = "❌ Пост не найден."
	MsgPostHandled     = "❌ Пост уже обработан."
	MsgUserNotFound    = "❌ Пользователь не найден."
	MsgApprovedOK      = "✅ Пост одобрен и опубликован!"
	MsgEnterReason     = "Введите причину отказа:"
	MsgAuthorNotified  = "✅ Пользователь уведомлен об отказе."
	MsgPostUpdated     = "✅ Пост обновлён. Можешь одобрить его."
	MsgSendNewContent  = "✏️ Отправьте новый текст поста (можно прикрепить фото или документ)."
	MsgUserBannedOK    = "✅ Пользователь забанен."
	MsgUserUnbannedOK  = "✅ Пользователь разбанен."
	MsgEnterModID      = "Отправь user ID нового модератора:"
	MsgEnterModName    = "Отправь имя для модератора:"
	MsgModeratorAdded  = "✅ Модератор добавлен."
	MsgBadUserID       = "❌ Неверный user ID. Отправь число."
	MsgJoinApprovedOK  = "✅ Заявка на вступление одобрена."
	MsgJoinDeclinedOK  = "❌ Заявка на вступление отклонена."
	MsgRequestHandled  = "❌ Заявка уже обработана."
	MsgSomethingBroke  = "❌ Что-то пошло не так. Попробуйте снова."

	// Prepended to a card when no moderators are assigned and the static
	// owners receive it instead.
	MsgNoModeratorsWarning = "⚠️ Модераторы не назначены. Уведомление доставлено владельцам канала."

	// Shown to the moderator when the channel rejects a publish with
	// "chat not found"; the usual cause is misconfiguration, not the post.
	MsgChannelUnreachable = "❌ Бот не может публиковать в канал. Проверьте:\n" +
		"1. Бот добавлен в канал как администратор\n" +
		"2. У бота есть права на публикацию сообщений\n" +
		"3. CHANNEL_ID указан правильно"
)

var postTypeNames = map[enums.PostType]string{
	enums.PostTypeFree:     "Бесплатный пост",
	enums.PostTypeAd35:     "Пост про подики/жидкости (35 грн)",
	enums.PostTypeOfftopic: "Пост не по тематике (50 грн)",
}

func PostTypeName(t enums.PostType) string {
	if name, ok := postTypeNames[t]; ok {
		return name
	}
	return string(t)
}

// PostCard renders a submission for the moderator fan-out.
func PostCard(post model.Post, user model.User) string {
	username := user.Username
	if username == "" {
		username = "не указан"
	}
	date := "Неизвестно"
	if !post.CreatedAt.IsZero() {
		date = post.CreatedAt.Format("02.01.2006, 15:04")
	}
	return fmt.Sprintf(`🆕 Новый пост на модерацию

Тип: %s
От: User ID: %d
Username: @%s
Дата: %s

Контент:
%s`, PostTypeName(post.Type), user.UserID, username, date, post.Content)
}

// UserCard renders the author profile behind the "user info" button.
func UserCard(card bans.Card) string {
	username := card.User.Username
	if username == "" {
		username = "не указан"
	}
	firstName := card.User.FirstName
	if firstName == "" {
		firstName = "не указано"
	}
	status := "✅ Активен"
	if card.User.IsBanned {
		status = "🚫 Забанен"
	}
	regDate := "Неизвестно"
	if !card.User.RegisteredAt.IsZero() {
		regDate = card.User.RegisteredAt.Format("02.01.2006")
	}
	return fmt.Sprintf(`👤 Информация о пользователе

ID: %d
Username: @%s
Имя: %s
Статус: %s
Дата регистрации: %s
Всего постов: %d`, card.User.UserID, username, firstName, status, regDate, card.PostCount)
}

// StatsText renders the moderation queue digest.
func StatsText(summary stats.Summary) string {
	return fmt.Sprintf(`📊 Статистика постов

Всего постов: %d
⏳ На модерации: %d
✅ Одобрено: %d
❌ Отклонено: %d`, summary.Total, summary.Pending, summary.Approved, summary.Rejected)
}

func RejectedNotice(reason string) string {
	return fmt.Sprintf(MsgPostRejectedTemplate, reason)
}

func BulkApproveResult(approved, failed int) string {
	return fmt.Sprintf("✅ Одобрено: %d\n❌ Ошибок: %d", approved, failed)
}

// JoinRequestCard renders a pending join request for the owner digest.
func JoinRequestCard(request model.JoinRequest) string {
	username := request.Username
	if username == "" {
		username = "не указан"
	}
	date := ""
	if !request.CreatedAt.IsZero() {
		date = request.CreatedAt.Format("02.01.2006, 15:04")
	}
	var sb strings.Builder
	sb.WriteString("🔔 Новая заявка на вступление в канал\n\n")
	fmt.Fprintf(&sb, "ID: %d\nUsername: @%s\nИмя: %s", request.UserID, username, request.FullName)
	if date != "" {
		fmt.Fprintf(&sb, "\nДата: %s", date)
	}
	return sb.String()
}

// ModeratorList renders /moderator output for the owner.
func ModeratorList(moderators []model.Moderator) string {
	if len(moderators) == 0 {
		return "Модераторы пока не добавлены."
	}
	var sb strings.Builder
	sb.WriteString("👮 Модераторы:\n")
	for _, m := range moderators {
		name := m.Username
		if name == "" {
			name = "без имени"
		}
		fmt.Fprintf(&sb, "\n• %s — %d", name, m.ModeratorID)
		if !m.AddedAt.IsZero() {
			fmt.Fprintf(&sb, " (с %s)", m.AddedAt.Format("02.01.2006"))
		}
	}
	return sb.String()
}

// ApprovedStamp marks the moderator's copy of a handled post.
func ApprovedStamp(current string) string {
	return current + "\n\n✅ ОДОБРЕНО"
}

func RejectedStamp(current string) string {
	return current + "\n\n❌ ОТКЛОНЕНО\n\n" + MsgEnterReason
}

func BannedStamp(current string) string {
	return current + "\n\n🚫 ЗАБАНЕН"
}

func UnbannedStamp(current string) string {
	return current + "\n\n✅ РАЗБАНЕН"
}
