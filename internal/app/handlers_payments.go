package app

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	paysvc "github.com/neverluckskr/TSObukhivBot/internal/services/payments"
	"github.com/neverluckskr/TSObukhivBot/internal/ui"
)

// handlePayCallback issues the invoice for the tier parked in the
// actor's session.
func (a *App) handlePayCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, method enums.PaymentMethod) {
	userID := cb.From.ID

	record, ok, err := a.sessions.Current(ctx, userID)
	if err != nil {
		a.logger.Error("load session failed", zap.Int64("user_id", userID), zap.Error(err))
		a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		return
	}
	if !ok || record.Intent != enums.IntentAwaitPayment {
		a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		return
	}

	spec, err := a.payments.ComposeInvoice(record.PostType, method, userID)
	if err != nil {
		switch {
		case errors.Is(err, paysvc.ErrCardDisabled):
			a.alertCallback(cb.ID, ui.MsgCardUnavailable)
		case errors.Is(err, paysvc.ErrUnknownTier):
			a.alertCallback(cb.ID, ui.MsgSomethingBroke)
		default:
			a.logger.Error("compose invoice failed", zap.Int64("user_id", userID), zap.Error(err))
			a.alertCallback(cb.ID, ui.MsgPaymentError)
		}
		return
	}

	invoice := tgbotapi.InvoiceConfig{
		BaseChat:       tgbotapi.BaseChat{ChatID: userID},
		Title:          spec.Title,
		Description:    spec.Description,
		Payload:        spec.Payload,
		ProviderToken:  spec.ProviderToken,
		Currency:       spec.Currency,
		Prices:         []tgbotapi.LabeledPrice{{Label: spec.Title, Amount: spec.Amount}},
		StartParameter: spec.Payload,
	}
	if _, err := a.client.Send(invoice); err != nil {
		a.logger.Error("send invoice failed", zap.Int64("user_id", userID), zap.Error(err))
		a.alertCallback(cb.ID, ui.MsgPaymentError)
		return
	}

	a.answerCallback(cb.ID, ui.MsgInvoiceSent)
}

// handlePreCheckout authorizes the charge only for payloads the bot
// itself issued.
func (a *App) handlePreCheckout(_ context.Context, query *tgbotapi.PreCheckoutQuery) {
	answer := tgbotapi.PreCheckoutConfig{
		PreCheckoutQueryID: query.ID,
		OK:                 a.payments.Precheck(query.InvoicePayload),
	}
	if !answer.OK {
		answer.ErrorMessage = ui.MsgBadPrecheckout
		a.logger.Warn("pre-checkout declined", zap.String("payload", query.InvoicePayload))
	}
	if err := a.client.Request(answer); err != nil {
		a.logger.Error("answer pre-checkout failed", zap.Error(err))
	}
}

// handleSuccessfulPayment records the confirmed charge and unlocks the
// paid submission.
func (a *App) handleSuccessfulPayment(ctx context.Context, msg *tgbotapi.Message) {
	payment := msg.SuccessfulPayment
	userID := msg.From.ID

	result, err := a.payments.Confirm(ctx, userID, payment.InvoicePayload,
		payment.TotalAmount, payment.Currency, payment.TelegramPaymentChargeID)
	if err != nil {
		a.logger.Error("confirm payment failed",
			zap.Int64("user_id", userID),
			zap.String("payload", payment.InvoicePayload),
			zap.Error(err))
		a.reply(msg.Chat.ID, ui.MsgPaymentBroken)
		return
	}

	if err := a.sessions.PaymentConfirmed(ctx, userID, result.Payment.PostType); err != nil {
		a.logger.Error("advance session after payment failed",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}

	a.replyWithMarkup(msg.Chat.ID, ui.MsgPaymentSuccess, ui.CancelButton())
}
