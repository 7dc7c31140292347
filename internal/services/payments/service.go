package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
)

const (
	// Invoice payloads follow "post_<type>_<userID>_<nonce>". Pre-checkout
	// authorizes only payloads carrying this prefix.
	payloadPrefix = "post_"

	// StarsCurrency amounts are passed to the provider as-is; any other
	// currency is priced in minor units (amount x100).
	StarsCurrency = "XTR"
)

const (
	AmountAd35     = 35
	AmountOfftopic = 50
)

var (
	ErrUnknownTier  = errors.New("unknown paid tier")
	ErrCardDisabled = errors.New("card payments are disabled")
	ErrBadPayload   = errors.New("invoice payload does not match the issuance scheme")
)

type Ledger interface {
	Create(ctx context.Context, payment model.Payment) (model.Payment, bool, error)
}

type Service struct {
	ledger        Ledger
	providerToken string
	cardCurrency  string
	logger        *zap.Logger
}

// InvoiceSpec is everything the transport needs to issue one invoice.
type InvoiceSpec struct {
	Title         string
	Description   string
	Payload       string
	ProviderToken string
	Currency      string
	// Amount is in provider units: Stars for XTR, minor units otherwise.
	Amount int
}

// ConfirmResult reports one confirmation event. Duplicate is set when the
// provider replayed an event that was already in the ledger; no second row
// is written in that case.
type ConfirmResult struct {
	Payment   model.Payment
	Duplicate bool
}

func NewService(ledger Ledger, providerToken, cardCurrency string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cardCurrency) == "" {
		cardCurrency = "UAH"
	}
	return &Service{
		ledger:        ledger,
		providerToken: strings.TrimSpace(providerToken),
		cardCurrency:  cardCurrency,
		logger:        logger,
	}
}

func (s *Service) CardEnabled() bool {
	return s.providerToken != ""
}

func TierAmount(postType enums.PostType) (int, error) {
	switch postType {
	case enums.PostTypeAd35:
		return AmountAd35, nil
	case enums.PostTypeOfftopic:
		return AmountOfftopic, nil
	default:
		return 0, ErrUnknownTier
	}
}

// ComposeInvoice builds the invoice for a paid tier. Stars invoices carry
// an empty provider token (digital goods); card invoices require the
// configured provider and price in minor units.
func (s *Service) ComposeInvoice(postType enums.PostType, method enums.PaymentMethod, payerID int64) (InvoiceSpec, error) {
	amount, err := TierAmount(postType)
	if err != nil {
		return InvoiceSpec{}, err
	}

	spec := InvoiceSpec{
		Title:       fmt.Sprintf("Пост в канал (%d грн)", amount),
		Description: "Оплата за пост в канал «Тёмная сторона Обухова»",
		Payload:     NewPayload(postType, payerID),
	}

	switch method {
	case enums.PaymentMethodStars:
		spec.Currency = StarsCurrency
		spec.Amount = amount
	case enums.PaymentMethodCard:
		if !s.CardEnabled() {
			return InvoiceSpec{}, ErrCardDisabled
		}
		spec.ProviderToken = s.providerToken
		spec.Currency = s.cardCurrency
		spec.Amount = amount * 100
	default:
		return InvoiceSpec{}, fmt.Errorf("unsupported payment method %q", method)
	}

	return spec, nil
}

// NewPayload mints a payload unique per invoice.
func NewPayload(postType enums.PostType, payerID int64) string {
	return payloadPrefix + string(postType) + "_" + strconv.FormatInt(payerID, 10) + "_" + uuid.NewString()
}

// ParsePayload recovers the tier from an invoice payload.
func ParsePayload(payload string) (enums.PostType, error) {
	if !strings.HasPrefix(payload, payloadPrefix) {
		return "", ErrBadPayload
	}

	rest := strings.TrimPrefix(payload, payloadPrefix)
	parts := strings.SplitN(rest, "_", 2)
	postType, ok := enums.ParsePostType(parts[0])
	if !ok || !postType.IsPaid() {
		return "", ErrBadPayload
	}

	return postType, nil
}

// Precheck validates the invoice reference before the charge is
// authorized. Anything outside the issuance scheme is rejected.
func (s *Service) Precheck(payload string) bool {
	_, err := ParsePayload(payload)
	return err == nil
}

// Confirm records a provider-confirmed payment in the append-only ledger.
// Replayed confirmation events for the same transaction never create a
// second row.
func (s *Service) Confirm(ctx context.Context, payerID int64, payload string, totalAmount int, currency, transactionID string) (ConfirmResult, error) {
	postType, err := ParsePayload(payload)
	if err != nil {
		return ConfirmResult{}, err
	}

	amount := float64(totalAmount)
	method := enums.PaymentMethodCard
	if currency == StarsCurrency {
		method = enums.PaymentMethodStars
	} else {
		amount = float64(totalAmount) / 100
	}

	payment := model.Payment{
		UserID:        payerID,
		PostType:      postType,
		Amount:        amount,
		Currency:      currency,
		Method:        method,
		Status:        enums.PaymentStatusCompleted,
		TransactionID: transactionID,
	}

	recorded, inserted, err := s.ledger.Create(ctx, payment)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("record payment: %w", err)
	}
	if !inserted {
		s.logger.Warn("duplicate payment confirmation ignored",
			zap.Int64("payer_id", payerID),
			zap.String("transaction_id", transactionID))
	}

	return ConfirmResult{Payment: recorded, Duplicate: !inserted}, nil
}
