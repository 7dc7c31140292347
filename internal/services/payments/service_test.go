package payments

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
)

type ledgerStub struct {
	byTransaction map[string]model.Payment
	nextID        int64
}

func newLedgerStub() *ledgerStub {
	return &ledgerStub{byTransaction: make(map[string]model.Payment)}
}

func (s *ledgerStub) Create(_ context.Context, payment model.Payment) (model.Payment, bool, error) {
	if payment.TransactionID != "" {
		if existing, ok := s.byTransaction[payment.TransactionID]; ok {
			return existing, false, nil
		}
	}
	s.nextID++
	payment.PaymentID = s.nextID
	if payment.TransactionID != "" {
		s.byTransaction[payment.TransactionID] = payment
	}
	return payment, true, nil
}

func TestPayloadRoundTrip(t *testing.T) {
	payload := NewPayload(enums.PostTypeAd35, 77)
	require.True(t, strings.HasPrefix(payload, "post_ad35_77_"))

	postType, err := ParsePayload(payload)
	require.NoError(t, err)
	require.Equal(t, enums.PostTypeAd35, postType)
}

func TestPrecheck(t *testing.T) {
	svc := NewService(newLedgerStub(), "", "", nil)

	tests := []struct {
		name    string
		payload string
		want    bool
	}{
		{name: "valid tier a", payload: NewPayload(enums.PostTypeAd35, 1), want: true},
		{name: "valid tier b", payload: NewPayload(enums.PostTypeOfftopic, 1), want: true},
		{name: "foreign payload", payload: "subscription_123", want: false},
		{name: "free tier is never invoiced", payload: "post_free_1_x", want: false},
		{name: "empty", payload: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, svc.Precheck(tt.payload))
		})
	}
}

func TestComposeInvoiceStars(t *testing.T) {
	svc := NewService(newLedgerStub(), "", "UAH", nil)

	spec, err := svc.ComposeInvoice(enums.PostTypeAd35, enums.PaymentMethodStars, 7)
	require.NoError(t, err)
	require.Equal(t, StarsCurrency, spec.Currency)
	require.Equal(t, AmountAd35, spec.Amount, "stars amounts are not scaled")
	require.Empty(t, spec.ProviderToken)
}

func TestComposeInvoiceCard(t *testing.T) {
	svc := NewService(newLedgerStub(), "smart-glocal-token", "UAH", nil)

	spec, err := svc.ComposeInvoice(enums.PostTypeOfftopic, enums.PaymentMethodCard, 7)
	require.NoError(t, err)
	require.Equal(t, "UAH", spec.Currency)
	require.Equal(t, AmountOfftopic*100, spec.Amount, "card amounts are in minor units")
	require.Equal(t, "smart-glocal-token", spec.ProviderToken)
}

func TestComposeInvoiceCardDisabled(t *testing.T) {
	svc := NewService(newLedgerStub(), "", "UAH", nil)

	_, err := svc.ComposeInvoice(enums.PostTypeAd35, enums.PaymentMethodCard, 7)
	require.ErrorIs(t, err, ErrCardDisabled)
}

func TestConfirmStars(t *testing.T) {
	ledger := newLedgerStub()
	svc := NewService(ledger, "", "UAH", nil)

	payload := NewPayload(enums.PostTypeAd35, 7)
	result, err := svc.Confirm(context.Background(), 7, payload, 35, StarsCurrency, "charge-1")
	require.NoError(t, err)
	require.False(t, result.Duplicate)
	require.Equal(t, enums.PaymentMethodStars, result.Payment.Method)
	require.Equal(t, float64(35), result.Payment.Amount)
	require.Equal(t, enums.PaymentStatusCompleted, result.Payment.Status)
}

func TestConfirmCardScalesMinorUnits(t *testing.T) {
	svc := NewService(newLedgerStub(), "token", "UAH", nil)

	payload := NewPayload(enums.PostTypeOfftopic, 7)
	result, err := svc.Confirm(context.Background(), 7, payload, 5000, "UAH", "charge-2")
	require.NoError(t, err)
	require.Equal(t, enums.PaymentMethodCard, result.Payment.Method)
	require.Equal(t, float64(50), result.Payment.Amount)
}

func TestConfirmReplayIsIdempotent(t *testing.T) {
	ledger := newLedgerStub()
	svc := NewService(ledger, "", "UAH", nil)
	ctx := context.Background()

	payload := NewPayload(enums.PostTypeAd35, 7)

	first, err := svc.Confirm(ctx, 7, payload, 35, StarsCurrency, "charge-3")
	require.NoError(t, err)
	require.False(t, first.Duplicate)

	second, err := svc.Confirm(ctx, 7, payload, 35, StarsCurrency, "charge-3")
	require.NoError(t, err)
	require.True(t, second.Duplicate)
	require.Equal(t, first.Payment.PaymentID, second.Payment.PaymentID)
	require.Len(t, ledger.byTransaction, 1, "replay must not create a second ledger row")
}

func TestConfirmRejectsForeignPayload(t *testing.T) {
	svc := NewService(newLedgerStub(), "", "UAH", nil)

	_, err := svc.Confirm(context.Background(), 7, "donation_9", 35, StarsCurrency, "charge-4")
	require.ErrorIs(t, err, ErrBadPayload)
}
