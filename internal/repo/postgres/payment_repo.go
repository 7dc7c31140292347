package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
	"github.com/neverluckskr/TSObukhivBot/internal/domain/model"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// Create appends a payment to the ledger. Rows are never updated after
// insert. When the transaction id was already recorded, the existing row
// is returned with inserted=false, so replayed provider events stay
// idempotent.
func (r *PaymentRepo) Create(ctx context.Context, payment model.Payment) (model.Payment, bool, error) {
	if r.pool == nil {
		return model.Payment{}, false, fmt.Errorf("postgres pool is nil")
	}
	if payment.UserID <= 0 {
		return model.Payment{}, false, fmt.Errorf("invalid payer id")
	}

	transactionID := strings.TrimSpace(payment.TransactionID)

	row := r.pool.QueryRow(ctx, `
INSERT INTO payments (user_id, post_type, amount, currency, payment_method, status, transaction_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (transaction_id) WHERE transaction_id <> '' DO NOTHING
RETURNING payment_id, created_at
`,
		payment.UserID,
		string(payment.PostType),
		payment.Amount,
		payment.Currency,
		string(payment.Method),
		string(payment.Status),
		transactionID,
	)

	err := row.Scan(&payment.PaymentID, &payment.CreatedAt)
	if err == nil {
		payment.TransactionID = transactionID
		return payment, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Payment{}, false, fmt.Errorf("create payment: %w", err)
	}

	existing, err := r.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return model.Payment{}, false, err
	}

	return existing, false, nil
}

func (r *PaymentRepo) GetByTransactionID(ctx context.Context, transactionID string) (model.Payment, error) {
	if r.pool == nil {
		return model.Payment{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(transactionID) == "" {
		return model.Payment{}, ErrPaymentNotFound
	}

	var payment model.Payment
	var postType, method, status string
	err := r.pool.QueryRow(ctx, `
SELECT payment_id, user_id, post_type, amount, currency, payment_method, status, transaction_id, created_at
FROM payments
WHERE transaction_id = $1
`, transactionID).Scan(
		&payment.PaymentID,
		&payment.UserID,
		&postType,
		&payment.Amount,
		&payment.Currency,
		&method,
		&status,
		&payment.TransactionID,
		&payment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Payment{}, ErrPaymentNotFound
		}
		return model.Payment{}, fmt.Errorf("get payment by transaction id: %w", err)
	}

	payment.PostType = enums.PostType(postType)
	payment.Method = enums.PaymentMethod(method)
	payment.Status = enums.PaymentStatus(status)
	return payment, nil
}
