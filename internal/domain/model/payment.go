package model

import (
	"time"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
)

type Payment struct {
	PaymentID     int64
	UserID        int64
	PostType      enums.PostType
	Amount        float64
	Currency      string
	Method        enums.PaymentMethod
	Status        enums.PaymentStatus
	TransactionID string
	CreatedAt     time.Time
}
