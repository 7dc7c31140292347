package model

import (
	"time"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
)

type JoinRequest struct {
	ID        int64
	UserID    int64
	ChatID    int64
	Username  string
	FullName  string
	Status    enums.JoinRequestStatus
	HandledBy *int64
	CreatedAt time.Time
	HandledAt *time.Time
}
