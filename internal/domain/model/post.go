package model

import (
	"time"

	"github.com/neverluckskr/TSObukhivBot/internal/domain/enums"
)

type Post struct {
	PostID           int64
	UserID           int64
	Type             enums.PostType
	Content          string
	MediaFileID      string
	Status           enums.PostStatus
	RejectionReason  *string
	CreatedAt        time.Time
	ReviewedAt       *time.Time
	ReviewerID       *int64
	ChannelMessageID *int64
}
