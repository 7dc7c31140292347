package model

import "time"

type Moderator struct {
	ModeratorID int64
	Username    string
	AddedAt     time.Time
}
