package model

import "time"

type User struct {
	UserID       int64
	Username     string
	FirstName    string
	RegisteredAt time.Time
	IsBanned     bool
}
