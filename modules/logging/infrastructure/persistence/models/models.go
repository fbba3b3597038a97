package models

import "time"

type ActivityLog struct {
	ID         uint
	UserID     uint
	Action     string
	TargetType string
	TargetID   uint
	Metadata   []byte
	CreatedAt  time.Time
}
