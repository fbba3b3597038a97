package models

import "time"

type Notification struct {
	ID          string
	RecipientID uint
	Title       string
	Body        string
	Kind        string
	Metadata    []byte
	Read        bool
	DeepLink    string
	CreatedAt   time.Time
}
