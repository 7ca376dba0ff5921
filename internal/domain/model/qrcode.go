package model

import "time"

type QRType string

const (
	QRTypeVolunteer QRType = "volunteer"
	QRTypeRecipient QRType = "recipient"
)

// QRCode is a single-use-type credential scoped to one event and one
// role type. Verification requires isActive && expiresAt > now; it does
// not require global uniqueness per (event, type).
type QRCode struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Type      QRType    `json:"type"`
	ExpiresAt time.Time `json:"expiresAt"` // defaults to the event date
	IsActive  bool      `json:"isActive"`
	UsedCount int64     `json:"usedCount"` // monotonically incremented, never reset
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Usable reports whether the code can still verify scans at t.
func (q *QRCode) Usable(t time.Time) bool {
	return q.IsActive && q.ExpiresAt.After(t)
}
