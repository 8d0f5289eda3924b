package model

import "time"

type RefStatus string

const (
	RefPending   RefStatus = "Pending"
	RefCompleted RefStatus = "Completed"
	RefExpired   RefStatus = "Expired"
)

// Terminal reports whether the status can no longer change.
func (s RefStatus) Terminal() bool {
	return s == RefCompleted || s == RefExpired
}

// PaymentReference tracks one QRIS payment from Pending to a terminal
// state. Entries are appended for the lifetime of the session and never
// deleted; Row addresses the status cell in the remote reference table.
type PaymentReference struct {
	RefID     string
	Amount    int
	Method    string
	CreatedAt time.Time
	Status    RefStatus
	Row       int
}

// Payment method labels used in sale records.
const (
	MethodCash   = "Cash"
	MethodQRIS   = "QRIS"
	MethodOnline = "Online web order"
)
