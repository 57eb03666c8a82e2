package entity

import "time"

const (
	VerificationStatusNone          = "none"
	VerificationStatusPendingReview = "pending_review"
	VerificationStatusAutoApproved  = "auto_approved"
	VerificationStatusApproved      = "approved"
	VerificationStatusRejected      = "rejected"
)

func IsVerificationApproved(status string) bool {
	return status == VerificationStatusAutoApproved || status == VerificationStatusApproved
}

type VerificationRecord struct {
	ID           uint64
	SubscriberID string
	DocumentType string
	StoragePath  string
	MimeType     string
	SizeBytes    int64
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
