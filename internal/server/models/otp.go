package models

import "time"

// OtpVerification is one issued code. IsUsed flips from false to true at most once.
type OtpVerification struct {
	ID        string
	Email     string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
	IsUsed    bool
}
