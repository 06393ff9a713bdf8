package otps

import (
	"context"
	"time"

	"github.com/dmitrijs2005/staffgate/internal/server/models"
)

// Repository stores issued one-time codes.
type Repository interface {
	Create(ctx context.Context, otp *models.OtpVerification) error
	Consume(ctx context.Context, email, code string, now time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
