package services

import (
	"context"
	"database/sql"
	"encoding/base32"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/staffgate/internal/common"
	"github.com/dmitrijs2005/staffgate/internal/logging"
	"github.com/dmitrijs2005/staffgate/internal/server/config"
	"github.com/dmitrijs2005/staffgate/internal/server/models"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/repomanager"
	"github.com/oklog/ulid/v2"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// CodeSender delivers a freshly generated code to its owner.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string) error
}

// DiscardSender drops codes. Delivery is wired in by whoever embeds the
// broker.
type DiscardSender struct{}

func (DiscardSender) SendCode(context.Context, string, string) error { return nil }

// OtpService manages one-time codes: issue, single use validation and sweep.
//
// Several unexpired codes for the same email may be outstanding at once;
// issuing a new code never invalidates older ones.
type OtpService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validity    time.Duration
	sender      CodeSender
	logger      logging.Logger

	now     func() time.Time
	newCode func() (string, error)
	onSweep func(n int64)
}

func NewOtpService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, sender CodeSender, logger logging.Logger) *OtpService {
	if sender == nil {
		sender = DiscardSender{}
	}
	return &OtpService{
		db:          db,
		repomanager: m,
		validity:    cfg.OTPValidityDuration,
		sender:      sender,
		logger:      logger.With("module", "otp"),
		now:         time.Now,
		newCode:     generateCode,
		onSweep:     func(int64) {},
	}
}

// OnSweep registers fn to be called with the row count of every successful
// sweep run by RunCleanup.
func (s *OtpService) OnSweep(fn func(n int64)) {
	if fn != nil {
		s.onSweep = fn
	}
}

// generateCode derives a six digit HOTP value from a fresh random secret.
func generateCode() (string, error) {
	secret := common.GenerateRandByteArray(20)
	if secret == nil {
		return "", errors.New("random source failed")
	}
	defer common.WipeByteArray(secret)

	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(secret)
	return hotp.GenerateCodeCustom(encoded, 0, hotp.ValidateOpts{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
}

// GenerateOtp stores a new code for email, valid for the configured window,
// and hands it to the CodeSender.
func (s *OtpService) GenerateOtp(ctx context.Context, email string) (string, error) {
	code, err := s.newCode()
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	now := s.now()
	rec := &models.OtpVerification{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.validity),
		IsUsed:    false,
	}

	if err := s.repomanager.Otps(s.db).Create(ctx, rec); err != nil {
		s.logger.Error(ctx, "storing otp failed", "email", email, "error", err)
		return "", common.ErrorInternal
	}

	if err := s.sender.SendCode(ctx, email, code); err != nil {
		s.logger.Error(ctx, "otp delivery failed", "email", email, "otp_id", rec.ID, "error", err)
		return "", fmt.Errorf("deliver code: %w", err)
	}

	s.logger.Info(ctx, "otp issued", "email", email, "otp_id", rec.ID, "expires_at", rec.ExpiresAt)
	return code, nil
}

// ValidateOtp consumes a matching unused, unexpired code. It reports false,
// without an error, when there is nothing to consume; only storage failures
// are returned as errors.
func (s *OtpService) ValidateOtp(ctx context.Context, email, code string) (bool, error) {
	if email == "" || code == "" {
		return false, nil
	}

	err := s.repomanager.Otps(s.db).Consume(ctx, email, code, s.now())
	if err != nil {
		if errors.Is(err, common.ErrOtpNotFoundOrExpired) {
			s.logger.Info(ctx, "otp rejected", "email", email)
			return false, nil
		}
		s.logger.Error(ctx, "otp validation failed", "email", email, "error", err)
		return false, common.ErrorInternal
	}

	s.logger.Info(ctx, "otp accepted", "email", email)
	return true, nil
}

// CleanupExpiredOtps deletes every code that expired before now.
func (s *OtpService) CleanupExpiredOtps(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Otps(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("cleanup expired otps: %w", err)
	}
	if n > 0 {
		s.logger.Debug(ctx, "expired otps removed", "count", n)
	}
	return n, nil
}

// RunCleanup sweeps expired codes every interval until ctx is cancelled.
// A non-positive interval disables the sweeper.
func (s *OtpService) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.CleanupExpiredOtps(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Warn(ctx, "otp sweep failed", "error", err)
				}
				continue
			}
			s.onSweep(n)
		}
	}
}
