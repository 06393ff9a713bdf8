// Package otps provides the PostgreSQL-backed store for one-time codes.
//
// Codes are only ever inserted, consumed or swept. Consumption is a single
// conditional UPDATE so that of several concurrent callers presenting the
// same code exactly one observes the unused to used transition.
package otps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/staffgate/internal/common"
	"github.com/dmitrijs2005/staffgate/internal/dbx"
	"github.com/dmitrijs2005/staffgate/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new code. Earlier codes for the same email are left as they are.
func (r *PostgresRepository) Create(ctx context.Context, otp *models.OtpVerification) error {
	query := `
		INSERT INTO otp_verifications (id, email, code, created_at, expires_at, is_used)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		otp.ID, otp.Email, otp.Code, otp.CreatedAt, otp.ExpiresAt, otp.IsUsed); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Consume marks one unused, unexpired code matching email and code as used.
// When no such code exists (never issued, already used, expired or swept) it
// returns common.ErrOtpNotFoundOrExpired.
func (r *PostgresRepository) Consume(ctx context.Context, email, code string, now time.Time) error {
	query := `
		UPDATE otp_verifications SET is_used = TRUE
		WHERE id = (
			SELECT id FROM otp_verifications
			WHERE email = $1 AND code = $2 AND is_used = FALSE AND expires_at > $3
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		) AND is_used = FALSE
		RETURNING id
	`
	var id string
	if err := r.db.QueryRowContext(ctx, query, email, code, now).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrOtpNotFoundOrExpired
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteExpired removes every code with expires_at strictly before the given
// instant and reports how many rows went.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM otp_verifications
		WHERE expires_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
