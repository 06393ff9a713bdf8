// Package services contains the broker's business logic: password
// verification, the OTP lifecycle, claims assembly and the identity broker
// that ties them into login, logout and session checks.
package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/staffgate/internal/common"
	"github.com/dmitrijs2005/staffgate/internal/logging"
	"github.com/dmitrijs2005/staffgate/internal/server/models"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator checks an email/password pair against the credential store.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// dummyHash is compared against when the email is unknown so that both
// failure paths pay for one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword(common.GenerateRandByteArray(16), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
})

// HashPassword returns the bcrypt hash stored for a new password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// PasswordVerifier authenticates against bcrypt hashes in the users table.
// It never writes.
type PasswordVerifier struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewPasswordVerifier(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *PasswordVerifier {
	return &PasswordVerifier{db: db, repomanager: m, logger: logger.With("module", "password")}
}

// Authenticate returns the user when password matches the stored hash for
// email. Unknown email and wrong password both yield
// common.ErrInvalidCredentials; storage failures yield common.ErrorInternal.
func (v *PasswordVerifier) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := v.repomanager.Users(v.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		v.logger.Error(ctx, "user lookup failed", "email", email, "error", err)
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}
