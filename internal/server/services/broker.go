package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/staffgate/internal/common"
	"github.com/dmitrijs2005/staffgate/internal/dbx"
	"github.com/dmitrijs2005/staffgate/internal/logging"
	"github.com/dmitrijs2005/staffgate/internal/server/auth"
	"github.com/dmitrijs2005/staffgate/internal/server/config"
	"github.com/dmitrijs2005/staffgate/internal/server/directory"
	"github.com/dmitrijs2005/staffgate/internal/server/models"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// LoginResult is what a successful login hands back to the transport.
type LoginResult struct {
	Token        string
	ExpiresAt    time.Time
	Claims       models.SessionClaims
	EmployeeName string
}

// AuthStatus is the outcome of a session check. Claims is nil when not
// authenticated.
type AuthStatus struct {
	Authenticated bool
	Claims        *models.SessionClaims
}

// Broker signs users in and out and answers session checks.
//
// Login runs: password verification, role lookup, best effort directory
// enrichment, claims assembly, then session issuance in one transaction.
// Only credential failures and issuance failures reach the caller; the
// directory can slow a login down by at most its timeout but never fail it.
type Broker struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	verifier    Authenticator
	directory   directory.Gateway
	jwtSecret   []byte
	validity    time.Duration
	logger      logging.Logger

	now          func() time.Time
	newSessionID func() string
	signToken    func(claims models.SessionClaims, sessionID string, secret []byte, issuedAt, expiresAt time.Time) (string, error)
}

func NewBroker(db *sql.DB, m repomanager.RepositoryManager, verifier Authenticator, gw directory.Gateway, cfg *config.Config, logger logging.Logger) *Broker {
	if gw == nil {
		gw = directory.Disabled{}
	}
	return &Broker{
		db:           db,
		repomanager:  m,
		verifier:     verifier,
		directory:    gw,
		jwtSecret:    []byte(cfg.SecretKey),
		validity:     cfg.SessionValidityDuration,
		logger:       logger.With("module", "broker"),
		now:          time.Now,
		newSessionID: uuid.NewString,
		signToken:    auth.GenerateToken,
	}
}

// Login authenticates email/password and issues a session.
//
// Errors: common.ErrInvalidCredentials for a bad pair, common.ErrorInternal
// when the credential store fails, common.ErrSessionIssuance when claims or
// the session could not be produced. On any error no session exists.
func (b *Broker) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	log := b.logger.With("email", email)
	log.Debug(ctx, "authenticating")

	user, err := b.verifier.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			log.Info(ctx, "login rejected")
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	log = log.With("user_id", user.ID)
	log.Debug(ctx, "authenticated locally")

	role, err := b.repomanager.Roles(b.db).GetRoleByID(ctx, user.RoleID)
	if err != nil {
		log.Error(ctx, "role lookup failed", "role_id", user.RoleID, "error", err)
		return nil, fmt.Errorf("%w: role: %w", common.ErrSessionIssuance, err)
	}

	lookup := b.enrich(ctx, log, user)
	claims := BuildClaims(user, role, lookup)

	issuedAt := b.now()
	expiresAt := issuedAt.Add(b.validity)
	session := &models.Session{ID: b.newSessionID(), UserID: user.ID, ExpiresAt: expiresAt}

	var token string
	err = dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		signed, err := b.signToken(claims, session.ID, b.jwtSecret, issuedAt, expiresAt)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		if err := b.repomanager.Sessions(tx).Create(ctx, session); err != nil {
			return fmt.Errorf("store session: %w", err)
		}
		token = signed
		return nil
	})
	if err != nil {
		log.Error(ctx, "session issuance failed", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrSessionIssuance, err)
	}

	log.Info(ctx, "session active", "session_id", session.ID, "expires_at", expiresAt)

	employeeName := user.FullName
	if rec, ok := lookup.Get(); ok && rec.FullName != "" {
		employeeName = rec.FullName
	}

	return &LoginResult{
		Token:        token,
		ExpiresAt:    expiresAt,
		Claims:       claims,
		EmployeeName: employeeName,
	}, nil
}

func (b *Broker) enrich(ctx context.Context, log logging.Logger, user *models.User) models.EmployeeLookup {
	if !user.HasEmployeeNo() {
		return models.Absent()
	}

	lookup := b.directory.GetEmployeeByNumber(ctx, *user.EmployeeNo)
	if _, ok := lookup.Get(); ok {
		log.Debug(ctx, "enriched from directory", "employee_no", *user.EmployeeNo)
	} else {
		log.Info(ctx, "directory unavailable, continuing with local data", "employee_no", *user.EmployeeNo)
	}
	return lookup
}

// Logout deletes the session behind token. A missing, malformed, foreign or
// already revoked token is a no-op.
func (b *Broker) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	sessionID, err := auth.SessionID(token, b.jwtSecret)
	if err != nil {
		b.logger.Debug(ctx, "logout with unusable token", "error", err)
		return nil
	}

	if err := b.repomanager.Sessions(b.db).Delete(ctx, sessionID); err != nil {
		b.logger.Error(ctx, "session delete failed", "session_id", sessionID, "error", err)
		return common.ErrorInternal
	}

	b.logger.Info(ctx, "logged out", "session_id", sessionID)
	return nil
}

// CheckAuth reports whether token belongs to a live session whose email and
// role still match the account. It never mutates state and never fails;
// storage errors are logged and reported as unauthenticated.
func (b *Broker) CheckAuth(ctx context.Context, token string) AuthStatus {
	if token == "" {
		return AuthStatus{}
	}

	now := b.now()
	parsed, err := auth.ParseToken(token, b.jwtSecret, now)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			b.logger.Debug(ctx, "session expired")
		}
		return AuthStatus{}
	}

	session, err := b.repomanager.Sessions(b.db).Find(ctx, parsed.ID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			b.logger.Error(ctx, "session lookup failed", "session_id", parsed.ID, "error", err)
		}
		return AuthStatus{}
	}

	if session.UserID != parsed.UserID || !now.Before(session.ExpiresAt) {
		return AuthStatus{}
	}

	if !b.claimsCurrent(ctx, &parsed.SessionClaims) {
		return AuthStatus{}
	}

	claims := parsed.SessionClaims
	return AuthStatus{Authenticated: true, Claims: &claims}
}

// claimsCurrent reports whether the identity and role carried by the token
// still match the stored account.
func (b *Broker) claimsCurrent(ctx context.Context, c *models.SessionClaims) bool {
	user, err := b.repomanager.Users(b.db).GetUserByID(ctx, c.UserID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			b.logger.Error(ctx, "user lookup failed", "user_id", c.UserID, "error", err)
		}
		return false
	}
	if user.Email != c.Email || user.RoleID != c.RoleID {
		b.logger.Warn(ctx, "session claims differ from account", "user_id", c.UserID)
		return false
	}

	role, err := b.repomanager.Roles(b.db).GetRoleByID(ctx, user.RoleID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			b.logger.Error(ctx, "role lookup failed", "role_id", user.RoleID, "error", err)
		}
		return false
	}
	if role.Name != c.Role {
		b.logger.Warn(ctx, "session role differs from account", "user_id", c.UserID)
		return false
	}
	return true
}
