// Package provision creates local accounts out of band. The broker itself
// never writes users; operators seed them with the useradd command.
package provision

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/staffgate/internal/common"
	"github.com/dmitrijs2005/staffgate/internal/dbx"
	"github.com/dmitrijs2005/staffgate/internal/logging"
	"github.com/dmitrijs2005/staffgate/internal/server/models"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/staffgate/internal/server/services"
)

var (
	ErrInvalidEmail  = errors.New("invalid email")
	ErrEmptyPassword = errors.New("password must not be empty")
	ErrUnknownRole   = errors.New("unknown role")
)

// NewUser describes an account to create.
type NewUser struct {
	Email      string
	UserName   string
	FullName   string
	RoleID     int64
	EmployeeNo string
	Location   string
	Password   []byte
}

type Provisioner struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	hash        func(string) (string, error)
}

func NewProvisioner(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *Provisioner {
	return &Provisioner{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "provision"),
		hash:        services.HashPassword,
	}
}

func (p *Provisioner) validate(u *NewUser) error {
	addr, err := mail.ParseAddress(u.Email)
	if err != nil || addr.Address != u.Email {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, u.Email)
	}
	if len(u.Password) == 0 {
		return ErrEmptyPassword
	}
	return nil
}

// CreateUser checks the role exists, hashes the password and inserts the
// account in one transaction. The password buffer is wiped on return.
func (p *Provisioner) CreateUser(ctx context.Context, u NewUser) (*models.User, error) {
	defer common.WipeByteArray(u.Password)

	u.Email = strings.TrimSpace(u.Email)
	if err := p.validate(&u); err != nil {
		return nil, err
	}

	hash, err := p.hash(string(u.Password))
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		UserName:     u.UserName,
		FullName:     u.FullName,
		Email:        u.Email,
		PasswordHash: hash,
		RoleID:       u.RoleID,
		Location:     u.Location,
		IsActive:     true,
		IsVerified:   true,
	}
	if user.UserName == "" {
		user.UserName = u.Email
	}
	if no := strings.TrimSpace(u.EmployeeNo); no != "" {
		user.EmployeeNo = &no
	}

	err = dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := p.repomanager.Roles(tx).GetRoleByID(ctx, user.RoleID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: %d", ErrUnknownRole, user.RoleID)
			}
			return err
		}
		_, err := p.repomanager.Users(tx).Create(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info(ctx, "user created", "user_id", user.ID, "role_id", user.RoleID)
	return user, nil
}
