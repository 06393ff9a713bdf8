package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/staffgate/internal/dbx"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/otps"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/roles"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/staffgate/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same store can
// be used on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Roles(db dbx.DBTX) roles.Repository
	Otps(db dbx.DBTX) otps.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
