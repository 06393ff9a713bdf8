// Package roles provides the PostgreSQL-backed role lookup.
package roles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

// GetRoleByID returns common.ErrorNotFound for an unknown id.
func (r *PostgresRepository) GetRoleByID(ctx context.Context, id int64) (*models.Role, error) {
	query :=
		`SELECT id, name, description FROM roles
		 WHERE id = $1
		 `

	role := &models.Role{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&role.ID, &role.Name, &role.Description)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return role, nil
}
