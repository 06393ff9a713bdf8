package roles

import (
	"context"

	"github.com/dmitrijs2005/staffgate/internal/server/models"
)

// Repository resolves roles by id.
type Repository interface {
	GetRoleByID(ctx context.Context, id int64) (*models.Role, error)
}
