package sessions

import (
	"context"

	"github.com/dmitrijs2005/staffgate/internal/server/models"
)

// Repository persists issued sessions keyed by token id.
type Repository interface {
	Create(ctx context.Context, s *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}
