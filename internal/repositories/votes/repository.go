package votes

import (
	"context"

	"github.com/knetproto/kindex/internal/models"
)

type Repository interface {
	// Create inserts one vote row. Returns common.ErrorDuplicate when a row
	// with the same signature already exists.
	Create(ctx context.Context, vote *models.Vote) error
}
