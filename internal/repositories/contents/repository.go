package contents

import (
	"context"

	"github.com/knetproto/kindex/internal/models"
)

type Repository interface {
	// Create inserts one content row. Returns common.ErrorDuplicate when a
	// row with the same signature already exists (first write wins).
	Create(ctx context.Context, content *models.Content) error
}
