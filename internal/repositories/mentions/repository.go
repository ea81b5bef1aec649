package mentions

import (
	"context"

	"github.com/knetproto/kindex/internal/models"
)

type Repository interface {
	// Create inserts one mention row alongside its content or vote.
	Create(ctx context.Context, mention *models.Mention) error
}
