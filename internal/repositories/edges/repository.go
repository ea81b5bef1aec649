package edges

import (
	"context"

	"github.com/knetproto/kindex/internal/models"
)

type Repository interface {
	// Create inserts the edge; an already-existing edge is not an error.
	Create(ctx context.Context, edge *models.Edge) error

	// Delete removes the matching edge; absence is treated as success.
	Delete(ctx context.Context, edge *models.Edge) error
}
