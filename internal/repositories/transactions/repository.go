package transactions

import (
	"context"

	"github.com/knetproto/kindex/internal/models"
)

// Repository reads rows of the ingester-owned transactions table. The
// indexer never writes here.
type Repository interface {
	// GetByID fetches one raw transaction by its hex id. Returns
	// common.ErrorNotFound when the row is not (yet) visible.
	GetByID(ctx context.Context, id string) (*models.RawTransaction, error)
}
