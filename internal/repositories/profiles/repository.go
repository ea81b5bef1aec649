package profiles

import (
	"context"

	"github.com/knetproto/kindex/internal/models"
)

type Repository interface {
	// Create inserts one profile row. Returns common.ErrorDuplicate when the
	// transaction id was already stored.
	Create(ctx context.Context, profile *models.Profile) error

	// DeleteOthers removes every profile row of senderKey except keepID,
	// enforcing the one-live-row-per-sender invariant.
	DeleteOthers(ctx context.Context, senderKey, keepID string) error
}
