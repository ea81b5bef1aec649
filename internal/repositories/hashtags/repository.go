package hashtags

import (
	"context"

	"github.com/knetproto/kindex/internal/models"
)

type Repository interface {
	// Create inserts one hashtag row alongside its content.
	Create(ctx context.Context, hashtag *models.Hashtag) error
}
