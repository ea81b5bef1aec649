// Package hashtags persists normalized hashtag rows created atomically
// alongside their content.
package hashtags

import (
	"context"
	"fmt"

	"github.com/knetproto/kindex/internal/dbx"
	"github.com/knetproto/kindex/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, hashtag *models.Hashtag) error {
	query := `
		INSERT INTO hashtags (content_id, sender_key, created_at, tag)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (content_id, tag) DO NOTHING;
	`
	_, err := r.db.ExecContext(ctx, query,
		hashtag.ContentID, hashtag.SenderKey, hashtag.CreatedAt, hashtag.Tag)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
