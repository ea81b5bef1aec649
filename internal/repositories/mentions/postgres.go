// Package mentions persists mention rows created atomically alongside their
// content or vote.
package mentions

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

func (r *PostgresRepository) Create(ctx context.Context, mention *models.Mention) error {
	query := `
		INSERT INTO mentions (content_id, content_kind, mentioned_key, created_at, sender_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (content_id, mentioned_key) DO NOTHING;
	`
	_, err := r.db.ExecContext(ctx, query,
		mention.ContentID, mention.ContentKind, mention.MentionedKey,
		mention.CreatedAt, mention.SenderKey)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
