// Package edges persists directed follow/block relationships. Existence of
// the row is the state.
package edges

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

func (r *PostgresRepository) Create(ctx context.Context, edge *models.Edge) error {
	query := `
		INSERT INTO edges (kind, sender_key, target_key)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind, sender_key, target_key) DO NOTHING;
	`
	if _, err := r.db.ExecContext(ctx, query, string(edge.Kind), edge.SenderKey, edge.TargetKey); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, edge *models.Edge) error {
	query := `DELETE FROM edges WHERE kind = $1 AND sender_key = $2 AND target_key = $3;`

	if _, err := r.db.ExecContext(ctx, query, string(edge.Kind), edge.SenderKey, edge.TargetKey); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
