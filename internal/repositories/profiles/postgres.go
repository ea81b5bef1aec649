// Package profiles persists broadcast profile rows, at most one live row
// per sender.
package profiles

import (
	"context"
	"fmt"

	"github.com/knetproto/kindex/internal/common"
	"github.com/knetproto/kindex/internal/dbx"
	"github.com/knetproto/kindex/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the profile row, deduplicated by transaction id.
func (r *PostgresRepository) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, sender_key, created_at, nickname, image, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.SenderKey, profile.CreatedAt,
		profile.Nickname, profile.Image, profile.Message)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorDuplicate
	}
	return nil
}

func (r *PostgresRepository) DeleteOthers(ctx context.Context, senderKey, keepID string) error {
	query := `DELETE FROM profiles WHERE sender_key = $1 AND id <> $2;`

	if _, err := r.db.ExecContext(ctx, query, senderKey, keepID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
