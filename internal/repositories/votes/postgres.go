// Package votes persists up/down vote rows.
package votes

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

// Create inserts the vote row, deduplicated by signature the same way
// contents are.
func (r *PostgresRepository) Create(ctx context.Context, vote *models.Vote) error {
	query := `
		INSERT INTO votes (id, created_at, sender_key, signature, target_id, direction)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (signature) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query,
		vote.ID, vote.CreatedAt, vote.SenderKey, vote.Signature,
		vote.TargetID, string(vote.Direction))
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
