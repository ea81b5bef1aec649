// Package contents persists the unified post/reply/quote rows.
package contents

import (
	"context"
	"fmt"

	"github.com/knetproto/kindex/internal/common"
	"github.com/knetproto/kindex/internal/dbx"
	"github.com/knetproto/kindex/internal/models"
)

// PostgresRepository implements content storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the content row. The unique index on signature is the dedup
// mechanism: a conflicting insert affects zero rows and is reported as
// common.ErrorDuplicate, which the caller treats as success.
func (r *PostgresRepository) Create(ctx context.Context, content *models.Content) error {
	query := `
		INSERT INTO contents (id, created_at, sender_key, signature, message, kind, reference)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		ON CONFLICT (signature) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query,
		content.ID, content.CreatedAt, content.SenderKey, content.Signature,
		content.Message, string(content.Kind), content.Reference)
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
