// Package transactions provides read-only access to the raw transaction
// rows inserted by the upstream ingester.
package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/knetproto/kindex/internal/common"
	"github.com/knetproto/kindex/internal/dbx"
	"github.com/knetproto/kindex/internal/models"
)

// PostgresRepository implements transaction lookup over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.RawTransaction, error) {
	query := `SELECT id, payload, created_at FROM transactions WHERE id = $1`

	var tx models.RawTransaction
	err := r.db.QueryRowContext(ctx, query, id).Scan(&tx.ID, &tx.Payload, &tx.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select transaction: %w", err)
	}
	return &tx, nil
}
