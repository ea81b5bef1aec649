package repomanager

import (
	"context"
	"database/sql"

	"github.com/knetproto/kindex/internal/dbx"
	"github.com/knetproto/kindex/internal/repositories/contents"
	"github.com/knetproto/kindex/internal/repositories/edges"
	"github.com/knetproto/kindex/internal/repositories/hashtags"
	"github.com/knetproto/kindex/internal/repositories/mentions"
	"github.com/knetproto/kindex/internal/repositories/profiles"
	"github.com/knetproto/kindex/internal/repositories/transactions"
	"github.com/knetproto/kindex/internal/repositories/votes"
)

// RepositoryManager vends repository implementations bound to a DBTX, so the
// persistence layer can bind a whole set of repos to one transaction.
type RepositoryManager interface {
	Transactions(db dbx.DBTX) transactions.Repository
	Contents(db dbx.DBTX) contents.Repository
	Mentions(db dbx.DBTX) mentions.Repository
	Hashtags(db dbx.DBTX) hashtags.Repository
	Votes(db dbx.DBTX) votes.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Edges(db dbx.DBTX) edges.Repository

	RunMigrations(ctx context.Context, db *sql.DB) error
}
