// Package persist executes one atomic multi-table write per parsed action.
// Each Save method opens a transaction, binds the repositories to it, and
// commits the whole unit or nothing. Duplicates (signature or transaction id
// already stored) are success, reported through the created return so the
// caller can count them separately. Store errors propagate untouched; retry
// policy lives with the worker, not here.
package persist

import (
	"context"
	"database/sql"
	"errors"

	"github.com/knetproto/kindex/internal/common"
	"github.com/knetproto/kindex/internal/dbx"
	"github.com/knetproto/kindex/internal/models"
	"github.com/knetproto/kindex/internal/repositories/repomanager"
)

// Unit is the persistence unit shared by all workers. It is stateless apart
// from the pooled *sql.DB, so concurrent use is safe.
type Unit struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewUnit(db *sql.DB, repos repomanager.RepositoryManager) *Unit {
	return &Unit{db: db, repos: repos}
}

// SaveBroadcast atomically inserts the profile row and removes the sender's
// previous one. A duplicate transaction id makes the whole unit a no-op.
func (u *Unit) SaveBroadcast(ctx context.Context, profile *models.Profile) (created bool, err error) {
	err = dbx.WithTx(ctx, u.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := u.repos.Profiles(tx).Create(ctx, profile); err != nil {
			if errors.Is(err, common.ErrorDuplicate) {
				return nil
			}
			return err
		}
		created = true
		return u.repos.Profiles(tx).DeleteOthers(ctx, profile.SenderKey, profile.ID)
	})
	return created, err
}

// SaveContent atomically inserts the content row plus one mention row per
// mentioned key and one hashtag row per tag, keyed to the new content.
// A duplicate signature makes the whole unit a no-op, so content never
// exists without its mentions and hashtags, and never doubles them.
func (u *Unit) SaveContent(ctx context.Context, content *models.Content, mentionKeys []string, tags []string) (created bool, err error) {
	err = dbx.WithTx(ctx, u.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := u.repos.Contents(tx).Create(ctx, content); err != nil {
			if errors.Is(err, common.ErrorDuplicate) {
				return nil
			}
			return err
		}
		created = true

		mentionRepo := u.repos.Mentions(tx)
		for _, key := range mentionKeys {
			mention := &models.Mention{
				ContentID:    content.ID,
				ContentKind:  string(content.Kind),
				MentionedKey: key,
				CreatedAt:    content.CreatedAt,
				SenderKey:    content.SenderKey,
			}
			if err := mentionRepo.Create(ctx, mention); err != nil {
				return err
			}
		}

		hashtagRepo := u.repos.Hashtags(tx)
		for _, tag := range tags {
			hashtag := &models.Hashtag{
				ContentID: content.ID,
				SenderKey: content.SenderKey,
				CreatedAt: content.CreatedAt,
				Tag:       tag,
			}
			if err := hashtagRepo.Create(ctx, hashtag); err != nil {
				return err
			}
		}
		return nil
	})
	return created, err
}

// SaveVote atomically inserts the vote row plus a mention row for the target
// author when one was supplied. A duplicate signature makes the unit a no-op.
func (u *Unit) SaveVote(ctx context.Context, vote *models.Vote, mentionedKey string) (created bool, err error) {
	err = dbx.WithTx(ctx, u.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := u.repos.Votes(tx).Create(ctx, vote); err != nil {
			if errors.Is(err, common.ErrorDuplicate) {
				return nil
			}
			return err
		}
		created = true

		if mentionedKey == "" {
			return nil
		}
		mention := &models.Mention{
			ContentID:    vote.ID,
			ContentKind:  models.VoteMentionKind,
			MentionedKey: mentionedKey,
			CreatedAt:    vote.CreatedAt,
			SenderKey:    vote.SenderKey,
		}
		return u.repos.Mentions(tx).Create(ctx, mention)
	})
	return created, err
}

// ApplyEdge creates the edge for the "on" sub-action and deletes it for
// "off". Both directions are single-statement writes: an existing edge and a
// missing edge are both success.
func (u *Unit) ApplyEdge(ctx context.Context, edge *models.Edge, on bool) error {
	repo := u.repos.Edges(u.db)
	if on {
		return repo.Create(ctx, edge)
	}
	return repo.Delete(ctx, edge)
}
