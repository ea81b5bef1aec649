package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/knetproto/kindex/internal/common"
	"github.com/knetproto/kindex/internal/extract"
	"github.com/knetproto/kindex/internal/logging"
	"github.com/knetproto/kindex/internal/metrics"
	"github.com/knetproto/kindex/internal/models"
	"github.com/knetproto/kindex/internal/protocol"
	"github.com/knetproto/kindex/internal/repositories/transactions"
	"github.com/knetproto/kindex/internal/sigcheck"
	"github.com/sethvargo/go-retry"
)

// Persister is the slice of the persistence unit a worker drives.
// *persist.Unit implements it.
type Persister interface {
	SaveBroadcast(ctx context.Context, profile *models.Profile) (bool, error)
	SaveContent(ctx context.Context, content *models.Content, mentionKeys []string, tags []string) (bool, error)
	SaveVote(ctx context.Context, vote *models.Vote, mentionedKey string) (bool, error)
	ApplyEdge(ctx context.Context, edge *models.Edge, on bool) error
}

// Processing outcomes, used as metric labels.
const (
	outcomeOK           = "ok"
	outcomeDuplicate    = "duplicate"
	outcomeDropped      = "dropped"
	outcomeIneligible   = "ineligible"
	outcomeMalformed    = "malformed"
	outcomeInvalidSig   = "invalid_signature"
	outcomeUnrecognized = "unrecognized"
	outcomeError        = "error"
)

// Worker processes one transaction id at a time, fully, before pulling the
// next: fetch the row (with a bounded retry for the notification/visibility
// race), filter, parse, verify, extract, persist. Any per-transaction
// failure is logged and the worker moves on; nothing here panics or exits.
type Worker struct {
	txs           transactions.Repository
	unit          Persister
	retryAttempts int
	retryDelay    time.Duration
	log           logging.Logger
}

func NewWorker(id int, txs transactions.Repository, unit Persister, retryAttempts int, retryDelay time.Duration, log logging.Logger) *Worker {
	return &Worker{
		txs:           txs,
		unit:          unit,
		retryAttempts: retryAttempts,
		retryDelay:    retryDelay,
		log:           log.With("worker", id),
	}
}

// Run drains in until it closes or ctx is cancelled.
func (w *Worker) Run(ctx context.Context, in <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-in:
			if !ok {
				return
			}
			w.process(ctx, id)
		}
	}
}

func (w *Worker) process(ctx context.Context, id string) {
	start := time.Now()
	kind, outcome := w.handle(ctx, id)
	metrics.TransactionsProcessed.WithLabelValues(kind, outcome).Inc()
	metrics.ProcessingDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
}

func (w *Worker) handle(ctx context.Context, id string) (kind, outcome string) {
	tx, err := w.fetch(ctx, id)
	if errors.Is(err, common.ErrorNotFound) {
		w.log.Warn(ctx, "transaction row never became visible, dropping", "tx", id, "attempts", w.retryAttempts+1)
		return "", outcomeDropped
	}
	if err != nil {
		w.log.Error(ctx, "transaction fetch failed", "tx", id, "error", err)
		return "", outcomeError
	}

	payload := string(tx.Payload)
	if !strings.HasPrefix(payload, protocol.Prefix) {
		// Not a protocol transaction; discard without noise.
		return "", outcomeIneligible
	}

	action, err := protocol.Parse(payload)
	if err != nil {
		w.log.Warn(ctx, "payload parse failed", "tx", id, "error", err)
		return "", outcomeMalformed
	}
	kind = action.Kind()

	if _, ok := action.(protocol.Unrecognized); ok {
		w.log.Debug(ctx, "unrecognized action kind, skipping", "tx", id, "kind", kind)
		return kind, outcomeUnrecognized
	}

	env := action.Env()
	valid, err := sigcheck.Verify(env.SenderKey, env.Signature, []byte(env.SigningPayload))
	if err != nil {
		w.log.Warn(ctx, "signature undecodable", "tx", id, "kind", kind, "error", err)
		return kind, outcomeMalformed
	}
	if !valid {
		w.log.Warn(ctx, "signature verification failed", "tx", id, "kind", kind, "sender", env.SenderKey)
		return kind, outcomeInvalidSig
	}

	created, err := w.persist(ctx, tx, action)
	if err != nil {
		w.log.Error(ctx, "persistence failed, transaction abandoned", "tx", id, "kind", kind, "error", err)
		return kind, outcomeError
	}
	if !created {
		return kind, outcomeDuplicate
	}
	return kind, outcomeOK
}

// fetch re-reads the transaction row, retrying only the not-yet-visible case
// with a fixed delay and a bounded attempt count.
func (w *Worker) fetch(ctx context.Context, id string) (*models.RawTransaction, error) {
	var tx *models.RawTransaction
	backoff := retry.WithMaxRetries(uint64(w.retryAttempts), retry.NewConstant(w.retryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		tx, err = w.txs.GetByID(ctx, id)
		if errors.Is(err, common.ErrorNotFound) {
			metrics.FetchRetries.Inc()
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (w *Worker) persist(ctx context.Context, tx *models.RawTransaction, action protocol.Action) (bool, error) {
	env := action.Env()

	switch a := action.(type) {
	case protocol.Broadcast:
		return w.unit.SaveBroadcast(ctx, &models.Profile{
			ID:        tx.ID,
			SenderKey: env.SenderKey,
			CreatedAt: tx.CreatedAt,
			Nickname:  a.Nickname,
			Image:     a.Image,
			Message:   a.Message,
		})

	case protocol.Post:
		return w.saveContent(ctx, tx, env, models.ContentPost, "", a.Message, a.Mentions)

	case protocol.Reply:
		return w.saveContent(ctx, tx, env, models.ContentReply, a.Parent, a.Message, a.Mentions)

	case protocol.Quote:
		var mentions []string
		if a.MentionedKey != "" {
			mentions = []string{a.MentionedKey}
		}
		return w.saveContent(ctx, tx, env, models.ContentQuote, a.Reference, a.Message, mentions)

	case protocol.Vote:
		return w.unit.SaveVote(ctx, &models.Vote{
			ID:        tx.ID,
			CreatedAt: tx.CreatedAt,
			SenderKey: env.SenderKey,
			Signature: env.Signature,
			TargetID:  a.TargetID,
			Direction: a.Direction,
		}, a.MentionedKey)

	case protocol.Block:
		edge := &models.Edge{Kind: models.EdgeBlock, SenderKey: env.SenderKey, TargetKey: a.TargetKey}
		return true, w.unit.ApplyEdge(ctx, edge, a.On)

	case protocol.Follow:
		edge := &models.Edge{Kind: models.EdgeFollow, SenderKey: env.SenderKey, TargetKey: a.TargetKey}
		return true, w.unit.ApplyEdge(ctx, edge, a.On)

	default:
		// Unrecognized is filtered before persist; the switch is exhaustive.
		return false, nil
	}
}

func (w *Worker) saveContent(ctx context.Context, tx *models.RawTransaction, env protocol.Envelope, kind models.ContentKind, reference string, message []byte, mentions []string) (bool, error) {
	tags, rejected := extract.Hashtags(message)
	for _, candidate := range rejected {
		w.log.Warn(ctx, "hashtag candidate rejected", "tx", tx.ID, "candidate", candidate)
	}

	content := &models.Content{
		ID:        tx.ID,
		CreatedAt: tx.CreatedAt,
		SenderKey: env.SenderKey,
		Signature: env.Signature,
		Message:   message,
		Kind:      kind,
		Reference: reference,
	}
	return w.unit.SaveContent(ctx, content, mentions, tags)
}
