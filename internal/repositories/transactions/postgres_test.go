package transactions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/knetproto/kindex/internal/common"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Unix(1700000000, 0).UTC()
	q := regexp.MustCompile(`SELECT id, payload, created_at FROM transactions WHERE id = \$1`)

	mock.ExpectQuery(q.String()).
		WithArgs("abc123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "payload", "created_at"}).
			AddRow("abc123", []byte("k:1:..."), created))

	tx, err := repo.GetByID(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.ID != "abc123" || string(tx.Payload) != "k:1:..." || !tx.CreatedAt.Equal(created) {
		t.Fatalf("unexpected row: %+v", tx)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.MustCompile(`SELECT id, payload, created_at FROM transactions WHERE id = \$1`)

	mock.ExpectQuery(q.String()).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := regexp.MustCompile(`SELECT id, payload, created_at FROM transactions WHERE id = \$1`)

	mock.ExpectQuery(q.String()).
		WithArgs("abc123").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), "abc123")
	if err == nil || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want wrapped db error, got %v", err)
	}
}
