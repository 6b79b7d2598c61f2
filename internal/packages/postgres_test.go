package packages_test

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SmartChain-HD/AI/internal/packages"
	"github.com/SmartChain-HD/AI/pkg/pagination"
)

const (
	selectPackage = "SELECT p.id, p.domain, p.hints, p.created_at, p.updated_at FROM public.packages p WHERE p.id = $1"
	lockPackage   = "SELECT domain, hints FROM packages WHERE id = $1 FOR UPDATE"
)

var packageColumns = []string{"id", "domain", "hints", "created_at", "updated_at"}

func newPostgres(t *testing.T) (packages.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return packages.NewPostgres(db, logger), mock
}

func TestPostgresGet(t *testing.T) {
	store, mock := newPostgres(t)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(selectPackage)).
		WithArgs("PKG_1").
		WillReturnRows(sqlmock.NewRows(packageColumns).
			AddRow("PKG_1", "esg", []byte(`[{"file_id":"f1","slot_name":"esg.ethics.code","confidence":0.9,"match_reason":"filename_keyword"}]`), now, now))

	p, err := store.Get(ctx, "PKG_1")
	require.NoError(t, err)
	assert.Equal(t, "esg", p.Domain)
	require.Len(t, p.Hints, 1)
	assert.Equal(t, "esg.ethics.code", p.Hints[0].SlotName)

	mock.ExpectQuery(regexp.QuoteMeta(selectPackage)).
		WithArgs("PKG_2").
		WillReturnRows(sqlmock.NewRows(packageColumns))

	_, err = store.Get(ctx, "PKG_2")
	assert.ErrorIs(t, err, packages.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertMerges(t *testing.T) {
	store, mock := newPostgres(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPackage)).
		WithArgs("PKG_1").
		WillReturnRows(sqlmock.NewRows([]string{"domain", "hints"}).
			AddRow("esg", []byte(`[{"file_id":"f1","slot_name":"a","confidence":1,"match_reason":"filename_keyword"}]`)))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO packages")).
		WithArgs("PKG_1", "esg", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(packageColumns).
			AddRow("PKG_1", "esg", []byte(`[{"file_id":"f1","slot_name":"a"},{"file_id":"f2","slot_name":"b"}]`), now, now))
	mock.ExpectCommit()

	p, err := store.Upsert(context.Background(), "PKG_1", "esg", nil)
	require.NoError(t, err)
	assert.Len(t, p.Hints, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertNewPackage(t *testing.T) {
	store, mock := newPostgres(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPackage)).
		WithArgs("PKG_1").
		WillReturnRows(sqlmock.NewRows([]string{"domain", "hints"}))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO packages")).
		WithArgs("PKG_1", "safety", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(packageColumns).AddRow("PKG_1", "safety", []byte(`[]`), now, now))
	mock.ExpectCommit()

	p, err := store.Upsert(context.Background(), "PKG_1", "safety", nil)
	require.NoError(t, err)
	assert.NotNil(t, p.Hints)
	assert.Empty(t, p.Hints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpsertDomainMismatch(t *testing.T) {
	store, mock := newPostgres(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPackage)).
		WithArgs("PKG_1").
		WillReturnRows(sqlmock.NewRows([]string{"domain", "hints"}).AddRow("esg", []byte(`[]`)))
	mock.ExpectRollback()

	_, err := store.Upsert(context.Background(), "PKG_1", "safety", nil)
	assert.ErrorIs(t, err, packages.ErrDomainMismatch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRemoveFilesNotFound(t *testing.T) {
	store, mock := newPostgres(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockPackage)).
		WithArgs("PKG_9").
		WillReturnRows(sqlmock.NewRows([]string{"domain", "hints"}))
	mock.ExpectRollback()

	_, err := store.RemoveFiles(context.Background(), "PKG_9", []string{"f1"})
	assert.ErrorIs(t, err, packages.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresList(t *testing.T) {
	store, mock := newPostgres(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM public.packages p WHERE p.domain = $1")).
		WithArgs("esg").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("FROM public.packages p WHERE p.domain = $1 ORDER BY p.updated_at DESC LIMIT 2 OFFSET 0")).
		WithArgs("esg").
		WillReturnRows(sqlmock.NewRows(packageColumns).
			AddRow("PKG_1", "esg", []byte(`[]`), now, now).
			AddRow("PKG_2", "esg", nil, now, now))

	result, err := store.List(context.Background(), pagination.PageRequest{Page: 1, PageSize: 2}, "esg")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.TotalPages)
	assert.Len(t, result.Data, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
