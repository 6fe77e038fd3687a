package blog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/notlelouch/chaincheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC)

func TestPrepare(t *testing.T) {
	b, err := Prepare(models.NewBlog{Title: "  Rug pull anatomy ", Creator: "alice"}, now)
	require.NoError(t, err)
	assert.Equal(t, "Rug pull anatomy", b.Title)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, now, b.CreatedAt)

	b, err = Prepare(models.NewBlog{ID: "post-1", Title: "t", Creator: "c"}, now)
	require.NoError(t, err)
	assert.Equal(t, "post-1", b.ID)
}

func TestPrepareValidation(t *testing.T) {
	cases := []struct {
		name string
		in   models.NewBlog
	}{
		{"missing title", models.NewBlog{Creator: "c"}},
		{"missing creator", models.NewBlog{Title: "t"}},
		{"long title", models.NewBlog{Title: strings.Repeat("x", MaxTitleLength+1), Creator: "c"}},
		{"long creator", models.NewBlog{Title: "t", Creator: strings.Repeat("y", MaxCreatorLength+1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Prepare(tc.in, now)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestMemoryRepoNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	_, err := repo.Create(ctx, models.Blog{ID: "a", Title: "old", Creator: "c", CreatedAt: now})
	require.NoError(t, err)
	_, err = repo.Create(ctx, models.Blog{ID: "b", Title: "new", Creator: "c", CreatedAt: now.Add(time.Hour)})
	require.NoError(t, err)
	_, err = repo.Create(ctx, models.Blog{ID: "a", Title: "dup", Creator: "c", CreatedAt: now})
	assert.ErrorIs(t, err, ErrDuplicate)

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "b", posts[0].ID)
	assert.Equal(t, "a", posts[1].ID)
}

func newMockRepo(t *testing.T) (*PostgresRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepo(sqlx.NewDb(db, "postgres"), time.Second), mock
}

func TestPostgresList(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "title", "creator", "created_at"}).
		AddRow("b", "new", "bob", now.Add(time.Hour)).
		AddRow("a", "old", "alice", now)
	mock.ExpectQuery(`SELECT id, title, creator, created_at FROM blogs ORDER BY created_at DESC`).WillReturnRows(rows)

	posts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "bob", posts[0].Creator)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT id, title, creator, created_at FROM blogs`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "creator", "created_at"}))

	posts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostgresCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	b := models.Blog{ID: "post-1", Title: "Liquidity locks", Creator: "carol", CreatedAt: now}

	mock.ExpectExec(`INSERT INTO blogs`).
		WithArgs(b.ID, b.Title, b.Creator, b.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Create(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, b, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`INSERT INTO blogs`).WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), models.Blog{ID: "post-1", Title: "t", Creator: "c", CreatedAt: now})
	assert.ErrorIs(t, err, ErrDuplicate)
}
