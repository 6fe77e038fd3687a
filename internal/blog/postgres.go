package blog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/notlelouch/chaincheck/internal/models"
)

const uniqueViolation = "23505"

// Schema creates the blogs table when it does not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS blogs (
	id         TEXT PRIMARY KEY,
	title      VARCHAR(200) NOT NULL,
	creator    VARCHAR(100) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS blogs_created_at_idx ON blogs (created_at DESC);`

// PostgresRepo implements Repository for PostgreSQL
type PostgresRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

func NewPostgresRepo(db *sqlx.DB, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

// Open connects with lib/pq and makes sure the schema exists.
func Open(ctx context.Context, dsn string, timeout time.Duration) (*PostgresRepo, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create blogs schema: %w", err)
	}
	return NewPostgresRepo(db, timeout), nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]models.Blog, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var blogs []models.Blog
	query := `SELECT id, title, creator, created_at FROM blogs ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &blogs, query); err != nil {
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	if blogs == nil {
		blogs = []models.Blog{}
	}
	return blogs, nil
}

func (r *PostgresRepo) Create(ctx context.Context, b models.Blog) (models.Blog, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO blogs (id, title, creator, created_at)
		VALUES (:id, :title, :creator, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, b); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.Blog{}, ErrDuplicate
		}
		return models.Blog{}, fmt.Errorf("failed to insert blog: %w", err)
	}
	return b, nil
}

func (r *PostgresRepo) Close() error {
	return r.db.Close()
}
