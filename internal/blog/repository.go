// Package blog stores community blog posts behind a small repository interface.
package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/notlelouch/chaincheck/internal/models"
)

const (
	MaxTitleLength   = 200
	MaxCreatorLength = 100
)

var (
	ErrInvalid   = errors.New("invalid blog")
	ErrDuplicate = errors.New("blog id already exists")
)

type Repository interface {
	// List returns every post, newest first.
	List(ctx context.Context) ([]models.Blog, error)
	Create(ctx context.Context, b models.Blog) (models.Blog, error)
}

// Prepare validates a new post and fills in its id and creation time.
func Prepare(in models.NewBlog, now time.Time) (models.Blog, error) {
	b := models.Blog{
		ID:        strings.TrimSpace(in.ID),
		Title:     strings.TrimSpace(in.Title),
		Creator:   strings.TrimSpace(in.Creator),
		CreatedAt: now.UTC(),
	}
	switch {
	case b.Title == "":
		return models.Blog{}, fmt.Errorf("%w: title is required", ErrInvalid)
	case len([]rune(b.Title)) > MaxTitleLength:
		return models.Blog{}, fmt.Errorf("%w: title cannot exceed %d characters", ErrInvalid, MaxTitleLength)
	case b.Creator == "":
		return models.Blog{}, fmt.Errorf("%w: creator is required", ErrInvalid)
	case len([]rune(b.Creator)) > MaxCreatorLength:
		return models.Blog{}, fmt.Errorf("%w: creator cannot exceed %d characters", ErrInvalid, MaxCreatorLength)
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return b, nil
}
