package app

import (
	"context"
	"time"

	"goblog-api/internal/model"
)

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type TokenIssuer interface {
	Issue(userID uint) (string, error)
	TTL() time.Duration
}

type TokenValidator interface {
	Validate(token string) (uint, error)
}

type PostCache interface {
	GetPost(ctx context.Context, id uint) (*model.BlogPost, bool, error)
	SetPost(ctx context.Context, post *model.BlogPost) error
	DeletePost(ctx context.Context, id uint) error
}

type BlogEventPublisher interface {
	Publish(ctx context.Context, event model.BlogEvent) error
}
