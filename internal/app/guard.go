package app

import (
	"context"

	"goblog-api/internal/model"
	"goblog-api/internal/repository"
)

// Guard turns a bearer token into the user it was issued for.
type Guard struct {
	tokens   TokenValidator
	userRepo repository.UserRepository
}

func NewGuard(tokens TokenValidator, userRepo repository.UserRepository) *Guard {
	return &Guard{tokens: tokens, userRepo: userRepo}
}

// Authenticate fails with ErrTokenExpired, ErrTokenMalformed or
// ErrUserNotFound; any other error comes from storage.
func (g *Guard) Authenticate(ctx context.Context, token string) (*model.User, error) {
	userID, err := g.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	user, err := g.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// AuthorizeMutation reports whether user may change post.
func AuthorizeMutation(user *model.User, post *model.BlogPost) bool {
	if user == nil || post == nil {
		return false
	}
	return user.ID == post.UserID || user.IsAdmin
}

// CanEditUser reports whether actor may change target's profile.
func CanEditUser(actor, target *model.User) bool {
	if actor == nil || target == nil {
		return false
	}
	return actor.ID == target.ID || actor.IsAdmin
}
