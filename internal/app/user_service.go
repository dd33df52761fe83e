package app

import (
	"context"
	"errors"
	"strings"

	"goblog-api/internal/model"
	"goblog-api/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

// UserPatch carries the profile fields an update may change. Nil means
// unchanged.
type UserPatch struct {
	Email     *string
	FirstName *string
	LastName  *string
}

func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.FirstName == nil && p.LastName == nil
}

func (p UserPatch) apply(user *model.User) error {
	if p.Email != nil {
		email := normalizeEmail(*p.Email)
		if err := validateEmail(email); err != nil {
			return err
		}
		user.Email = email
	}
	if p.FirstName != nil {
		name := strings.TrimSpace(*p.FirstName)
		if name == "" {
			return invalidInput("first name must not be empty")
		}
		user.FirstName = name
	}
	if p.LastName != nil {
		name := strings.TrimSpace(*p.LastName)
		if name == "" {
			return invalidInput("last name must not be empty")
		}
		user.LastName = name
	}
	return nil
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, page Page) ([]model.User, error) {
	page, err := page.normalize()
	if err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx, page.Skip, page.Limit)
}

func (s *UserService) Update(ctx context.Context, id uint, patch UserPatch, actor *model.User) (*model.User, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if patch.IsEmpty() {
		return nil, invalidInput("nothing to update")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanEditUser(actor, user) {
		return nil, ErrForbidden
	}

	previousEmail := user.Email
	if err := patch.apply(user); err != nil {
		return nil, err
	}
	if user.Email != previousEmail {
		other, err := s.userRepo.GetByEmail(ctx, user.Email)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != user.ID {
			return nil, ErrDuplicateEmail
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}
