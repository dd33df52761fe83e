package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"goblog-api/internal/model"
	"goblog-api/internal/pkg/password"
	"goblog-api/internal/repository"
)

const minPasswordLength = 8

type AuthService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer

	dummyOnce sync.Once
	dummyHash string
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginInput struct {
	Email    string
	Password string
}

type TokenResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
	User        *model.User
}

func NewAuthService(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register creates a user. The email pre-check gives a fast answer; the
// unique index decides concurrent registrations.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := normalizeEmail(input.Email)
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	if firstName == "" || lastName == "" {
		return nil, invalidInput("first and last name are required")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return user, nil
}

// Login returns ErrUserNotFound for an unknown email and
// ErrInvalidCredentials for a wrong password. Both paths pay for one bcrypt
// comparison.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*TokenResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, invalidInput("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.Verify(input.Password, s.timingHash())
		return nil, ErrUserNotFound
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
		User:        user,
	}, nil
}

func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("timing-equalizer-password")
		if err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	at := strings.LastIndex(email, "@")
	if email == "" || at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t\r\n") {
		return invalidInput("a valid email is required")
	}
	return nil
}

func validatePassword(pw string) error {
	if len(pw) < minPasswordLength || len(pw) > password.MaxLength {
		return invalidInput(fmt.Sprintf("password must be %d to %d bytes", minPasswordLength, password.MaxLength))
	}
	return nil
}
