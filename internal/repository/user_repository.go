package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"goblog-api/internal/model"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("create user failed: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *GormUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by email failed: %w", err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

func (r *GormUserRepository) List(ctx context.Context, skip, limit int) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id ASC").Offset(skip).Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users failed: %w", err)
	}
	return users, nil
}

// Update writes the profile columns; gorm refreshes updated_at.
func (r *GormUserRepository) Update(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).
		Model(user).
		Select("email", "first_name", "last_name", "password_hash", "is_admin", "updated_at").
		Updates(user).Error
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("update user failed: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("update user failed: %w", err)
	}
	return nil
}
