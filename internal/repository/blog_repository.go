package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"goblog-api/internal/model"
)

type GormBlogRepository struct {
	db *gorm.DB
}

func NewBlogRepository(db *gorm.DB) *GormBlogRepository {
	return &GormBlogRepository{db: db}
}

func (r *GormBlogRepository) Create(ctx context.Context, post *model.BlogPost) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(post).Error; err != nil {
		return fmt.Errorf("create blog failed: %w", err)
	}
	return nil
}

func (r *GormBlogRepository) GetByID(ctx context.Context, id uint) (*model.BlogPost, error) {
	var post model.BlogPost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query blog by id failed: %w", err)
	}
	return &post, nil
}

func (r *GormBlogRepository) List(ctx context.Context, skip, limit int) ([]model.BlogPost, error) {
	var posts []model.BlogPost
	if err := r.db.WithContext(ctx).Order("id ASC").Offset(skip).Limit(limit).Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list blogs failed: %w", err)
	}
	return posts, nil
}

// Update writes title and body only; owner and timestamp are immutable.
func (r *GormBlogRepository) Update(ctx context.Context, post *model.BlogPost) error {
	err := r.db.WithContext(ctx).
		Model(&model.BlogPost{ID: post.ID}).
		Select("title", "body").
		Updates(map[string]interface{}{"title": post.Title, "body": post.Body}).Error
	if err != nil {
		return fmt.Errorf("update blog failed: %w", err)
	}
	return nil
}
