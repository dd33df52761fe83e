package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"goblog-api/internal/model"
)

type GormBlogEventRepository struct {
	db *gorm.DB
}

func NewBlogEventRepository(db *gorm.DB) *GormBlogEventRepository {
	return &GormBlogEventRepository{db: db}
}

func (r *GormBlogEventRepository) Create(ctx context.Context, event *model.BlogEvent) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create blog event failed: %w", err)
	}
	return nil
}

func (r *GormBlogEventRepository) ListByPostID(ctx context.Context, postID uint, limit int) ([]model.BlogEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var events []model.BlogEvent
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("occurred_at ASC, id ASC").Limit(limit).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list blog events failed: %w", err)
	}
	return events, nil
}
