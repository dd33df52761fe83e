package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"goblog-api/internal/model"
)

type PostCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewPostCache(client *redisv9.Client, ttl time.Duration) *PostCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &PostCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *PostCache) GetPost(ctx context.Context, id uint) (*model.BlogPost, bool, error) {
	raw, err := c.client.Get(ctx, postKey(id)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get post failed: %w", err)
	}

	post, err := decodePost([]byte(raw))
	if err != nil {
		return nil, false, err
	}
	return post, true, nil
}

func (c *PostCache) SetPost(ctx context.Context, post *model.BlogPost) error {
	payload, err := encodePost(post)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, postKey(post.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set post failed: %w", err)
	}
	return nil
}

func (c *PostCache) DeletePost(ctx context.Context, id uint) error {
	if err := c.client.Del(ctx, postKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete post failed: %w", err)
	}
	return nil
}

func postKey(id uint) string {
	return fmt.Sprintf("blog:post:%d", id)
}

// encodePost stores the post's public JSON form; the owner association is
// not cached.
func encodePost(post *model.BlogPost) ([]byte, error) {
	payload, err := json.Marshal(post)
	if err != nil {
		return nil, fmt.Errorf("marshal post cache failed: %w", err)
	}
	return payload, nil
}

func decodePost(raw []byte) (*model.BlogPost, error) {
	var post model.BlogPost
	if err := json.Unmarshal(raw, &post); err != nil {
		return nil, fmt.Errorf("unmarshal cached post failed: %w", err)
	}
	return &post, nil
}
