// Package memory holds process-local repositories. They honour the same
// contracts as the gorm ones, including the unique email index, and are
// safe for concurrent use.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"goblog-api/internal/model"
	"goblog-api/internal/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	nextID  uint
	users   map[uint]model.User
	byEmail map[string]uint
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[uint]model.User),
		byEmail: make(map[string]uint),
		now:     time.Now,
	}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return fmt.Errorf("create user failed: %w", repository.ErrDuplicateKey)
	}
	r.nextID++
	now := r.now()
	user.ID = r.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	r.byEmail[key] = user.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uint) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, nil
	}
	user := r.users[id]
	return &user, nil
}

func (r *UserRepository) List(_ context.Context, skip, limit int) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := sortedIDs(r.users)
	out := make([]model.User, 0)
	for _, id := range page(ids, skip, limit) {
		out = append(out, r.users[id])
	}
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("update user failed: user %d does not exist", user.ID)
	}
	oldKey, newKey := emailKey(current.Email), emailKey(user.Email)
	if oldKey != newKey {
		if _, taken := r.byEmail[newKey]; taken {
			return fmt.Errorf("update user failed: %w", repository.ErrDuplicateKey)
		}
		delete(r.byEmail, oldKey)
		r.byEmail[newKey] = user.ID
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = r.now()
	r.users[user.ID] = *user
	return nil
}

type BlogRepository struct {
	mu     sync.RWMutex
	nextID uint
	posts  map[uint]model.BlogPost
	users  *UserRepository
	now    func() time.Time
}

// NewBlogRepository checks owners against users, mirroring the foreign key
// on blogs.user_id.
func NewBlogRepository(users *UserRepository) *BlogRepository {
	return &BlogRepository{
		posts: make(map[uint]model.BlogPost),
		users: users,
		now:   time.Now,
	}
}

func (r *BlogRepository) Create(ctx context.Context, post *model.BlogPost) error {
	if r.users != nil {
		owner, _ := r.users.GetByID(ctx, post.UserID)
		if owner == nil {
			return fmt.Errorf("create blog failed: owner %d does not exist", post.UserID)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	post.ID = r.nextID
	if post.CreatedAt.IsZero() {
		post.CreatedAt = r.now()
	}
	post.User = nil
	r.posts[post.ID] = *post
	return nil
}

func (r *BlogRepository) GetByID(_ context.Context, id uint) (*model.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	return &post, nil
}

func (r *BlogRepository) List(_ context.Context, skip, limit int) ([]model.BlogPost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := sortedIDs(r.posts)
	out := make([]model.BlogPost, 0)
	for _, id := range page(ids, skip, limit) {
		out = append(out, r.posts[id])
	}
	return out, nil
}

func (r *BlogRepository) Update(_ context.Context, post *model.BlogPost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.posts[post.ID]
	if !ok {
		return fmt.Errorf("update blog failed: blog %d does not exist", post.ID)
	}
	current.Title = post.Title
	current.Body = post.Body
	r.posts[post.ID] = current
	return nil
}

type BlogEventRepository struct {
	mu     sync.RWMutex
	nextID uint
	events []model.BlogEvent
}

func NewBlogEventRepository() *BlogEventRepository {
	return &BlogEventRepository{}
}

func (r *BlogEventRepository) Create(_ context.Context, event *model.BlogEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	event.ID = r.nextID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *BlogEventRepository) ListByPostID(_ context.Context, postID uint, limit int) ([]model.BlogEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.BlogEvent
	for _, e := range r.events {
		if e.PostID == postID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func sortedIDs[T any](m map[uint]T) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func page(ids []uint, skip, limit int) []uint {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(ids) {
		return nil
	}
	ids = ids[skip:]
	if limit >= 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids
}

var (
	_ repository.UserRepository      = (*UserRepository)(nil)
	_ repository.BlogRepository      = (*BlogRepository)(nil)
	_ repository.BlogEventRepository = (*BlogEventRepository)(nil)
)
