package app

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"goblog-api/internal/model"
	"goblog-api/internal/repository"
)

type BlogService struct {
	blogRepo  repository.BlogRepository
	userRepo  repository.UserRepository
	eventRepo repository.BlogEventRepository
	cache     PostCache
	publisher BlogEventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

type CreatePostInput struct {
	Title string
	Body  string
}

// BlogPatch carries the fields an update may change. Nil means unchanged.
type BlogPatch struct {
	Title *string
	Body  *string
}

func (p BlogPatch) IsEmpty() bool {
	return p.Title == nil && p.Body == nil
}

func (p BlogPatch) apply(post *model.BlogPost) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return invalidInput("title must not be empty")
		}
		post.Title = title
	}
	if p.Body != nil {
		post.Body = *p.Body
	}
	return nil
}

type BlogServiceOption func(*BlogService)

// WithPostCache enables read-through caching of single posts.
func WithPostCache(cache PostCache) BlogServiceOption {
	return func(s *BlogService) { s.cache = cache }
}

// WithEventPublisher sends activity events to a queue instead of writing
// them to the event repository directly.
func WithEventPublisher(publisher BlogEventPublisher) BlogServiceOption {
	return func(s *BlogService) { s.publisher = publisher }
}

func WithBlogLogger(log zerolog.Logger) BlogServiceOption {
	return func(s *BlogService) { s.log = log }
}

func NewBlogService(
	blogRepo repository.BlogRepository,
	userRepo repository.UserRepository,
	eventRepo repository.BlogEventRepository,
	opts ...BlogServiceOption,
) *BlogService {
	s := &BlogService{
		blogRepo:  blogRepo,
		userRepo:  userRepo,
		eventRepo: eventRepo,
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BlogService) Create(ctx context.Context, input CreatePostInput, owner *model.User) (*model.BlogPost, error) {
	if owner == nil || owner.ID == 0 {
		return nil, ErrUnauthorized
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalidInput("title must not be empty")
	}

	existing, err := s.userRepo.GetByID(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrUserNotFound
	}

	post := &model.BlogPost{
		Title:     title,
		Body:      input.Body,
		UserID:    owner.ID,
		CreatedAt: s.now(),
	}
	if err := s.blogRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, post, owner.ID, model.BlogActionCreated)
	return post, nil
}

func (s *BlogService) Get(ctx context.Context, id uint) (*model.BlogPost, error) {
	if id == 0 {
		return nil, ErrPostNotFound
	}
	if s.cache != nil {
		cached, ok, err := s.cache.GetPost(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Uint("post_id", id).Msg("post cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	post, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if s.cache != nil {
		if err := s.cache.SetPost(ctx, post); err != nil {
			s.log.Warn().Err(err).Uint("post_id", id).Msg("post cache write failed")
		}
	}
	return post, nil
}

func (s *BlogService) List(ctx context.Context, page Page) ([]model.BlogPost, error) {
	page, err := page.normalize()
	if err != nil {
		return nil, err
	}
	return s.blogRepo.List(ctx, page.Skip, page.Limit)
}

// Update applies patch to post id on behalf of actor. Missing posts are
// reported before ownership so the two answers stay distinct.
func (s *BlogService) Update(ctx context.Context, id uint, patch BlogPatch, actor *model.User) (*model.BlogPost, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if patch.IsEmpty() {
		return nil, invalidInput("nothing to update")
	}

	post, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if !AuthorizeMutation(actor, post) {
		return nil, ErrForbidden
	}

	if err := patch.apply(post); err != nil {
		return nil, err
	}
	if err := s.blogRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.DeletePost(ctx, id); err != nil {
			s.log.Warn().Err(err).Uint("post_id", id).Msg("post cache invalidate failed")
		}
	}
	s.recordEvent(ctx, post, actor.ID, model.BlogActionUpdated)
	return post, nil
}

func (s *BlogService) History(ctx context.Context, id uint) ([]model.BlogEvent, error) {
	post, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if s.eventRepo == nil {
		return []model.BlogEvent{}, nil
	}
	return s.eventRepo.ListByPostID(ctx, id, 0)
}

// recordEvent never fails the caller; activity is best effort.
func (s *BlogService) recordEvent(ctx context.Context, post *model.BlogPost, actorID uint, action string) {
	event := model.BlogEvent{
		PostID:     post.ID,
		ActorID:    actorID,
		Action:     action,
		Title:      post.Title,
		OccurredAt: s.now(),
	}
	switch {
	case s.publisher != nil:
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Warn().Err(err).Uint("post_id", post.ID).Str("action", action).Msg("publish blog event failed")
		}
	case s.eventRepo != nil:
		if err := s.eventRepo.Create(ctx, &event); err != nil {
			s.log.Warn().Err(err).Uint("post_id", post.ID).Str("action", action).Msg("persist blog event failed")
		}
	}
}
