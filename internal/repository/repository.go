package repository

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"goblog-api/internal/model"
)

// ErrDuplicateKey is returned when a write collides with a unique index.
// The storage layer is the final arbiter for email uniqueness.
var ErrDuplicateKey = errors.New("duplicate key")

// Lookups return (nil, nil) when no row matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, skip, limit int) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type BlogRepository interface {
	Create(ctx context.Context, post *model.BlogPost) error
	GetByID(ctx context.Context, id uint) (*model.BlogPost, error)
	List(ctx context.Context, skip, limit int) ([]model.BlogPost, error)
	Update(ctx context.Context, post *model.BlogPost) error
}

type BlogEventRepository interface {
	Create(ctx context.Context, event *model.BlogEvent) error
	ListByPostID(ctx context.Context, postID uint, limit int) ([]model.BlogEvent, error)
}

// Models lists every table managed by the gorm repositories.
func Models() []interface{} {
	return []interface{}{&model.User{}, &model.BlogPost{}, &model.BlogEvent{}}
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return true
	}
	return false
}
