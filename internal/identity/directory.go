package identity

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"doctransfer/internal/cache"
	"doctransfer/internal/model"
	"doctransfer/internal/repository"
)

const (
	usersAllKey      = "users:all"
	usersSubjectKeys = "users:sub:"
)

// Directory resolves users by their identity-provider subject and lists known users.
type Directory interface {
	// UserBySubjectID returns nil, nil when the subject is unknown.
	UserBySubjectID(ctx context.Context, subjectID string) (*model.User, error)
	// Remember records an authenticated caller so later subject lookups resolve.
	Remember(ctx context.Context, user model.User) error
	ListUsers(ctx context.Context) ([]model.User, error)
}

type directory struct {
	users repository.UserRepository
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewDirectory returns a Directory over the users table with a read-through cache.
// Cache failures are logged and fall back to the table.
func NewDirectory(users repository.UserRepository, c cache.Cache, ttl time.Duration, log *zap.Logger) Directory {
	return &directory{users: users, cache: c, ttl: ttl, log: log.Named("directory")}
}

func (d *directory) UserBySubjectID(ctx context.Context, subjectID string) (*model.User, error) {
	if subjectID == "" {
		return nil, nil
	}

	var cached model.User
	if d.cacheGet(ctx, usersSubjectKeys+subjectID, &cached) {
		return &cached, nil
	}

	u, err := d.users.FindBySubjectID(ctx, subjectID)
	if err != nil || u == nil {
		return u, err
	}
	d.cacheSet(ctx, usersSubjectKeys+subjectID, u)
	return u, nil
}

func (d *directory) Remember(ctx context.Context, user model.User) error {
	if user.SubjectID == "" {
		return nil
	}

	var cached model.User
	if d.cacheGet(ctx, usersSubjectKeys+user.SubjectID, &cached) && cached == user {
		return nil
	}

	if err := d.users.Upsert(ctx, user); err != nil {
		return err
	}
	d.cacheSet(ctx, usersSubjectKeys+user.SubjectID, user)
	if err := d.cache.Del(ctx, usersAllKey).Err(); err != nil {
		d.log.Warn("cache invalidate failed", zap.String("key", usersAllKey), zap.Error(err))
	}
	return nil
}

func (d *directory) ListUsers(ctx context.Context) ([]model.User, error) {
	var cached []model.User
	if d.cacheGet(ctx, usersAllKey, &cached) {
		return cached, nil
	}

	users, err := d.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	d.cacheSet(ctx, usersAllKey, users)
	return users, nil
}

func (d *directory) cacheGet(ctx context.Context, key string, dst any) bool {
	raw, err := d.cache.Get(ctx, key).Result()
	if err != nil {
		d.log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if raw == "" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		d.log.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (d *directory) cacheSet(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, key, string(raw), d.ttl).Err(); err != nil {
		d.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}
