package resource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kasuganosora/campuswellness/cache"
	"github.com/kasuganosora/campuswellness/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AllCacheKey holds the JSON-encoded full resource list.
const AllCacheKey = "resources:all"

// ErrInvalidResource is returned by Create for a resource without a title or category.
var ErrInvalidResource = errors.New("resource needs a title and a category")

// Directory lists campus support resources.
type Directory struct {
	db     *gorm.DB
	cache  cache.Cache // nil disables caching
	ttl    time.Duration
	logger *zap.Logger
}

// NewDirectory creates a Directory. A nil cache or non-positive ttl disables caching.
func NewDirectory(db *gorm.DB, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Directory {
	if ttl <= 0 {
		c = nil
	}
	return &Directory{db: db, cache: c, ttl: ttl, logger: logger}
}

func (d *Directory) load(ctx context.Context) ([]model.Resource, error) {
	out := []model.Resource{}
	if err := d.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return out, nil
}

// All returns every resource, served from the cache when warm.
func (d *Directory) All(ctx context.Context) ([]model.Resource, error) {
	var out []model.Resource
	if d.cache != nil && cache.GetJSON(ctx, d.cache, AllCacheKey, &out) {
		return out, nil
	}
	out, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	d.store(ctx, out)
	return out, nil
}

// Warm reloads the cached list from storage. It is run by the scheduler.
func (d *Directory) Warm(ctx context.Context) error {
	if d.cache == nil {
		return nil
	}
	out, err := d.load(ctx)
	if err != nil {
		return err
	}
	d.store(ctx, out)
	return nil
}

func (d *Directory) store(ctx context.Context, list []model.Resource) {
	if d.cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, d.cache, AllCacheKey, list, d.ttl); err != nil {
		d.logger.Warn("resource cache write failed", zap.Error(err))
	}
}

// ByCategory returns resources whose category matches exactly.
func (d *Directory) ByCategory(ctx context.Context, category string) ([]model.Resource, error) {
	out := []model.Resource{}
	err := d.db.WithContext(ctx).Where("category = ?", category).Order("id ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list resources by category: %w", err)
	}
	return out, nil
}

// Search matches query case-insensitively against title and description.
// An empty query matches everything.
func (d *Directory) Search(ctx context.Context, query string) ([]model.Resource, error) {
	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	out := []model.Resource{}
	err := d.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", pattern, pattern).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("search resources: %w", err)
	}
	return out, nil
}

// Create adds a resource and refreshes the cached list.
func (d *Directory) Create(ctx context.Context, r *model.Resource) error {
	r.Title = strings.TrimSpace(r.Title)
	r.Category = strings.TrimSpace(r.Category)
	if r.Title == "" || r.Category == "" {
		return ErrInvalidResource
	}
	r.ID = 0
	if err := d.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	if d.cache != nil {
		if err := d.cache.Del(ctx, AllCacheKey); err != nil {
			d.logger.Warn("resource cache invalidate failed", zap.Error(err))
		}
	}
	return nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
