package challenge

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

// CatalogCacheKey holds the JSON-encoded challenge list.
const CatalogCacheKey = "challenges:catalog"

// Catalog is the read-mostly list of challenge definitions.
type Catalog struct {
	db     *gorm.DB
	cache  cache.Cache // nil disables caching
	ttl    time.Duration
	logger *zap.Logger
}

// NewCatalog creates a Catalog. A nil cache or a non-positive ttl disables
// the read-through cache.
func NewCatalog(db *gorm.DB, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Catalog {
	if ttl <= 0 {
		c = nil
	}
	return &Catalog{db: db, cache: c, ttl: ttl, logger: logger}
}

// List returns every challenge in insertion order.
func (cat *Catalog) List(ctx context.Context) ([]model.Challenge, error) {
	var out []model.Challenge
	if cat.cache != nil && cache.GetJSON(ctx, cat.cache, CatalogCacheKey, &out) {
		return out, nil
	}

	out = []model.Challenge{}
	if err := cat.db.WithContext(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	if cat.cache != nil {
		if err := cache.SetJSON(ctx, cat.cache, CatalogCacheKey, out, cat.ttl); err != nil {
			cat.logger.Warn("catalog cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

// Get returns one challenge by id.
func (cat *Catalog) Get(ctx context.Context, id int64) (*model.Challenge, error) {
	var ch model.Challenge
	if err := cat.db.WithContext(ctx).First(&ch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get challenge %d: %w", id, err)
	}
	return &ch, nil
}

// Create adds a challenge definition and drops the cached list.
func (cat *Catalog) Create(ctx context.Context, ch *model.Challenge) error {
	ch.Title = strings.TrimSpace(ch.Title)
	if ch.Title == "" || ch.TotalDays <= 0 {
		return ErrInvalidChallenge
	}
	ch.ID = 0
	if err := cat.db.WithContext(ctx).Create(ch).Error; err != nil {
		return fmt.Errorf("create challenge: %w", err)
	}
	cat.Invalidate(ctx)
	cat.logger.Info("challenge created",
		zap.Int64("challenge_id", ch.ID), zap.String("title", ch.Title))
	return nil
}

// Invalidate drops the cached list.
func (cat *Catalog) Invalidate(ctx context.Context) {
	if cat.cache == nil {
		return
	}
	if err := cat.cache.Del(ctx, CatalogCacheKey); err != nil {
		cat.logger.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}
