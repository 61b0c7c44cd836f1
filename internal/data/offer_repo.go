package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"offer-redirect/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
)

const (
	offerCachePrefix = "offer:"
	// Destinations may change after a short link is minted; a short TTL keeps
	// the staleness window small.
	offerCacheTTL = 2 * time.Minute
)

// Compile-time interface check
var _ domain.OfferRepository = (*offerRepo)(nil)

type offerRepo struct {
	data *Data
	log  *log.Helper
}

// NewOfferRepo creates the read-only repository over the offer registry.
func NewOfferRepo(data *Data, logger log.Logger) domain.OfferRepository {
	return &offerRepo{data: data, log: log.NewHelper(logger)}
}

type cachedOffer struct {
	Slug   string `json:"slug"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// FindBySlug returns the offer or nil, nil when the slug is unknown.
func (r *offerRepo) FindBySlug(ctx context.Context, slug string) (*domain.Offer, error) {
	if cached := r.getCached(ctx, slug); cached != nil {
		return cached, nil
	}

	var o domain.Offer
	o.Slug = slug
	err := r.data.db.QueryRowContext(ctx,
		`SELECT url, active FROM offers WHERE slug = $1`, slug,
	).Scan(&o.URL, &o.Active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	r.setCached(ctx, &o)
	return &o, nil
}

func (r *offerRepo) cacheKey(slug string) string {
	return offerCachePrefix + slug
}

func (r *offerRepo) getCached(ctx context.Context, slug string) *domain.Offer {
	if r.data.rdb == nil {
		return nil
	}

	data, err := r.data.rdb.Get(ctx, r.cacheKey(slug)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WithContext(ctx).Warnf("offer cache get failed: %v", err)
		}
		return nil
	}

	var cached cachedOffer
	if err := json.Unmarshal(data, &cached); err != nil {
		r.log.WithContext(ctx).Warnf("offer cache entry corrupt: %v", err)
		return nil
	}
	return &domain.Offer{Slug: cached.Slug, URL: cached.URL, Active: cached.Active}
}

func (r *offerRepo) setCached(ctx context.Context, o *domain.Offer) {
	if r.data.rdb == nil {
		return
	}

	data, err := json.Marshal(cachedOffer{Slug: o.Slug, URL: o.URL, Active: o.Active})
	if err != nil {
		r.log.WithContext(ctx).Warnf("offer cache marshal failed: %v", err)
		return
	}
	if err := r.data.rdb.Set(ctx, r.cacheKey(o.Slug), data, offerCacheTTL).Err(); err != nil {
		r.log.WithContext(ctx).Warnf("offer cache set failed: %v", err)
	}
}
