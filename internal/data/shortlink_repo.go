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
	shortLinkCachePrefix = "sl:"
	// Short links are immutable once claimed, so a long TTL is safe.
	shortLinkCacheTTL = 1 * time.Hour
)

// Compile-time interface check
var _ domain.ShortLinkRepository = (*shortLinkRepo)(nil)

type shortLinkRepo struct {
	data *Data
	log  *log.Helper
}

// NewShortLinkRepo creates the short-link repository.
func NewShortLinkRepo(data *Data, logger log.Logger) domain.ShortLinkRepository {
	return &shortLinkRepo{data: data, log: log.NewHelper(logger)}
}

type cachedShortLink struct {
	ID          string    `json:"id"`
	OfferSlug   string    `json:"slug"`
	Country     string    `json:"country"`
	Fingerprint string    `json:"uid_hash"`
	CreatedAt   time.Time `json:"created_at"`
}

// Claim inserts the link unless its id is already taken. The existence check
// and the insert are a single statement, so two concurrent claims of the
// same id cannot both succeed.
func (r *shortLinkRepo) Claim(ctx context.Context, link *domain.ShortLink) (bool, error) {
	res, err := r.data.db.ExecContext(ctx,
		`INSERT INTO short_links (id, slug, country, uid_hash)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		link.ID, link.OfferSlug, link.Country.String(), link.Fingerprint,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	link.CreatedAt = time.Now().UTC()
	r.setCached(ctx, link)
	return true, nil
}

// FindByID returns the link or nil, nil when the id is unknown.
func (r *shortLinkRepo) FindByID(ctx context.Context, id string) (*domain.ShortLink, error) {
	if cached := r.getCached(ctx, id); cached != nil {
		return cached, nil
	}

	link := domain.ShortLink{ID: id}
	var country string
	err := r.data.db.QueryRowContext(ctx,
		`SELECT slug, country, uid_hash, created_at FROM short_links WHERE id = $1`, id,
	).Scan(&link.OfferSlug, &country, &link.Fingerprint, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	link.Country = domain.Country(country)

	r.setCached(ctx, &link)
	return &link, nil
}

func (r *shortLinkRepo) cacheKey(id string) string {
	return shortLinkCachePrefix + id
}

func (r *shortLinkRepo) getCached(ctx context.Context, id string) *domain.ShortLink {
	if r.data.rdb == nil {
		return nil
	}

	data, err := r.data.rdb.Get(ctx, r.cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WithContext(ctx).Warnf("short link cache get failed: %v", err)
		}
		return nil
	}

	var cached cachedShortLink
	if err := json.Unmarshal(data, &cached); err != nil {
		r.log.WithContext(ctx).Warnf("short link cache entry corrupt: %v", err)
		return nil
	}
	return &domain.ShortLink{
		ID:          cached.ID,
		OfferSlug:   cached.OfferSlug,
		Country:     domain.Country(cached.Country),
		Fingerprint: cached.Fingerprint,
		CreatedAt:   cached.CreatedAt,
	}
}

func (r *shortLinkRepo) setCached(ctx context.Context, link *domain.ShortLink) {
	if r.data.rdb == nil {
		return
	}

	data, err := json.Marshal(cachedShortLink{
		ID:          link.ID,
		OfferSlug:   link.OfferSlug,
		Country:     link.Country.String(),
		Fingerprint: link.Fingerprint,
		CreatedAt:   link.CreatedAt,
	})
	if err != nil {
		r.log.WithContext(ctx).Warnf("short link cache marshal failed: %v", err)
		return
	}
	if err := r.data.rdb.Set(ctx, r.cacheKey(link.ID), data, shortLinkCacheTTL).Err(); err != nil {
		r.log.WithContext(ctx).Warnf("short link cache set failed: %v", err)
	}
}
