package biz

import (
	"context"
	"time"

	"offer-redirect/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
)

// RedirectUsecase resolves slugs and short ids to destination URLs, recording
// exactly one click event per successful resolution. The click write is
// durable before the destination is returned: if the event cannot be stored,
// no redirect is issued.
type RedirectUsecase struct {
	offers domain.OfferRepository
	clicks domain.ClickRepository
	links  domain.ShortLinkRepository
	now    func() time.Time
	log    *log.Helper
}

func NewRedirectUsecase(
	offers domain.OfferRepository,
	clicks domain.ClickRepository,
	links domain.ShortLinkRepository,
	logger log.Logger,
) *RedirectUsecase {
	return &RedirectUsecase{
		offers: offers,
		clicks: clicks,
		links:  links,
		now:    time.Now,
		log:    log.NewHelper(logger),
	}
}

// ResolveSlug validates the country, looks up the offer and records the
// click, returning the offer's destination URL.
func (uc *RedirectUsecase) ResolveSlug(ctx context.Context, slug string, country domain.Country, fingerprint string) (string, error) {
	if !country.Valid() {
		return "", ErrInvalidCountry(country.String())
	}

	offer, err := uc.offers.FindBySlug(ctx, slug)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("offer lookup failed for %q: %v", slug, err)
		return "", ErrStoreUnavailable()
	}
	if !offer.Available() {
		return "", ErrOfferUnavailable(slug)
	}

	ev := &domain.ClickEvent{
		OfferSlug:   slug,
		Country:     country,
		Fingerprint: fingerprint,
		TS:          uc.now().UTC(),
	}
	if err := uc.clicks.Insert(ctx, ev); err != nil {
		uc.log.WithContext(ctx).Errorf("click insert failed for %q: %v", slug, err)
		return "", ErrStoreUnavailable()
	}

	return offer.URL, nil
}

// ResolveShort resolves a short id end to end: it looks up the stored link
// and delegates to ResolveSlug with the original slug, country and
// fingerprint. The click is recorded against the original slug, never the
// short id, and exactly once.
func (uc *RedirectUsecase) ResolveShort(ctx context.Context, id string) (string, error) {
	link, err := uc.links.FindByID(ctx, id)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("short link lookup failed for %q: %v", id, err)
		return "", ErrStoreUnavailable()
	}
	if link == nil {
		return "", ErrShortLinkNotFound(id)
	}
	return uc.ResolveSlug(ctx, link.OfferSlug, link.Country, link.Fingerprint)
}
