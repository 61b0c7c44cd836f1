package biz

import (
	"context"

	"offer-redirect/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
)

// AllocationAttempts bounds the collision-retry loop. With 47 bits of entropy
// a single retry is already rare; exhausting the bound means the id space is
// effectively full.
const AllocationAttempts = 5

// ShortLinkUsecase mints collision-free short ids and resolves them back to
// their stored redirect parameters.
type ShortLinkUsecase struct {
	links domain.ShortLinkRepository
	log   *log.Helper
}

func NewShortLinkUsecase(links domain.ShortLinkRepository, logger log.Logger) *ShortLinkUsecase {
	return &ShortLinkUsecase{links: links, log: log.NewHelper(logger)}
}

// Allocate draws random ids until one is claimed or the attempt bound is
// exhausted. The claim is a single atomic store operation, so two concurrent
// allocations can never both persist the same id.
func (uc *ShortLinkUsecase) Allocate(ctx context.Context, slug string, country domain.Country, fingerprint string) (*domain.ShortLink, error) {
	if !country.Valid() {
		return nil, ErrInvalidCountry(country.String())
	}

	for attempt := 1; attempt <= AllocationAttempts; attempt++ {
		id, err := domain.NewShortID()
		if err != nil {
			uc.log.WithContext(ctx).Errorf("short id generation failed: %v", err)
			return nil, ErrStoreUnavailable()
		}

		link := &domain.ShortLink{
			ID:          id,
			OfferSlug:   slug,
			Country:     country,
			Fingerprint: fingerprint,
		}

		claimed, err := uc.links.Claim(ctx, link)
		if err != nil {
			uc.log.WithContext(ctx).Errorf("short link claim failed: %v", err)
			return nil, ErrStoreUnavailable()
		}
		if claimed {
			return link, nil
		}

		uc.log.WithContext(ctx).Warnf("short id collision on attempt %d/%d", attempt, AllocationAttempts)
	}

	uc.log.WithContext(ctx).Errorf("short id allocation exhausted after %d attempts", AllocationAttempts)
	return nil, ErrAllocationExhausted(AllocationAttempts)
}

// Lookup returns the stored link for a short id.
func (uc *ShortLinkUsecase) Lookup(ctx context.Context, id string) (*domain.ShortLink, error) {
	link, err := uc.links.FindByID(ctx, id)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("short link lookup failed: %v", err)
		return nil, ErrStoreUnavailable()
	}
	if link == nil {
		return nil, ErrShortLinkNotFound(id)
	}
	return link, nil
}
