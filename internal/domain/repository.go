package domain

import (
	"context"
	"time"
)

// OfferRepository reads the externally managed offer registry.
type OfferRepository interface {
	// FindBySlug returns the offer or nil, nil when the slug is unknown.
	FindBySlug(ctx context.Context, slug string) (*Offer, error)
}

// ClickRepository appends and aggregates click events. Events are immutable;
// there are no update or delete operations.
type ClickRepository interface {
	// Insert durably appends one click event.
	Insert(ctx context.Context, ev *ClickEvent) error

	// CountByOffer returns per-offer click counts for ts in [start, end),
	// ordered by count descending with slug as the deterministic tie-break.
	// country narrows the result when it is not CountryAll.
	CountByOffer(ctx context.Context, start, end time.Time, country Country) ([]OfferCount, error)

	// CountByDay returns per-day click counts for ts in [start, end) in
	// ascending day order. Days without events are not emitted.
	CountByDay(ctx context.Context, start, end time.Time, country Country) ([]DayCount, error)
}

// ShortLinkRepository owns the short-link id space.
type ShortLinkRepository interface {
	// Claim atomically inserts the link unless its id is already taken.
	// It returns false, nil on collision so the caller can redraw.
	Claim(ctx context.Context, link *ShortLink) (bool, error)

	// FindByID returns the link or nil, nil when the id is unknown.
	FindByID(ctx context.Context, id string) (*ShortLink, error)
}
