package domain

import "time"

// ClickEvent records one successful redirect resolution. Events are
// append-only and are the single source of truth for analytics.
type ClickEvent struct {
	ID          int64
	OfferSlug   string
	Country     Country
	Fingerprint string // pseudonymous user hash, may be empty
	TS          time.Time
}

// OfferCount is one row of a by-offer aggregation.
type OfferCount struct {
	OfferSlug string
	Clicks    int64
}

// DayCount is one row of a daily aggregation. Day is truncated to midnight.
type DayCount struct {
	Day    time.Time
	Clicks int64
}
