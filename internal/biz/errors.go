package biz

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
)

// Stable machine-readable reasons carried by every failure. The HTTP layer
// maps them onto problem+json responses.
const (
	ReasonInvalidCountry      = "INVALID_COUNTRY"
	ReasonInvalidRange        = "INVALID_RANGE"
	ReasonInvalidArgument     = "INVALID_ARGUMENT"
	ReasonOfferUnavailable    = "OFFER_UNAVAILABLE"
	ReasonShortLinkNotFound   = "SHORT_LINK_NOT_FOUND"
	ReasonAllocationExhausted = "ALLOCATION_EXHAUSTED"
	ReasonStoreUnavailable    = "STORE_UNAVAILABLE"
)

// ErrInvalidCountry rejects a country code outside the enumerated set.
func ErrInvalidCountry(code string) *errors.Error {
	return errors.BadRequest(ReasonInvalidCountry, fmt.Sprintf("country %q is not supported", code))
}

// ErrInvalidArgument rejects a structurally invalid request, naming the
// offending fields.
func ErrInvalidArgument(detail string) *errors.Error {
	return errors.BadRequest(ReasonInvalidArgument, detail)
}

// ErrInvalidRange rejects an unparseable or inverted date range.
func ErrInvalidRange(detail string) *errors.Error {
	return errors.BadRequest(ReasonInvalidRange, detail)
}

// ErrOfferUnavailable covers both unknown and deactivated offers.
func ErrOfferUnavailable(slug string) *errors.Error {
	return errors.NotFound(ReasonOfferUnavailable, fmt.Sprintf("offer %q not found or inactive", slug))
}

// ErrShortLinkNotFound rejects an unknown short id.
func ErrShortLinkNotFound(id string) *errors.Error {
	return errors.NotFound(ReasonShortLinkNotFound, fmt.Sprintf("short link %q not found", id))
}

// ErrAllocationExhausted signals that the bounded collision-retry loop ran
// out of attempts. This is a capacity signal, not a normal-path failure.
func ErrAllocationExhausted(attempts int) *errors.Error {
	return errors.InternalServer(ReasonAllocationExhausted, fmt.Sprintf("could not allocate a short id in %d attempts", attempts))
}

// ErrStoreUnavailable wraps a storage failure. The cause is logged, never
// exposed to the caller.
func ErrStoreUnavailable() *errors.Error {
	return errors.InternalServer(ReasonStoreUnavailable, "storage operation failed")
}
