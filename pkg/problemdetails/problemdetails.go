// Package problemdetails renders errors as RFC 7807 problem documents.
package problemdetails

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/go-kratos/kratos/v2/errors"
)

const (
	TypeInvalidCountry      = "invalid-country"
	TypeInvalidRange        = "invalid-range"
	TypeValidationError     = "validation-error"
	TypeOfferUnavailable    = "offer-unavailable"
	TypeShortLinkNotFound   = "short-link-not-found"
	TypeAllocationExhausted = "allocation-exhausted"
	TypeStoreUnavailable    = "store-unavailable"
	TypeInternalError       = "internal-error"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ProblemDetail struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	Status int          `json:"status"`
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors,omitempty"`
}

func New(status int, problemType, title, detail string) *ProblemDetail {
	return &ProblemDetail{
		Type:   fmt.Sprintf("urn:offer-redirect:problem:%s", problemType),
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

// reasonTypes maps the machine-readable error reasons onto problem types.
var reasonTypes = map[string]struct {
	problemType string
	title       string
}{
	"INVALID_COUNTRY":      {TypeInvalidCountry, "Unsupported Country"},
	"INVALID_RANGE":        {TypeInvalidRange, "Invalid Date Range"},
	"INVALID_ARGUMENT":     {TypeValidationError, "Validation Failed"},
	"OFFER_UNAVAILABLE":    {TypeOfferUnavailable, "Offer Unavailable"},
	"SHORT_LINK_NOT_FOUND": {TypeShortLinkNotFound, "Short Link Not Found"},
	"ALLOCATION_EXHAUSTED": {TypeAllocationExhausted, "Allocation Exhausted"},
	"STORE_UNAVAILABLE":    {TypeStoreUnavailable, "Storage Unavailable"},
}

// FromError converts any error into a problem document. Recognized reasons
// keep their status and detail; everything else collapses into a generic
// internal error so storage internals never leak.
func FromError(err error) *ProblemDetail {
	kerr := errors.FromError(err)

	mapped, ok := reasonTypes[kerr.Reason]
	if !ok {
		return New(http.StatusInternalServerError, TypeInternalError, "Internal Server Error", "an unexpected error occurred")
	}

	pd := New(int(kerr.Code), mapped.problemType, mapped.title, kerr.Message)
	for field, msg := range kerr.Metadata {
		pd.Errors = append(pd.Errors, FieldError{Field: field, Message: msg})
	}
	sort.Slice(pd.Errors, func(i, j int) bool { return pd.Errors[i].Field < pd.Errors[j].Field })
	return pd
}
