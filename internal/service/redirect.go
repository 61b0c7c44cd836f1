package service

import (
	"context"
	"errors"
	"net/url"

	"offer-redirect/internal/biz"
	"offer-redirect/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// RedirectService is the transport-facing layer for redirects and short-link
// allocation.
type RedirectService struct {
	resolver  *biz.RedirectUsecase
	allocator *biz.ShortLinkUsecase
	log       *log.Helper
}

func NewRedirectService(resolver *biz.RedirectUsecase, allocator *biz.ShortLinkUsecase, logger log.Logger) *RedirectService {
	return &RedirectService{
		resolver:  resolver,
		allocator: allocator,
		log:       log.NewHelper(logger),
	}
}

type CreateShortLinkRequest struct {
	Slug        string `json:"slug"`
	Country     string `json:"c"`
	Fingerprint string `json:"u"`
}

func (r *CreateShortLinkRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Slug, validation.Required, validation.Length(1, 128)),
		validation.Field(&r.Country, validation.Required),
	)
}

type CreateShortLinkReply struct {
	ID string `json:"id"`
	// Path is relative; the caller prefixes its own public base URL. The
	// destination stays unresolved until click time, so it may change after
	// the link is minted.
	Path string `json:"path"`
}

// CreateShortLink mints a short id for the given redirect parameters.
func (s *RedirectService) CreateShortLink(ctx context.Context, req *CreateShortLinkRequest) (*CreateShortLinkReply, error) {
	if err := req.Validate(); err != nil {
		return nil, invalidArgument(err)
	}

	country, err := domain.ParseCountry(req.Country)
	if err != nil {
		return nil, biz.ErrInvalidCountry(req.Country)
	}

	link, err := s.allocator.Allocate(ctx, req.Slug, country, req.Fingerprint)
	if err != nil {
		return nil, err
	}

	return &CreateShortLinkReply{ID: link.ID, Path: ResolutionPath(link.ID)}, nil
}

// ResolveSlug resolves a long-form redirect and returns the destination URL.
func (s *RedirectService) ResolveSlug(ctx context.Context, slug, country, fingerprint string) (string, error) {
	c, err := domain.ParseCountry(country)
	if err != nil {
		return "", biz.ErrInvalidCountry(country)
	}
	return s.resolver.ResolveSlug(ctx, slug, c, fingerprint)
}

// ResolveShort looks up a short id and returns the long-form redirect path
// carrying the stored slug, country and fingerprint. The click is recorded
// when that path is resolved, so the indirection never double-counts.
func (s *RedirectService) ResolveShort(ctx context.Context, id string) (string, error) {
	link, err := s.allocator.Lookup(ctx, id)
	if err != nil {
		return "", err
	}
	return RedirectPath(link), nil
}

// ResolutionPath is the relative path that resolves a short id.
func ResolutionPath(id string) string {
	return "/s/" + id
}

// RedirectPath is the long-form path a short link expands to.
func RedirectPath(link *domain.ShortLink) string {
	q := url.Values{}
	q.Set("c", link.Country.String())
	if link.Fingerprint != "" {
		q.Set("u", link.Fingerprint)
	}
	return "/r/" + url.PathEscape(link.OfferSlug) + "?" + q.Encode()
}

// invalidArgument converts an ozzo validation error into the transport error,
// carrying per-field messages as metadata.
func invalidArgument(err error) error {
	kerr := biz.ErrInvalidArgument(err.Error())
	var fields validation.Errors
	if errors.As(err, &fields) {
		md := make(map[string]string, len(fields))
		for field, ferr := range fields {
			md[field] = ferr.Error()
		}
		return kerr.WithMetadata(md)
	}
	return kerr
}
