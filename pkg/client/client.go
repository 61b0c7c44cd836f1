// Package client is a small HTTP client for collaborating services that hand
// out redirect links, such as messenger bots.
package client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"offer-redirect/pkg/fallback"
)

// Client talks to one offer-redirect deployment.
type Client struct {
	baseURL string
	hc      *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// Fingerprint derives a stable pseudonymous user fingerprint. The raw user id
// never leaves the caller.
func Fingerprint(userID int64, salt string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%s", userID, salt)))
	return hex.EncodeToString(sum[:])
}

type createReply struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// CreateShortLink asks the service to mint a short link and returns the
// absolute short URL.
func (c *Client) CreateShortLink(ctx context.Context, slug, country, fingerprint string) (string, error) {
	body, err := json.Marshal(map[string]string{"slug": slug, "c": country, "u": fingerprint})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/s/new", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("create short link: unexpected status %d", resp.StatusCode)
	}

	var reply createReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", err
	}
	return c.baseURL + reply.Path, nil
}

// DirectURL builds the long-form redirect URL locally, without any network
// round trip.
func (c *Client) DirectURL(slug, country, fingerprint string) string {
	q := url.Values{}
	q.Set("c", country)
	if fingerprint != "" {
		q.Set("u", fingerprint)
	}
	return c.baseURL + "/r/" + url.PathEscape(slug) + "?" + q.Encode()
}

// OfferLink returns a link for the given offer, preferring a short link and
// falling back to the direct URL when allocation fails. The direct URL cannot
// fail, so callers always get a usable link.
func (c *Client) OfferLink(ctx context.Context, slug, country, fingerprint string) (string, error) {
	return fallback.First(ctx,
		func(ctx context.Context) (string, error) {
			return c.CreateShortLink(ctx, slug, country, fingerprint)
		},
		func(context.Context) (string, error) {
			return c.DirectURL(slug, country, fingerprint), nil
		},
	)
}

// FetchPlot downloads the stats chart PNG for a date range. top <= 0 leaves
// the bar count to the server default.
func (c *Client) FetchPlot(ctx context.Context, fromDate, toDate, country string, top int) ([]byte, error) {
	q := url.Values{}
	q.Set("from_date", fromDate)
	q.Set("to_date", toDate)
	if country != "" {
		q.Set("country", country)
	}
	if top > 0 {
		q.Set("top", strconv.Itoa(top))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats/plot?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch plot: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
