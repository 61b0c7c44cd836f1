package data

import (
	"context"
	"database/sql"
	"time"

	"offer-redirect/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
)

// Compile-time interface check
var _ domain.ClickRepository = (*clickRepo)(nil)

type clickRepo struct {
	data *Data
	log  *log.Helper
}

// NewClickRepo creates the append-only click event repository.
func NewClickRepo(data *Data, logger log.Logger) domain.ClickRepository {
	return &clickRepo{data: data, log: log.NewHelper(logger)}
}

// Insert durably appends one click event. The write must complete before the
// enclosing resolve call may return a redirect.
func (r *clickRepo) Insert(ctx context.Context, ev *domain.ClickEvent) error {
	fingerprint := sql.NullString{String: ev.Fingerprint, Valid: ev.Fingerprint != ""}
	_, err := r.data.db.ExecContext(ctx,
		`INSERT INTO clicks (offer_slug, country, uid_hash, ts) VALUES ($1, $2, $3, $4)`,
		ev.OfferSlug, ev.Country.String(), fingerprint, ev.TS,
	)
	return err
}

// CountByOffer aggregates clicks per offer for ts in [start, end). The slug
// tie-break keeps the ordering deterministic for top-N truncation.
func (r *clickRepo) CountByOffer(ctx context.Context, start, end time.Time, country domain.Country) ([]domain.OfferCount, error) {
	query := `SELECT offer_slug, COUNT(*) AS clicks
		FROM clicks
		WHERE ts >= $1 AND ts < $2`
	args := []any{start, end}
	if country != domain.CountryAll {
		query += ` AND country = $3`
		args = append(args, country.String())
	}
	query += `
		GROUP BY offer_slug
		ORDER BY clicks DESC, offer_slug ASC`

	rows, err := r.data.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OfferCount
	for rows.Next() {
		var row domain.OfferCount
		if err := rows.Scan(&row.OfferSlug, &row.Clicks); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// CountByDay aggregates clicks per calendar day for ts in [start, end). Days
// without events produce no row.
func (r *clickRepo) CountByDay(ctx context.Context, start, end time.Time, country domain.Country) ([]domain.DayCount, error) {
	query := `SELECT date_trunc('day', ts) AS day, COUNT(*) AS clicks
		FROM clicks
		WHERE ts >= $1 AND ts < $2`
	args := []any{start, end}
	if country != domain.CountryAll {
		query += ` AND country = $3`
		args = append(args, country.String())
	}
	query += `
		GROUP BY day
		ORDER BY day`

	rows, err := r.data.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DayCount
	for rows.Next() {
		var row domain.DayCount
		if err := rows.Scan(&row.Day, &row.Clicks); err != nil {
			return nil, err
		}
		row.Day = row.Day.UTC()
		result = append(result, row)
	}
	return result, rows.Err()
}
