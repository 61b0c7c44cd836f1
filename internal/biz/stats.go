package biz

import (
	"context"
	"time"

	"offer-redirect/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
)

const dateLayout = "2006-01-02"

// OtherLabel names the synthetic row the top-N collapse folds the tail into.
const OtherLabel = "other"

// StatsUsecase answers aggregation queries over the click event log. It never
// mutates events.
type StatsUsecase struct {
	clicks domain.ClickRepository
	log    *log.Helper
}

func NewStatsUsecase(clicks domain.ClickRepository, logger log.Logger) *StatsUsecase {
	return &StatsUsecase{clicks: clicks, log: log.NewHelper(logger)}
}

// ParseRange parses calendar dates and an optional country filter into query
// bounds. The end bound is advanced by one day so the half-open [start, end)
// window covers the end calendar date in full. The inversion check runs
// against the dates as supplied, before the adjustment.
func ParseRange(fromDate, toDate, country string) (start, end time.Time, c domain.Country, err error) {
	start, perr := time.Parse(dateLayout, fromDate)
	if perr != nil {
		return time.Time{}, time.Time{}, "", ErrInvalidRange("from_date must be a YYYY-MM-DD date")
	}
	end, perr = time.Parse(dateLayout, toDate)
	if perr != nil {
		return time.Time{}, time.Time{}, "", ErrInvalidRange("to_date must be a YYYY-MM-DD date")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, "", ErrInvalidRange("to_date must not be before from_date")
	}
	end = end.AddDate(0, 0, 1)

	c = domain.CountryAll
	if country != "" {
		c, perr = domain.ParseCountry(country)
		if perr != nil {
			return time.Time{}, time.Time{}, "", ErrInvalidCountry(country)
		}
	}
	return start, end, c, nil
}

// ByOffer returns per-offer counts for ts in [start, end), ordered by count
// descending. The ordering is load-bearing for top-N truncation.
func (uc *StatsUsecase) ByOffer(ctx context.Context, start, end time.Time, country domain.Country) ([]domain.OfferCount, error) {
	rows, err := uc.clicks.CountByOffer(ctx, start, end, country)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("by-offer aggregation failed: %v", err)
		return nil, ErrStoreUnavailable()
	}
	return rows, nil
}

// ByDay returns per-day counts for ts in [start, end). Days without events
// are not emitted; callers needing a contiguous series use FillDays.
func (uc *StatsUsecase) ByDay(ctx context.Context, start, end time.Time, country domain.Country) ([]domain.DayCount, error) {
	rows, err := uc.clicks.CountByDay(ctx, start, end, country)
	if err != nil {
		uc.log.WithContext(ctx).Errorf("by-day aggregation failed: %v", err)
		return nil, ErrStoreUnavailable()
	}
	return rows, nil
}

// Summary runs both aggregations for one range.
func (uc *StatsUsecase) Summary(ctx context.Context, start, end time.Time, country domain.Country) ([]domain.OfferCount, []domain.DayCount, error) {
	byOffer, err := uc.ByOffer(ctx, start, end, country)
	if err != nil {
		return nil, nil, err
	}
	daily, err := uc.ByDay(ctx, start, end, country)
	if err != nil {
		return nil, nil, err
	}
	return byOffer, daily, nil
}

// TopOffers keeps the first top rows and collapses the remainder into a
// single "other" row summing their counts. Input order is preserved; the
// collapse only applies when more than top rows are present.
func TopOffers(rows []domain.OfferCount, top int) []domain.OfferCount {
	if top <= 0 || len(rows) <= top {
		return rows
	}
	head := make([]domain.OfferCount, top, top+1)
	copy(head, rows[:top])
	rest := lo.SumBy(rows[top:], func(r domain.OfferCount) int64 { return r.Clicks })
	return append(head, domain.OfferCount{OfferSlug: OtherLabel, Clicks: rest})
}

// FillDays reindexes a sparse daily series over [start, end), emitting a zero
// count for every day without events. start and end must be midnight-aligned.
func FillDays(rows []domain.DayCount, start, end time.Time) []domain.DayCount {
	counts := lo.SliceToMap(rows, func(r domain.DayCount) (string, int64) {
		return r.Day.Format(dateLayout), r.Clicks
	})

	var filled []domain.DayCount
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		filled = append(filled, domain.DayCount{
			Day:    day,
			Clicks: counts[day.Format(dateLayout)],
		})
	}
	return filled
}
