package service

import (
	"context"

	"offer-redirect/internal/biz"
	"offer-redirect/internal/domain"
	"offer-redirect/internal/render"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
)

// DefaultTop is the bar count the plot endpoint falls back to.
const DefaultTop = 10

const dateLayout = "2006-01-02"

// StatsService serves the JSON and chart aggregation endpoints.
type StatsService struct {
	stats *biz.StatsUsecase
	log   *log.Helper
}

func NewStatsService(stats *biz.StatsUsecase, logger log.Logger) *StatsService {
	return &StatsService{stats: stats, log: log.NewHelper(logger)}
}

type StatsRangeRequest struct {
	FromDate string
	ToDate   string
	Country  string
}

type StatsPlotRequest struct {
	StatsRangeRequest
	Top int
}

type RangeInfo struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Country string `json:"country,omitempty"`
}

type OfferClicks struct {
	OfferSlug string `json:"offer_slug"`
	Clicks    int64  `json:"clicks"`
}

type DayClicks struct {
	Date   string `json:"date"`
	Clicks int64  `json:"clicks"`
}

type StatsRangeReply struct {
	Range   RangeInfo     `json:"range"`
	ByOffer []OfferClicks `json:"by_offer"`
	Daily   []DayClicks   `json:"daily"`
}

// Range returns both aggregations as JSON. Daily rows cover only days that
// have events; consumers needing a contiguous series fill the gaps.
func (s *StatsService) Range(ctx context.Context, req *StatsRangeRequest) (*StatsRangeReply, error) {
	start, end, country, err := biz.ParseRange(req.FromDate, req.ToDate, req.Country)
	if err != nil {
		return nil, err
	}

	byOffer, daily, err := s.stats.Summary(ctx, start, end, country)
	if err != nil {
		return nil, err
	}

	reply := &StatsRangeReply{
		Range: RangeInfo{From: req.FromDate, To: req.ToDate, Country: country.String()},
		ByOffer: lo.Map(byOffer, func(row domain.OfferCount, _ int) OfferClicks {
			return OfferClicks{OfferSlug: row.OfferSlug, Clicks: row.Clicks}
		}),
		Daily: lo.Map(daily, func(row domain.DayCount, _ int) DayClicks {
			return DayClicks{Date: row.Day.Format(dateLayout), Clicks: row.Clicks}
		}),
	}
	// Empty ranges serialize as [] rather than null.
	if reply.ByOffer == nil {
		reply.ByOffer = []OfferClicks{}
	}
	if reply.Daily == nil {
		reply.Daily = []DayClicks{}
	}
	return reply, nil
}

// Plot renders the aggregations as a PNG: the by-offer panel truncated to
// top-N with an "other" tail, the daily panel zero-filled over the full
// requested range.
func (s *StatsService) Plot(ctx context.Context, req *StatsPlotRequest) ([]byte, error) {
	start, end, country, err := biz.ParseRange(req.FromDate, req.ToDate, req.Country)
	if err != nil {
		return nil, err
	}

	top := req.Top
	if top <= 0 {
		top = DefaultTop
	}

	byOffer, daily, err := s.stats.Summary(ctx, start, end, country)
	if err != nil {
		return nil, err
	}

	return render.Plot(render.Input{
		From:    req.FromDate,
		To:      req.ToDate,
		Country: country.String(),
		Offers:  biz.TopOffers(byOffer, top),
		Daily:   biz.FillDays(daily, start, end),
	})
}
