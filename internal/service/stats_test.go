package service

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"offer-redirect/internal/biz"
	"offer-redirect/internal/domain"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatsService(clicks *fakeClickRepo) *StatsService {
	logger := log.DefaultLogger
	return NewStatsService(biz.NewStatsUsecase(clicks, logger), logger)
}

func TestStatsService_Range(t *testing.T) {
	clicks := &fakeClickRepo{
		byOffer: []domain.OfferCount{
			{OfferSlug: "boostra", Clicks: 7},
			{OfferSlug: "vivus", Clicks: 3},
		},
		byDay: []domain.DayCount{
			{Day: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Clicks: 10},
		},
	}
	svc := newStatsService(clicks)

	reply, err := svc.Range(context.Background(), &StatsRangeRequest{
		FromDate: "2026-08-01",
		ToDate:   "2026-08-03",
		Country:  "RU",
	})
	require.NoError(t, err)

	assert.Equal(t, RangeInfo{From: "2026-08-01", To: "2026-08-03", Country: "RU"}, reply.Range)
	assert.Equal(t, []OfferClicks{
		{OfferSlug: "boostra", Clicks: 7},
		{OfferSlug: "vivus", Clicks: 3},
	}, reply.ByOffer)
	assert.Equal(t, []DayClicks{{Date: "2026-08-01", Clicks: 10}}, reply.Daily)
}

func TestStatsService_Range_Empty(t *testing.T) {
	svc := newStatsService(&fakeClickRepo{})

	reply, err := svc.Range(context.Background(), &StatsRangeRequest{
		FromDate: "2026-08-01",
		ToDate:   "2026-08-01",
	})
	require.NoError(t, err)

	assert.NotNil(t, reply.ByOffer)
	assert.NotNil(t, reply.Daily)
	assert.Empty(t, reply.ByOffer)
	assert.Empty(t, reply.Daily)
	assert.Empty(t, reply.Range.Country)
}

func TestStatsService_Range_InvalidInput(t *testing.T) {
	svc := newStatsService(&fakeClickRepo{})

	tests := []struct {
		name       string
		req        *StatsRangeRequest
		wantReason string
	}{
		{
			name:       "bad from date",
			req:        &StatsRangeRequest{FromDate: "08/01/2026", ToDate: "2026-08-02"},
			wantReason: biz.ReasonInvalidRange,
		},
		{
			name:       "inverted range",
			req:        &StatsRangeRequest{FromDate: "2026-08-05", ToDate: "2026-08-01"},
			wantReason: biz.ReasonInvalidRange,
		},
		{
			name:       "unknown country",
			req:        &StatsRangeRequest{FromDate: "2026-08-01", ToDate: "2026-08-02", Country: "US"},
			wantReason: biz.ReasonInvalidCountry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Range(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantReason, kerrors.Reason(err))
		})
	}
}

func TestStatsService_Plot(t *testing.T) {
	clicks := &fakeClickRepo{
		byOffer: []domain.OfferCount{{OfferSlug: "boostra", Clicks: 5}},
		byDay: []domain.DayCount{
			{Day: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Clicks: 2},
			{Day: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), Clicks: 3},
		},
	}
	svc := newStatsService(clicks)

	data, err := svc.Plot(context.Background(), &StatsPlotRequest{
		StatsRangeRequest: StatsRangeRequest{FromDate: "2026-08-01", ToDate: "2026-08-02"},
	})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
}

func TestStatsService_Plot_InvalidRange(t *testing.T) {
	svc := newStatsService(&fakeClickRepo{})

	_, err := svc.Plot(context.Background(), &StatsPlotRequest{
		StatsRangeRequest: StatsRangeRequest{FromDate: "2026-08-05", ToDate: "2026-08-01"},
	})
	require.Error(t, err)
	assert.Equal(t, biz.ReasonInvalidRange, kerrors.Reason(err))
}
