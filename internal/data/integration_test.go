package data

import (
	"context"
	"sync"
	"testing"
	"time"

	"offer-redirect/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"database/sql"

	_ "github.com/lib/pq"
)

// IntegrationTestSuite exercises the repositories against real postgres and
// redis via testcontainers.
type IntegrationTestSuite struct {
	suite.Suite
	ctx            context.Context
	pgContainer    *postgres.PostgresContainer
	redisContainer *tcredis.RedisContainer
	db             *sql.DB
	redisClient    *redis.Client
	data           *Data
	offers         domain.OfferRepository
	clicks         domain.ClickRepository
	links          domain.ShortLinkRepository
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	pgContainer, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(s.T(), err)
	s.pgContainer = pgContainer

	redisContainer, err := tcredis.Run(s.ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(s.T(), err)
	s.redisContainer = redisContainer

	pgConnStr, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	redisEndpoint, err := redisContainer.Endpoint(s.ctx, "")
	require.NoError(s.T(), err)

	s.db, err = sql.Open("postgres", pgConnStr)
	require.NoError(s.T(), err)
	require.NoError(s.T(), Migrate(s.ctx, s.db))

	s.redisClient = redis.NewClient(&redis.Options{Addr: redisEndpoint})

	s.data = &Data{db: s.db, rdb: s.redisClient}
	s.offers = NewOfferRepo(s.data, log.DefaultLogger)
	s.clicks = NewClickRepo(s.data, log.DefaultLogger)
	s.links = NewShortLinkRepo(s.data, log.DefaultLogger)
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.pgContainer != nil {
		s.pgContainer.Terminate(s.ctx)
	}
	if s.redisContainer != nil {
		s.redisContainer.Terminate(s.ctx)
	}
}

func (s *IntegrationTestSuite) TearDownTest() {
	for _, table := range []string{"clicks", "short_links", "offers"} {
		_, err := s.db.ExecContext(s.ctx, "DELETE FROM "+table)
		require.NoError(s.T(), err)
	}
	s.redisClient.FlushAll(s.ctx)
}

func (s *IntegrationTestSuite) seedOffer(slug, url string, active bool) {
	_, err := s.db.ExecContext(s.ctx,
		`INSERT INTO offers (slug, url, active) VALUES ($1, $2, $3)`, slug, url, active)
	require.NoError(s.T(), err)
}

func (s *IntegrationTestSuite) insertClick(slug string, country domain.Country, ts time.Time) {
	err := s.clicks.Insert(s.ctx, &domain.ClickEvent{
		OfferSlug: slug,
		Country:   country,
		TS:        ts,
	})
	require.NoError(s.T(), err)
}

func (s *IntegrationTestSuite) TestOfferRepo_FindBySlug() {
	s.seedOffer("boostra", "https://example.com/boostra", true)
	s.seedOffer("paused", "https://example.com/paused", false)

	offer, err := s.offers.FindBySlug(s.ctx, "boostra")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), offer)
	assert.Equal(s.T(), "https://example.com/boostra", offer.URL)
	assert.True(s.T(), offer.Active)

	offer, err = s.offers.FindBySlug(s.ctx, "paused")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), offer)
	assert.False(s.T(), offer.Active)

	offer, err = s.offers.FindBySlug(s.ctx, "missing")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), offer)
}

func (s *IntegrationTestSuite) TestOfferRepo_CacheServesAfterDelete() {
	s.seedOffer("boostra", "https://example.com/boostra", true)

	_, err := s.offers.FindBySlug(s.ctx, "boostra")
	require.NoError(s.T(), err)

	// The row is gone but the cache still has it: proves the read-through
	// path actually serves from redis.
	_, err = s.db.ExecContext(s.ctx, `DELETE FROM offers WHERE slug = 'boostra'`)
	require.NoError(s.T(), err)

	offer, err := s.offers.FindBySlug(s.ctx, "boostra")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), offer)
	assert.Equal(s.T(), "https://example.com/boostra", offer.URL)
}

func (s *IntegrationTestSuite) TestClickRepo_RangeBoundaries() {
	day := func(v string) time.Time {
		t, err := time.Parse(time.RFC3339, v)
		require.NoError(s.T(), err)
		return t
	}

	// Query window [2024-01-01, 2024-01-03) after the end-date adjustment.
	s.insertClick("boostra", domain.CountryRU, day("2023-12-31T23:59:59Z")) // excluded: 1s before start
	s.insertClick("boostra", domain.CountryRU, day("2024-01-01T00:00:00Z")) // included: exact start
	s.insertClick("boostra", domain.CountryRU, day("2024-01-02T00:00:00Z")) // included: end date midnight
	s.insertClick("boostra", domain.CountryRU, day("2024-01-03T00:00:00Z")) // excluded: exact end

	start := day("2024-01-01T00:00:00Z")
	end := day("2024-01-03T00:00:00Z")

	byOffer, err := s.clicks.CountByOffer(s.ctx, start, end, domain.CountryAll)
	require.NoError(s.T(), err)
	require.Len(s.T(), byOffer, 1)
	assert.Equal(s.T(), int64(2), byOffer[0].Clicks)

	daily, err := s.clicks.CountByDay(s.ctx, start, end, domain.CountryAll)
	require.NoError(s.T(), err)
	require.Len(s.T(), daily, 2)
	assert.Equal(s.T(), int64(1), daily[0].Clicks)
	assert.Equal(s.T(), int64(1), daily[1].Clicks)
	assert.True(s.T(), daily[0].Day.Before(daily[1].Day))
}

func (s *IntegrationTestSuite) TestClickRepo_OrderingAndTieBreak() {
	ts := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.insertClick("bravo", domain.CountryRU, ts)
	}
	for i := 0; i < 9; i++ {
		s.insertClick("alpha", domain.CountryRU, ts)
	}
	for i := 0; i < 2; i++ {
		s.insertClick("charlie", domain.CountryRU, ts)
	}
	// Tie with bravo; slug order decides.
	for i := 0; i < 5; i++ {
		s.insertClick("anchor", domain.CountryRU, ts)
	}

	rows, err := s.clicks.CountByOffer(s.ctx, ts.AddDate(0, 0, -1), ts.AddDate(0, 0, 1), domain.CountryAll)
	require.NoError(s.T(), err)
	require.Len(s.T(), rows, 4)
	assert.Equal(s.T(), "alpha", rows[0].OfferSlug)
	assert.Equal(s.T(), "anchor", rows[1].OfferSlug)
	assert.Equal(s.T(), "bravo", rows[2].OfferSlug)
	assert.Equal(s.T(), "charlie", rows[3].OfferSlug)
}

func (s *IntegrationTestSuite) TestClickRepo_CountryFilter() {
	ts := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	s.insertClick("boostra", domain.CountryRU, ts)
	s.insertClick("boostra", domain.CountryRU, ts)
	s.insertClick("boostra", domain.CountryKZ, ts)

	start, end := ts.AddDate(0, 0, -1), ts.AddDate(0, 0, 1)

	all, err := s.clicks.CountByOffer(s.ctx, start, end, domain.CountryAll)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 1)
	assert.Equal(s.T(), int64(3), all[0].Clicks)

	kz, err := s.clicks.CountByOffer(s.ctx, start, end, domain.CountryKZ)
	require.NoError(s.T(), err)
	require.Len(s.T(), kz, 1)
	assert.Equal(s.T(), int64(1), kz[0].Clicks)
}

func (s *IntegrationTestSuite) TestShortLinkRepo_ClaimAndFind() {
	link := &domain.ShortLink{
		ID:          "00abCD12",
		OfferSlug:   "boostra",
		Country:     domain.CountryRU,
		Fingerprint: "fp-1",
	}

	claimed, err := s.links.Claim(s.ctx, link)
	require.NoError(s.T(), err)
	assert.True(s.T(), claimed)

	// Same id again: the claim must lose without erroring.
	dup := &domain.ShortLink{ID: "00abCD12", OfferSlug: "other", Country: domain.CountryKZ}
	claimed, err = s.links.Claim(s.ctx, dup)
	require.NoError(s.T(), err)
	assert.False(s.T(), claimed)

	found, err := s.links.FindByID(s.ctx, "00abCD12")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), found)
	assert.Equal(s.T(), "boostra", found.OfferSlug)
	assert.Equal(s.T(), domain.CountryRU, found.Country)
	assert.Equal(s.T(), "fp-1", found.Fingerprint)

	missing, err := s.links.FindByID(s.ctx, "zzzzzzzz")
	require.NoError(s.T(), err)
	assert.Nil(s.T(), missing)
}

func (s *IntegrationTestSuite) TestShortLinkRepo_ConcurrentClaimSameID() {
	const n = 16
	var wg sync.WaitGroup
	wins := make(chan bool, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			link := &domain.ShortLink{ID: "race0000", OfferSlug: "boostra", Country: domain.CountryRU}
			claimed, err := s.links.Claim(s.ctx, link)
			if assert.NoError(s.T(), err) && claimed {
				wins <- true
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(s.T(), 1, count, "exactly one concurrent claim must win")
}

func TestIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(IntegrationTestSuite))
}
