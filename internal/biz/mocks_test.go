package biz

import (
	"context"
	"sync"
	"time"

	"offer-redirect/internal/domain"
)

type mockOfferRepo struct {
	offers  map[string]*domain.Offer
	findErr error
}

func newMockOfferRepo() *mockOfferRepo {
	return &mockOfferRepo{offers: make(map[string]*domain.Offer)}
}

func (m *mockOfferRepo) FindBySlug(_ context.Context, slug string) (*domain.Offer, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.offers[slug], nil
}

type mockClickRepo struct {
	mu        sync.Mutex
	events    []*domain.ClickEvent
	insertErr error

	byOffer    []domain.OfferCount
	byDay      []domain.DayCount
	byOfferErr error
	byDayErr   error
}

func newMockClickRepo() *mockClickRepo {
	return &mockClickRepo{}
}

func (m *mockClickRepo) Insert(_ context.Context, ev *domain.ClickEvent) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *mockClickRepo) CountByOffer(_ context.Context, _, _ time.Time, _ domain.Country) ([]domain.OfferCount, error) {
	if m.byOfferErr != nil {
		return nil, m.byOfferErr
	}
	return m.byOffer, nil
}

func (m *mockClickRepo) CountByDay(_ context.Context, _, _ time.Time, _ domain.Country) ([]domain.DayCount, error) {
	if m.byDayErr != nil {
		return nil, m.byDayErr
	}
	return m.byDay, nil
}

type mockLinkRepo struct {
	mu      sync.Mutex
	links   map[string]*domain.ShortLink
	findErr error
	claimErr error

	// forceCollisions makes the next N Claim calls report a collision.
	forceCollisions int
	claimCalls      int
}

func newMockLinkRepo() *mockLinkRepo {
	return &mockLinkRepo{links: make(map[string]*domain.ShortLink)}
}

func (m *mockLinkRepo) Claim(_ context.Context, link *domain.ShortLink) (bool, error) {
	if m.claimErr != nil {
		return false, m.claimErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claimCalls++
	if m.forceCollisions > 0 {
		m.forceCollisions--
		return false, nil
	}
	if _, taken := m.links[link.ID]; taken {
		return false, nil
	}
	m.links[link.ID] = link
	return true, nil
}

func (m *mockLinkRepo) FindByID(_ context.Context, id string) (*domain.ShortLink, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.links[id], nil
}
