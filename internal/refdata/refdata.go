// Package refdata serves the slowly-changing reference lists (cashiers,
// stores) through a TTL cache so repeated dropdown loads don't hit the
// database every time.
package refdata

import (
	"time"

	"cajabooks/internal/cache"
	"cajabooks/internal/database"
	"cajabooks/internal/models"
)

const (
	cashiersKey  = "refdata:cashiers"
	storesKey    = "refdata:stores"
	storeRefsKey = "refdata:stores:refs"
)

// Service wraps the database's reference-data reads with a cache. The
// cache handle is owned here and passed in by the caller; there is no
// package-level state.
type Service struct {
	db    *database.DB
	cache *cache.Cache
	ttl   time.Duration
}

func New(db *database.DB, c *cache.Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{db: db, cache: c, ttl: ttl}
}

// CashierNames returns the cashier display names, ordered, from cache
// when fresh.
func (s *Service) CashierNames() ([]string, error) {
	if names, ok := cache.Get[[]string](s.cache, cashiersKey); ok {
		return names, nil
	}

	cashiers, err := s.db.ListCashiers()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cashiers))
	for _, c := range cashiers {
		names = append(names, c.Name)
	}

	s.cache.Set(cashiersKey, names, s.ttl)
	return names, nil
}

// StoreNames returns the store display names, ordered, from cache when
// fresh.
func (s *Service) StoreNames() ([]string, error) {
	if names, ok := cache.Get[[]string](s.cache, storesKey); ok {
		return names, nil
	}

	stores, err := s.db.ListStores()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(stores))
	for _, st := range stores {
		names = append(names, st.Name)
	}

	s.cache.Set(storesKey, names, s.ttl)
	return names, nil
}

// StoreRefs returns the id/name pairs the import matcher runs against.
func (s *Service) StoreRefs() ([]models.StoreRef, error) {
	if refs, ok := cache.Get[[]models.StoreRef](s.cache, storeRefsKey); ok {
		return refs, nil
	}

	refs, err := s.db.ListStoreRefs()
	if err != nil {
		return nil, err
	}

	s.cache.Set(storeRefsKey, refs, s.ttl)
	return refs, nil
}

// InvalidateCashiers drops the cached cashier list after a write.
func (s *Service) InvalidateCashiers() {
	s.cache.Invalidate(cashiersKey)
}

// InvalidateStores drops every cached store view after a write.
func (s *Service) InvalidateStores() {
	s.cache.InvalidatePattern("refdata:stores")
}
