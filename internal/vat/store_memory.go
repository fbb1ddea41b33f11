package vat

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps VAT rates in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	rates map[string]Rate
}

// NewMemoryStore seeds a MemoryStore with the given rates.
func NewMemoryStore(rates ...Rate) *MemoryStore {
	s := &MemoryStore{rates: make(map[string]Rate, len(rates))}
	for _, r := range rates {
		s.rates[r.CountryCode] = r
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, countryCode string) (Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rate, ok := s.rates[countryCode]
	if !ok {
		return Rate{}, &NotFoundError{CountryCode: countryCode}
	}
	return rate, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Rate, error) {
	s.mu.RLock()
	out := make([]Rate, 0, len(s.rates))
	for _, r := range s.rates {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CountryCode < out[j].CountryCode })
	return out, nil
}

func (s *MemoryStore) Upsert(_ context.Context, rate Rate) error {
	if rate.Rate < 0 {
		return ErrInvalidRate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[rate.CountryCode] = rate
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, countryCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rates[countryCode]; !ok {
		return &NotFoundError{CountryCode: countryCode}
	}
	delete(s.rates, countryCode)
	return nil
}
