// README: Pricing service computes fare estimates from the rate table.
package pricing

import (
	"context"
	"math"
	"strings"
	"sync"

	"gocab/internal/types"
)

type Service struct {
	store *Store

	mu    sync.RWMutex
	rates map[string]Rate
}

func NewService(store *Store) *Service {
	return &Service{store: store, rates: defaultRates}
}

// Reload swaps in rates from the database; on error the current table stays.
func (s *Service) Reload(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	loaded, err := s.store.LoadRates(ctx)
	if err != nil {
		return err
	}
	if len(loaded) == 0 {
		return nil
	}
	s.mu.Lock()
	s.rates = loaded
	s.mu.Unlock()
	return nil
}

func (s *Service) Estimate(_ context.Context, distanceKm float64, durationMin int, vehicleType string) (types.Money, error) {
	s.mu.RLock()
	rate, ok := s.rates[strings.ToLower(vehicleType)]
	s.mu.RUnlock()
	if !ok {
		rate = defaultRates["auto"]
	}

	amount := rate.BaseFare +
		int64(math.Round(distanceKm*float64(rate.PerKm))) +
		int64(durationMin)*rate.PerMin
	return types.Money{Amount: amount, Currency: rate.Currency}, nil
}
