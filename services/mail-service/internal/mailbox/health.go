package mailbox

import (
	"context"
	"sync"
	"time"

	"github.com/stoik/tempmail/internal/models"
	"github.com/stoik/tempmail/services/mail-service/internal/store"
)

// Health summarizes the service for the health endpoint.
type Health struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  store.Counts      `json:"database"`
	Providers []models.Provider `json:"providers"`
}

// ProviderStatus is the outcome of probing one provider.
type ProviderStatus struct {
	Provider  models.Provider `json:"provider"`
	Available bool            `json:"available"`
	LatencyMs int64           `json:"latencyMs"`
	Error     string          `json:"error,omitempty"`
}

func (s *Service) Health(ctx context.Context) (Health, error) {
	counts, err := s.store.Counts(ctx)
	if err != nil {
		return Health{}, err
	}
	return Health{
		Status:    "healthy",
		Timestamp: s.now(),
		Database:  counts,
		Providers: s.registry.Providers(),
	}, nil
}

// ProbeProviders checks every registered provider concurrently.
// Results follow registration order.
func (s *Service) ProbeProviders(ctx context.Context) []ProviderStatus {
	providers := s.registry.Providers()
	results := make([]ProviderStatus, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		p := p
		adapter, _ := s.registry.Get(p)
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			start := time.Now()
			err := adapter.Probe(ctx)
			status := ProviderStatus{
				Provider:  adapter.Name(),
				Available: err == nil,
				LatencyMs: time.Since(start).Milliseconds(),
			}
			if err != nil {
				status.Error = err.Error()
				s.log.Warn().Err(err).Str("provider", p.String()).Msg("provider probe failed")
			}
			results[i] = status
		}(i)
	}
	wg.Wait()

	return results
}
