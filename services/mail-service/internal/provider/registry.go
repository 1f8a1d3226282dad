package provider

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/stoik/tempmail/internal/models"
)

// Registry maps provider identifiers to adapter instances.
// It is built once at startup and shared read-only.
type Registry struct {
	adapters map[models.Provider]Adapter
	order    []models.Provider
}

// NewRegistry registers adapters in the given order. A later adapter with the same name replaces an earlier one.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[models.Provider]Adapter, len(adapters))}
	for _, a := range adapters {
		if _, exists := r.adapters[a.Name()]; !exists {
			r.order = append(r.order, a.Name())
		}
		r.adapters[a.Name()] = a
	}
	return r
}

// Get returns the adapter for p.
func (r *Registry) Get(p models.Provider) (Adapter, bool) {
	a, ok := r.adapters[p]
	return a, ok
}

// Lookup resolves a provider by its wire name.
func (r *Registry) Lookup(name string) (Adapter, bool) {
	return r.Get(models.Provider(name))
}

// Providers returns the registered providers in registration order.
func (r *Registry) Providers() []models.Provider {
	return append([]models.Provider(nil), r.order...)
}

// NewRegistryFromConfig creates the adapters listed in provider.enabled
func NewRegistryFromConfig(gen *Generator) (*Registry, error) {
	base := Options{
		UserAgent:     viper.GetString("provider.user_agent"),
		Timeout:       viper.GetDuration("provider.timeout"),
		RetryAttempts: viper.GetInt("provider.retry.attempts"),
		RetryDelay:    viper.GetDuration("provider.retry.delay"),
		Generator:     gen,
	}

	enabled := viper.GetStringSlice("provider.enabled")
	if len(enabled) == 0 {
		enabled = []string{string(models.ProviderMailTM), string(models.ProviderGuerrilla)}
	}

	var adapters []Adapter
	for _, name := range enabled {
		p, err := models.ParseProvider(name)
		if err != nil {
			return nil, fmt.Errorf("provider.enabled: %w", err)
		}

		opts := base
		switch p {
		case models.ProviderMailTM:
			opts.BaseURL = viper.GetString("provider.mailtm.url")
			adapters = append(adapters, NewMailTM(opts))
		case models.ProviderGuerrilla:
			opts.BaseURL = viper.GetString("provider.guerrilla.url")
			adapters = append(adapters, NewGuerrilla(opts))
		}
	}

	return NewRegistry(adapters...), nil
}
