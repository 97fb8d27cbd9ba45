package events

import (
	"sort"
	"sync"

	"github.com/odpi/egeria-sub150/pkg/api"
)

// ConnectorProvider builds a connector for a connection
type ConnectorProvider func(conn *api.Connection, deps Dependencies) (Connector, error)

// Registry maps provider names, as carried by a connection's connector
// type, to connector providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ConnectorProvider
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]ConnectorProvider)}
}

// DefaultRegistry returns a registry holding the built-in providers
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(SSEProviderName, NewSSEConnector)
	return r
}

// Register adds or replaces the provider for name
func (r *Registry) Register(name string, provider ConnectorProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
}

// Lookup returns the provider for name
func (r *Registry) Lookup(name string) (ConnectorProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered provider names in order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
