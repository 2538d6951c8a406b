// Package source defines the Source Adapter contract and the registry the
// orchestrator selects adapters from.
package source

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/screener/internal/model"
)

// Adapter fetches raw data for one company from one external provider.
// Fetch never returns an error: timeouts and transport failures come back
// as status=failed records so the pipeline can continue with partial data.
// Adapters hold no shared mutable state.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, id model.Identity) model.RawRecord
}

// Registry maps source names to adapters. Built once at startup from
// configuration; read-only afterwards.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under its name. Duplicate names are a
// configuration error.
func (r *Registry) Register(a Adapter) error {
	if _, exists := r.adapters[a.Name()]; exists {
		return eris.Errorf("source: adapter %q already registered", a.Name())
	}
	r.adapters[a.Name()] = a
	return nil
}

// Get returns the adapter for a name, or nil.
func (r *Registry) Get(name string) Adapter {
	return r.adapters[name]
}

// Names returns all registered source names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select resolves a requested subset of sources, or every registered
// adapter when the subset is empty. Unknown names are an error so a typo in
// a request fails loudly instead of silently dropping a source.
func (r *Registry) Select(names []string) ([]Adapter, error) {
	if len(names) == 0 {
		all := make([]Adapter, 0, len(r.adapters))
		for _, name := range r.Names() {
			all = append(all, r.adapters[name])
		}
		return all, nil
	}

	out := make([]Adapter, 0, len(names))
	for _, name := range names {
		a := r.adapters[name]
		if a == nil {
			return nil, eris.Errorf("source: unknown source %q", name)
		}
		out = append(out, a)
	}
	return out, nil
}

// okRecord assembles a successful RawRecord with latency accounting.
func okRecord(name string, start time.Time, status model.FetchStatus, payload map[string]any) model.RawRecord {
	return model.RawRecord{
		Source:    name,
		Status:    status,
		FetchedAt: time.Now().UTC(),
		Payload:   payload,
		LatencyMS: time.Since(start).Milliseconds(),
	}
}
