package gradient

import (
	"fmt"
	"sort"
	"sync"

	errs "github.com/matzehuels/mandelscope/pkg/errors"
)

// Lookup resolves gradient names. Sessions depend on this interface rather
// than on Registry so callers can supply their own tables.
type Lookup interface {
	Lookup(name string) (Gradient, error)
}

// Registry is a name → Gradient table, safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]Gradient
	names []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]Gradient)}
}

// Register adds or replaces a gradient.
func (r *Registry) Register(name string, g Gradient) error {
	if err := errs.ValidateName(name); err != nil {
		return err
	}
	if g == nil {
		return errs.New(errs.ErrCodeInvalidInput, "gradient %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byKey[name]; !ok {
		r.names = append(r.names, name)
		sort.Strings(r.names)
	}
	r.byKey[name] = g
	return nil
}

// Lookup returns the gradient registered under name.
func (r *Registry) Lookup(name string) (Gradient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byKey[name]
	if !ok {
		return nil, errs.New(errs.ErrCodeUnknownGradient, "unknown gradient %q", name)
	}
	return g, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Next returns the name after name in sorted order, wrapping around.
// An unknown name yields the first name.
func (r *Registry) Next(name string) string { return r.step(name, 1) }

// Prev returns the name before name in sorted order, wrapping around.
// An unknown name yields the last name.
func (r *Registry) Prev(name string) string { return r.step(name, -1) }

func (r *Registry) step(name string, delta int) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.names)
	if n == 0 {
		return ""
	}
	i := sort.SearchStrings(r.names, name)
	if i == n || r.names[i] != name {
		if delta > 0 {
			return r.names[0]
		}
		return r.names[n-1]
	}
	return r.names[((i+delta)%n+n)%n]
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the shared registry of built-in presets.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
		for name, hexes := range presets {
			stops, err := FromHex(hexes...)
			if err != nil {
				panic(fmt.Sprintf("gradient: preset %s: %v", name, err))
			}
			_ = defaultReg.Register(name, stops)
		}
		_ = defaultReg.Register("sinebow", Func(Sinebow))
	})
	return defaultReg
}
