// Package config holds the client configuration store.
//
// Settings live in a tree of nested maps addressed by dotted paths
// ("retry.max_attempts"). The store starts from [Defaults], is validated
// against a fixed schema, and can be layered from partial maps, environment
// variables, .env files and TOML/YAML/JSON files:
//
//	store, err := config.New(map[string]any{"base_uri": "https://trends.example.com/api"})
//	if err != nil {
//	    return err
//	}
//	if err := store.LoadFromEnvironment(config.EnvPrefix); err != nil {
//	    return err
//	}
//	attempts := store.Int("retry.max_attempts", 3)
//
// Every successful mutation bumps [Store.Revision], which clients use to
// rebuild their transport before the next call.
package config

import (
	"strings"
	"sync"

	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
)

// Store is a validated tree of configuration values.
//
// Reads are safe for concurrent use. Mutations are serialized, but callers
// must not mutate a store while requests built from it are in flight.
type Store struct {
	mu       sync.RWMutex
	values   map[string]any
	revision uint64
}

// New creates a store from [Defaults] deep-merged with overrides and
// validates the result. overrides may be nil.
func New(overrides map[string]any) (*Store, error) {
	values := Defaults()
	if overrides != nil {
		merge(values, expandDotted(normalize(overrides).(map[string]any)))
	}
	if err := validate(values); err != nil {
		return nil, err
	}
	return &Store{values: values}, nil
}

// Default returns a store holding only the built-in defaults.
func Default() *Store {
	return &Store{values: Defaults()}
}

// Get returns the value at the dotted path key, or def when any segment is
// missing. Maps and lists are returned as copies.
func (s *Store) Get(key string, def any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := lookup(s.values, key)
	if !ok {
		return def
	}
	return deepCopy(v)
}

// Has reports whether a value exists at the dotted path key.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := lookup(s.values, key)
	return ok
}

// Set assigns value at the dotted path key, creating intermediate maps.
// When the schema constrains key, or keys below it, the value is checked
// first and the store is left untouched on failure.
func (s *Store) Set(key string, value any) error {
	value = normalize(value)
	if err := checkSubtree(key, value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	assign(s.values, strings.Split(key, "."), value)
	s.revision++
	return nil
}

// Load deep-merges partial into the store and re-validates the whole tree.
// Nested maps merge key by key; scalars and lists replace wholesale. Dotted
// keys in partial are expanded into nested maps. The merge is applied only
// when validation passes.
func (s *Store) Load(partial map[string]any) error {
	if len(partial) == 0 {
		return nil
	}
	incoming := expandDotted(normalize(partial).(map[string]any))

	s.mu.Lock()
	defer s.mu.Unlock()
	merged := deepCopy(s.values).(map[string]any)
	merge(merged, incoming)
	if err := validate(merged); err != nil {
		return err
	}
	s.values = merged
	s.revision++
	return nil
}

// Validate checks the whole tree: required keys first, then every rule in
// schema order. It returns the first violation.
func (s *Store) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return validate(s.values)
}

// All returns a deep copy of the configuration tree.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deepCopy(s.values).(map[string]any)
}

// Revision is incremented on every successful Set or Load.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// =============================================================================
// Tree helpers
// =============================================================================

func validate(values map[string]any) error {
	for _, r := range schema {
		if !r.Required {
			continue
		}
		if v, ok := lookup(values, r.Key); !ok || v == nil {
			return gterrors.NewConfiguration(r.Key, nil, "Required configuration value",
				"Missing required configuration key: %s", r.Key)
		}
	}
	for _, r := range schema {
		v, ok := lookup(values, r.Key)
		if !ok || v == nil {
			continue
		}
		if err := r.Check(v); err != nil {
			return err
		}
	}
	return nil
}

// checkSubtree checks value against the rule for key and, when value is a
// map, against every rule nested below key.
func checkSubtree(key string, value any) error {
	if r, ok := ruleFor(key); ok {
		if err := r.Check(value); err != nil {
			return err
		}
	}
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	prefix := key + "."
	for _, r := range schema {
		rest, found := strings.CutPrefix(r.Key, prefix)
		if !found {
			continue
		}
		if v, ok := lookup(m, rest); ok && v != nil {
			if err := r.Check(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func lookup(values map[string]any, key string) (any, bool) {
	var cur any = values
	for _, seg := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func assign(values map[string]any, path []string, value any) {
	cur := values
	for _, seg := range path[:len(path)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[seg] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = value
}

// merge copies src into dst. Maps on both sides merge recursively; any
// other value in src replaces the one in dst.
func merge(dst, src map[string]any) {
	for k, v := range src {
		sm, srcIsMap := v.(map[string]any)
		dm, dstIsMap := dst[k].(map[string]any)
		if srcIsMap && dstIsMap {
			merge(dm, sm)
			continue
		}
		dst[k] = deepCopy(v)
	}
}

// expandDotted turns {"retry.delay": 500} into {"retry": {"delay": 500}}.
func expandDotted(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			v = expandDotted(sub)
		}
		if !strings.Contains(k, ".") {
			if existing, ok := out[k].(map[string]any); ok {
				if sub, ok := v.(map[string]any); ok {
					merge(existing, sub)
					continue
				}
			}
			out[k] = v
			continue
		}
		nested := map[string]any{}
		assign(nested, strings.Split(k, "."), v)
		merge(out, nested)
	}
	return out
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	}
	return v
}
