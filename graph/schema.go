package graph

import (
	"errors"
	"fmt"
	"maps"
)

// ErrKeyConflict is returned by WriteOnceReducer when a key is written twice.
var ErrKeyConflict = errors.New("key already written")

// Reducer merges a node's value for one key into the current value.
type Reducer func(current, new any) (any, error)

// Schema defines the initial state and how node updates are merged into it.
type Schema[S any] interface {
	Init() S
	Update(current, new S) (S, error)
}

// MapSchema merges map[string]any states key by key. Keys without a
// registered reducer are overwritten.
type MapSchema struct {
	Reducers map[string]Reducer
}

var _ Schema[map[string]any] = (*MapSchema)(nil)

// NewMapSchema creates a MapSchema with no reducers.
func NewMapSchema() *MapSchema {
	return &MapSchema{Reducers: make(map[string]Reducer)}
}

// RegisterReducer sets the reducer for key.
func (s *MapSchema) RegisterReducer(key string, reducer Reducer) {
	s.Reducers[key] = reducer
}

func (s *MapSchema) Init() map[string]any {
	return make(map[string]any)
}

// Update returns a new map; current is never mutated.
func (s *MapSchema) Update(current, new map[string]any) (map[string]any, error) {
	result := make(map[string]any, len(current)+len(new))
	maps.Copy(result, current)

	for k, v := range new {
		reducer, ok := s.Reducers[k]
		if !ok {
			result[k] = v
			continue
		}
		merged, err := reducer(result[k], v)
		if err != nil {
			return nil, fmt.Errorf("failed to reduce key %s: %w", k, err)
		}
		result[k] = merged
	}

	return result, nil
}

// OverwriteReducer replaces the old value with the new one.
func OverwriteReducer(current, new any) (any, error) {
	return new, nil
}

// WriteOnceReducer accepts the first value for a key and rejects any later
// one. Parallel nodes that each own a key register it to catch collisions.
func WriteOnceReducer(current, new any) (any, error) {
	if current != nil {
		return nil, ErrKeyConflict
	}
	return new, nil
}
