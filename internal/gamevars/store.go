// Package gamevars is a small key/value store for game variables, consumed
// by the admin command handler. It is unrelated to character state.
package gamevars

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"npcforge/pkg/logger"
)

// Variable is one stored game variable
type Variable struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store holds game variables in memory
type Store struct {
	mu     sync.RWMutex
	vars   map[string]Variable
	logger *zap.Logger
}

// NewStore creates an empty variable store
func NewStore() *Store {
	return &Store{
		vars:   make(map[string]Variable),
		logger: logger.Get(),
	}
}

// Set stores or replaces a variable
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	s.vars[key] = Variable{Key: key, Value: value, UpdatedAt: time.Now()}
	s.mu.Unlock()
	s.logger.Debug("Game variable set", zap.String("key", key))
}

// Get returns a variable's value and whether it exists
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[key]
	return v.Value, ok
}

// Delete removes a variable, reporting whether it existed
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vars[key]; !ok {
		return false
	}
	delete(s.vars, key)
	return true
}

// List returns all variables sorted by key
func (s *Store) List() []Variable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Variable, 0, len(s.vars))
	for _, v := range s.vars {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
