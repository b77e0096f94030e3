package tokenstore

import (
	"context"
	"sync"

	"github.com/Mutombe/silver-carbon/internal/models"
)

// Memory — хранилище в памяти процесса.
type Memory struct {
	mu   sync.RWMutex
	pair models.TokenPair
	ok   bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Get(_ context.Context) (models.TokenPair, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.pair, m.ok, nil
}

func (m *Memory) Set(_ context.Context, pair models.TokenPair) error {
	if !pair.Valid() {
		return ErrInvalidPair
	}

	m.mu.Lock()
	m.pair, m.ok = pair, true
	m.mu.Unlock()

	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.pair, m.ok = models.TokenPair{}, false
	m.mu.Unlock()

	return nil
}

func (m *Memory) Close() error { return nil }
