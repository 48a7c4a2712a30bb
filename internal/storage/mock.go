package storage

import (
	"context"
	"sync"

	"github.com/kotobamud/engine/pkg/state"
)

// MockStorage is an in-memory Storage for tests, with call counting
// and a switchable failure mode.
type MockStorage struct {
	mu      sync.Mutex
	players map[string]*state.Player

	SaveCalls int
	SaveErr   error
	LoadErr   error
}

var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		players: make(map[string]*state.Player),
	}
}

func (m *MockStorage) SavePlayer(ctx context.Context, p *state.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	cp := *p
	m.players[p.ID] = &cp
	return nil
}

func (m *MockStorage) LoadPlayer(ctx context.Context, id string) (*state.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	p, ok := m.players[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *MockStorage) LoadPlayerByName(ctx context.Context, name string) (*state.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	for _, p := range m.players {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockStorage) Ping(ctx context.Context) error { return nil }
func (m *MockStorage) Close() error                   { return nil }
