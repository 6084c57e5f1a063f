package helpline

import (
	"context"
	"sync"

	"github.com/couchcryptid/flood-nova/internal/domain"
)

// MemoryStore keeps help requests in process memory. It is used when no
// database is configured and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[int64]domain.HelpRequest
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[int64]domain.HelpRequest)}
}

func (m *MemoryStore) Save(_ context.Context, req domain.HelpRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.Geo != nil {
		geo := *req.Geo
		req.Geo = &geo
	}
	m.requests[req.ID] = req
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (domain.HelpRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return domain.HelpRequest{}, ErrNotFound
	}
	return req, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored requests.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}
