package cache

import (
	"context"
	"sync"

	"github.com/istlgroup/crm-backend/internal/application/stats"
)

// InMemoryProjectLock implements stats.ProjectLock with a process-local
// map. Suitable for single-instance deployments and tests; it cannot
// serialize across processes.
type InMemoryProjectLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewInMemoryProjectLock creates an in-memory per-project lock
func NewInMemoryProjectLock() *InMemoryProjectLock {
	return &InMemoryProjectLock{held: make(map[string]struct{})}
}

// Acquire attempts to take the lock for one project. Returns false when
// another holder owns it.
func (l *InMemoryProjectLock) Acquire(_ context.Context, projectUID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, taken := l.held[projectUID]; taken {
		return false, nil
	}
	l.held[projectUID] = struct{}{}
	return true, nil
}

// Release frees the lock for one project
func (l *InMemoryProjectLock) Release(_ context.Context, projectUID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, projectUID)
	return nil
}

// Ensure InMemoryProjectLock implements stats.ProjectLock
var _ stats.ProjectLock = (*InMemoryProjectLock)(nil)
