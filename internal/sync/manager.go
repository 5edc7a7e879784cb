package sync

import (
	"context"
	gosync "sync"

	"dreamportal/internal/gateway"
	"dreamportal/internal/logger"
)

// Manager owns one Core per authenticated owner. Sessions start lazily on
// first acquire and live until the owner logs out, the account is deleted,
// or the server shuts down.
type Manager struct {
	gw gateway.Gateway

	mu    gosync.Mutex
	cores map[string]*Core
}

// NewManager builds a session registry over the given gateway.
func NewManager(gw gateway.Gateway) *Manager {
	return &Manager{
		gw:    gw,
		cores: make(map[string]*Core),
	}
}

// Acquire returns the owner's session, starting one if none exists. A
// session stuck in the error state is restarted, which is the retry path
// after a failed initial load. The error return is the start failure; the
// core is still returned so its state can be inspected.
func (m *Manager) Acquire(ctx context.Context, ownerID, email string) (*Core, error) {
	m.mu.Lock()
	core, ok := m.cores[ownerID]
	if !ok {
		core = NewCore(m.gw, ownerID, email)
		m.cores[ownerID] = core
	}
	m.mu.Unlock()

	if core.State() == StateReady {
		return core, nil
	}
	if err := core.Start(ctx); err != nil {
		return core, err
	}
	return core, nil
}

// Peek returns the owner's session without starting one.
func (m *Manager) Peek(ownerID string) (*Core, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	core, ok := m.cores[ownerID]
	return core, ok
}

// Release closes and drops the owner's session. Unknown owners are a no-op.
func (m *Manager) Release(ownerID string) {
	m.mu.Lock()
	core, ok := m.cores[ownerID]
	delete(m.cores, ownerID)
	m.mu.Unlock()
	if ok {
		core.Close()
	}
}

// Shutdown closes every session. Called once on server exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	cores := m.cores
	m.cores = make(map[string]*Core)
	m.mu.Unlock()

	for _, core := range cores {
		core.Close()
	}
	logger.Get().Infow("all sync sessions closed", "count", len(cores))
}
