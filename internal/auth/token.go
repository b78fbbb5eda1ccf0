package auth

import (
	"context"
	"sync"
)

// TokenManager supplies the token attached to outgoing requests.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	SetToken(token string)
}

// StaticTokenManager holds a caller-supplied token that can be rotated.
type StaticTokenManager struct {
	mutex    sync.RWMutex
	token    string
	onChange func(token string)
}

// NewStaticTokenManager creates a manager for token. An empty token means unauthenticated.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken returns the current token, or "" when unauthenticated.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.token, nil
}

// SetToken rotates the token and notifies the registered listener.
func (m *StaticTokenManager) SetToken(token string) {
	m.mutex.Lock()
	m.token = token
	onChange := m.onChange
	m.mutex.Unlock()

	if onChange != nil {
		onChange(token)
	}
}

// OnChange registers fn to run after each rotation, replacing any earlier listener.
func (m *StaticTokenManager) OnChange(fn func(token string)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.onChange = fn
}
