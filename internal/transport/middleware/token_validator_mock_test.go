package middleware

import "sync"

// tokenValidatorMock is a mock implementation of tokenValidator.
type tokenValidatorMock struct {
	ValidateTokenFunc func(token string) (string, string, error)

	mu    sync.Mutex
	calls []string
}

func (m *tokenValidatorMock) ValidateToken(token string) (string, string, error) {
	if m.ValidateTokenFunc == nil {
		panic("tokenValidatorMock.ValidateTokenFunc: method is nil but tokenValidator.ValidateToken was just called")
	}
	m.mu.Lock()
	m.calls = append(m.calls, token)
	m.mu.Unlock()
	return m.ValidateTokenFunc(token)
}

func (m *tokenValidatorMock) ValidateTokenCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
