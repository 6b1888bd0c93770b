package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// Token is a mock implementation of the mqtt.Token interface
type Token struct {
	mock.Mock
}

// Error returns the error associated with the token
func (m *Token) Error() error {
	args := m.Called()
	return args.Error(0)
}

// Wait waits for the token to complete
func (m *Token) Wait() bool {
	args := m.Called()
	return args.Bool(0)
}

// Done channel returns the done channel for the token
func (m *Token) Done() <-chan struct{} {
	args := m.Called()
	return args.Get(0).(<-chan struct{})
}

// WaitTimeout waits for the token to complete or timeout
func (m *Token) WaitTimeout(timeout time.Duration) bool {
	args := m.Called(timeout)
	return args.Bool(0)
}

// NewCompletedToken returns a token that finished with err.
func NewCompletedToken(err error) *Token {
	done := make(chan struct{})
	close(done)

	token := new(Token)
	token.On("Done").Return((<-chan struct{})(done))
	token.On("Wait").Return(true)
	token.On("WaitTimeout", mock.Anything).Return(true)
	token.On("Error").Return(err)
	return token
}
