package mocks

import (
	"context"

	"github.com/benmeehan/status-monitor/internal/models"
	"github.com/stretchr/testify/mock"
)

// Publisher is a mock implementation of the services.Publisher interface
type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, req models.PingRequest) (*models.PingResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.PingResponse)
	return resp, args.Error(1)
}
