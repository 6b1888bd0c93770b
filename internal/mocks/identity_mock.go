package mocks

import "github.com/stretchr/testify/mock"

// SystemInfo is a mock implementation of the identity.SystemInfoInterface
type SystemInfo struct {
	mock.Mock
}

func (m *SystemInfo) LoadSystemInfo() error {
	args := m.Called()
	return args.Error(0)
}

func (m *SystemInfo) GetSystemID() string {
	args := m.Called()
	return args.String(0)
}

func (m *SystemInfo) GetSystemName() string {
	args := m.Called()
	return args.String(0)
}

func (m *SystemInfo) GetSystemType() string {
	args := m.Called()
	return args.String(0)
}
