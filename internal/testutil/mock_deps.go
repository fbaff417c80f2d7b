//go:build !production

package testutil

import "github.com/stretchr/testify/mock"

// MockServer 模拟 types.ServerState
type MockServer struct {
	mock.Mock
}

func (m *MockServer) IsMaintenanceMode() bool {
	return m.Called().Bool(0)
}

// MockChatLimiter 模拟 types.ChatLimiter
type MockChatLimiter struct {
	mock.Mock
}

func (m *MockChatLimiter) AllowChat(clientID string) (bool, string) {
	args := m.Called(clientID)
	return args.Bool(0), args.String(1)
}

func (m *MockChatLimiter) RemoveClient(clientID string) {
	m.Called(clientID)
}
