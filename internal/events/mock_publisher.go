package events

import (
	"context"
	"log/slog"
	"sync"
)

// MockEventPublisher records published events for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	logger *slog.Logger

	AllocationEvents []AllocationCreatedEvent
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) PublishAllocationCreated(_ context.Context, event AllocationCreatedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AllocationEvents = append(m.AllocationEvents, event)
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }
