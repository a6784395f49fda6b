package services

import (
	"context"
	"testing"

	"github.com/campusgate/allocation-service/internal/events"
	"github.com/campusgate/allocation-service/internal/validator"
)

func TestServiceManager_Lifecycle(t *testing.T) {
	logger := testLogger()
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(logger)

	manager := NewDefaultServiceManager(nil, repo, logger, validator.New(), publisher)
	ctx := context.Background()

	if err := manager.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	// Idempotent.
	if err := manager.Initialize(ctx); err != nil {
		t.Fatalf("Second Initialize failed: %v", err)
	}

	if manager.Identity() == nil || manager.Ledger() == nil || manager.Attendance() == nil ||
		manager.Eligibility() == nil || manager.Allocation() == nil || manager.Assignment() == nil ||
		manager.Threshold() == nil || manager.Report() == nil {
		t.Fatal("Expected every service to be wired after Initialize")
	}

	if err := manager.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := manager.Shutdown(ctx); err != nil {
		t.Fatalf("Second Shutdown failed: %v", err)
	}
}

func TestServiceManager_PanicsBeforeInitialize(t *testing.T) {
	manager := NewDefaultServiceManager(nil, newFakeRepository(), testLogger(), validator.New(), events.NewMockEventPublisher(testLogger()))

	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic when using services before Initialize")
		}
	}()
	manager.Allocation()
}
