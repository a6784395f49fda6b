package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/campusgate/allocation-service/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestIdentityService_Resolve(t *testing.T) {
	repo := newFakeRepository()
	repo.students = []*models.Student{
		{ID: 2, Roll: "21CS042", Name: "Asha Rao", Department: "CSE", Year: 3, CourseCode: "MA201"},
		{ID: 1, Roll: "21CS042", Name: "Asha Rao", Department: "CSE", Year: 3, CourseCode: "CS301"},
		{ID: 3, Roll: "21EC007", Name: "Vikram Shah", Department: "ECE", Year: 2, CourseCode: "EC210"},
	}
	service := NewIdentityService(repo, nil, testLogger())
	ctx := context.Background()

	t.Run("MergesEnrollmentRows", func(t *testing.T) {
		identity, err := service.Resolve(ctx, "21CS042")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if identity.Roll != "21CS042" {
			t.Errorf("Expected roll 21CS042, got %s", identity.Roll)
		}
		// Rows are ordered by id, so ids come back ascending.
		if len(identity.InternalIDs) != 2 || identity.InternalIDs[0] != 1 || identity.InternalIDs[1] != 2 {
			t.Errorf("Expected internal ids [1 2], got %v", identity.InternalIDs)
		}
		if identity.Department != "CSE" || identity.Year != 3 {
			t.Errorf("Expected CSE/3, got %s/%d", identity.Department, identity.Year)
		}
		if !identity.HasInternalID(1) || !identity.HasInternalID(2) || identity.HasInternalID(3) {
			t.Error("HasInternalID returned wrong membership")
		}
	})

	t.Run("UnknownRoll", func(t *testing.T) {
		_, err := service.Resolve(ctx, "99XX000")
		if !errors.Is(err, ErrStudentNotFound) {
			t.Fatalf("Expected ErrStudentNotFound, got %v", err)
		}
	})

	t.Run("StablePickWhenRowsDisagree", func(t *testing.T) {
		disagree := newFakeRepository()
		disagree.students = []*models.Student{
			{ID: 10, Roll: "21ME100", Department: "ME", Year: 2, CourseCode: "ME201"},
			{ID: 11, Roll: "21ME100", Department: "MECH", Year: 3, CourseCode: "ME305"},
		}
		svc := NewIdentityService(disagree, nil, testLogger())

		identity, err := svc.Resolve(ctx, "21ME100")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		// Lowest id wins so repeated requests agree.
		if identity.Department != "ME" || identity.Year != 2 {
			t.Errorf("Expected ME/2 from the first row, got %s/%d", identity.Department, identity.Year)
		}
	})
}

func TestIdentityService_ResolveByInternalID(t *testing.T) {
	repo := newFakeRepository()
	repo.students = []*models.Student{
		{ID: 1, Roll: "21CS042", Department: "CSE", Year: 3, CourseCode: "CS301"},
		{ID: 2, Roll: "21CS042", Department: "CSE", Year: 3, CourseCode: "MA201"},
	}
	service := NewIdentityService(repo, nil, testLogger())
	ctx := context.Background()

	identity, err := service.ResolveByInternalID(ctx, 2)
	if err != nil {
		t.Fatalf("ResolveByInternalID failed: %v", err)
	}
	if len(identity.InternalIDs) != 2 {
		t.Errorf("Expected both enrollment rows, got %v", identity.InternalIDs)
	}

	if _, err := service.ResolveByInternalID(ctx, 42); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("Expected ErrStudentNotFound, got %v", err)
	}
}
