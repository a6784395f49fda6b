package services

import (
	"context"
	"errors"
	"testing"

	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/validator"
)

func newAssignmentFixture() (*fakeRepository, AssignmentService) {
	repo := newFakeRepository()
	service := NewAssignmentService(repo, nil, testLogger(), validator.New())
	return repo, service
}

func TestAssignmentService_Create(t *testing.T) {
	ctx := context.Background()
	_, service := newAssignmentFixture()

	t.Run("WithQuestions", func(t *testing.T) {
		req := &CreateAssignmentRequest{
			Title:         "DSA Weekly 4",
			Type:          models.AssignmentRandomized,
			CourseCode:    "CS301",
			QuestionCount: 3,
			Questions: []CreateQuestionRequest{
				{Text: "Define AVL rotation", Topic: "trees", Marks: 10},
				{Text: "BFS vs DFS", Topic: "graphs", Marks: 10},
			},
		}

		resp, err := service.Create(ctx, req, "faculty-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if resp.ID == 0 {
			t.Error("Expected an assigned id")
		}
		if !resp.CanEdit || !resp.CanDelete {
			t.Error("Creator should be allowed to edit and delete")
		}

		got, err := service.GetByID(ctx, resp.ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if len(got.Questions) != 2 {
			t.Errorf("Expected 2 questions, got %d", len(got.Questions))
		}
	})

	t.Run("RejectsInvalidBrackets", func(t *testing.T) {
		req := &CreateAssignmentRequest{
			Title:      "Broken",
			Type:       models.AssignmentBatchAttendance,
			CourseCode: "CS301",
			Rules: []models.BracketRule{
				{Min: 80, Max: 60, Count: 5},
			},
		}
		if _, err := service.Create(ctx, req, "faculty-1"); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("Expected ErrValidationFailed, got %v", err)
		}
	})

	t.Run("RejectsMissingTitle", func(t *testing.T) {
		req := &CreateAssignmentRequest{
			Type:       models.AssignmentManual,
			CourseCode: "CS301",
		}
		if _, err := service.Create(ctx, req, "faculty-1"); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("Expected ErrValidationFailed, got %v", err)
		}
	})
}

func TestAssignmentService_OwnershipChecks(t *testing.T) {
	ctx := context.Background()
	repo, service := newAssignmentFixture()
	assignment := repo.addAssignment(&models.Assignment{
		Title:      "DSA Weekly 4",
		Type:       models.AssignmentManual,
		CourseCode: "CS301",
		CreatedBy:  "faculty-1",
	})

	title := "Renamed"
	if _, err := service.Update(ctx, assignment.ID, &UpdateAssignmentRequest{Title: &title}, "faculty-2"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for a non-owner update, got %v", err)
	}
	if err := service.Delete(ctx, assignment.ID, "faculty-2"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for a non-owner delete, got %v", err)
	}

	resp, err := service.Update(ctx, assignment.ID, &UpdateAssignmentRequest{Title: &title}, "faculty-1")
	if err != nil {
		t.Fatalf("Owner update failed: %v", err)
	}
	if resp.Title != "Renamed" {
		t.Errorf("Expected updated title, got %q", resp.Title)
	}

	if err := service.Delete(ctx, assignment.ID, "faculty-1"); err != nil {
		t.Fatalf("Owner delete failed: %v", err)
	}
	if _, err := service.GetByID(ctx, assignment.ID); !errors.Is(err, ErrAssignmentNotFound) {
		t.Errorf("Expected ErrAssignmentNotFound after delete, got %v", err)
	}
}

func TestAssignmentService_List(t *testing.T) {
	ctx := context.Background()
	repo, service := newAssignmentFixture()
	repo.addAssignment(&models.Assignment{Title: "A", Type: models.AssignmentManual, CourseCode: "CS301", CreatedBy: "f1"})
	repo.addAssignment(&models.Assignment{Title: "B", Type: models.AssignmentRandomized, CourseCode: "CS301", CreatedBy: "f1"})

	randomized := models.AssignmentRandomized
	resp, err := service.List(ctx, AssignmentFilters{Type: &randomized})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 1 || len(resp.Assignments) != 1 {
		t.Fatalf("Expected 1 randomized assignment, got %d", resp.Total)
	}
	if resp.Assignments[0].Title != "B" {
		t.Errorf("Expected B, got %s", resp.Assignments[0].Title)
	}
}
