package services

import (
	"context"
	"sort"
	"sync"

	"gorm.io/gorm"

	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/repositories"
)

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	mu sync.Mutex

	students    []*models.Student
	attendance  []*models.AttendanceRecord
	assignments map[uint]*models.Assignment
	allocations []*models.StudentAssignment
	threshold   *models.ThresholdConfig

	nextAssignmentID uint
	nextQuestionID   uint
	nextAllocationID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		assignments:      make(map[uint]*models.Assignment),
		nextAssignmentID: 1,
		nextQuestionID:   1,
		nextAllocationID: 1,
	}
}

func (f *fakeRepository) addAssignment(a *models.Assignment) *models.Assignment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == 0 {
		a.ID = f.nextAssignmentID
		f.nextAssignmentID++
	}
	for i := range a.Questions {
		if a.Questions[i].ID == 0 {
			a.Questions[i].ID = f.nextQuestionID
			f.nextQuestionID++
		}
		a.Questions[i].AssignmentID = a.ID
	}
	f.assignments[a.ID] = a
	return a
}

func (f *fakeRepository) Student() repositories.StudentRepository { return &fakeStudentRepo{f} }
func (f *fakeRepository) Attendance() repositories.AttendanceRepository {
	return &fakeAttendanceRepo{f}
}
func (f *fakeRepository) Assignment() repositories.AssignmentRepository {
	return &fakeAssignmentRepo{f}
}
func (f *fakeRepository) StudentAssignment() repositories.StudentAssignmentRepository {
	return &fakeStudentAssignmentRepo{f}
}
func (f *fakeRepository) Threshold() repositories.ThresholdRepository {
	return &fakeThresholdRepo{f}
}

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}
func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// ===== students =====

type fakeStudentRepo struct{ f *fakeRepository }

func (r *fakeStudentRepo) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Student, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, s := range r.f.students {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) GetByRoll(_ context.Context, _ *gorm.DB, roll string) ([]*models.Student, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Student
	for _, s := range r.f.students {
		if s.Roll == roll {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeStudentRepo) List(_ context.Context, _ *gorm.DB, filters repositories.StudentFilters) ([]*models.Student, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Student
	for _, s := range r.f.students {
		if filters.Department != nil && s.Department != *filters.Department {
			continue
		}
		if filters.Year != nil && s.Year != *filters.Year {
			continue
		}
		if filters.CourseCode != nil && models.NormalizeCourseCode(s.CourseCode) != models.NormalizeCourseCode(*filters.CourseCode) {
			continue
		}
		out = append(out, s)
	}
	return out, int64(len(out)), nil
}

// ===== attendance =====

type fakeAttendanceRepo struct{ f *fakeRepository }

func (r *fakeAttendanceRepo) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.AttendanceRecord, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, rec := range r.f.attendance {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAttendanceRepo) List(_ context.Context, _ *gorm.DB, _ repositories.AttendanceFilters) ([]*models.AttendanceRecord, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	out := make([]*models.AttendanceRecord, len(r.f.attendance))
	copy(out, r.f.attendance)
	return out, nil
}

func (r *fakeAttendanceRepo) Create(_ context.Context, _ *gorm.DB, record *models.AttendanceRecord) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	record.ID = uint(len(r.f.attendance) + 1)
	r.f.attendance = append(r.f.attendance, record)
	return nil
}

// ===== assignments =====

type fakeAssignmentRepo struct{ f *fakeRepository }

func (r *fakeAssignmentRepo) Create(_ context.Context, _ *gorm.DB, assignment *models.Assignment) error {
	r.f.addAssignment(assignment)
	return nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, _ *gorm.DB, id uint) (*models.Assignment, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	a, ok := r.f.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (r *fakeAssignmentRepo) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) {
	return r.GetByID(ctx, tx, id)
}

func (r *fakeAssignmentRepo) Update(_ context.Context, _ *gorm.DB, assignment *models.Assignment) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.f.assignments[assignment.ID] = assignment
	return nil
}

func (r *fakeAssignmentRepo) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	delete(r.f.assignments, id)
	return nil
}

func (r *fakeAssignmentRepo) List(_ context.Context, _ *gorm.DB, filters repositories.AssignmentFilters) ([]*models.Assignment, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Assignment
	for _, a := range r.f.assignments {
		if filters.Type != nil && a.Type != *filters.Type {
			continue
		}
		if filters.Status != nil && a.Status != *filters.Status {
			continue
		}
		if filters.CourseCode != nil && a.CourseCode != *filters.CourseCode {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeAssignmentRepo) AddQuestions(_ context.Context, _ *gorm.DB, assignmentID uint, questions []*models.Question) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	a, ok := r.f.assignments[assignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, q := range questions {
		q.ID = r.f.nextQuestionID
		r.f.nextQuestionID++
		q.AssignmentID = assignmentID
		a.Questions = append(a.Questions, *q)
	}
	return nil
}

func (r *fakeAssignmentRepo) RemoveQuestion(_ context.Context, _ *gorm.DB, assignmentID, questionID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	a, ok := r.f.assignments[assignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i, q := range a.Questions {
		if q.ID == questionID {
			a.Questions = append(a.Questions[:i], a.Questions[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeAssignmentRepo) GetQuestionsByIDs(_ context.Context, _ *gorm.DB, ids []uint) ([]*models.Question, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	byID := make(map[uint]*models.Question)
	for _, a := range r.f.assignments {
		for i := range a.Questions {
			byID[a.Questions[i].ID] = &a.Questions[i]
		}
	}
	var out []*models.Question
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// ===== student assignments =====

type fakeStudentAssignmentRepo struct{ f *fakeRepository }

func (r *fakeStudentAssignmentRepo) CreateIfAbsent(_ context.Context, _ *gorm.DB, allocation *models.StudentAssignment) (*models.StudentAssignment, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, existing := range r.f.allocations {
		if existing.AssignmentID == allocation.AssignmentID && existing.StudentRoll == allocation.StudentRoll {
			return existing, nil
		}
	}
	allocation.ID = r.f.nextAllocationID
	r.f.nextAllocationID++
	r.f.allocations = append(r.f.allocations, allocation)
	return allocation, nil
}

func (r *fakeStudentAssignmentRepo) GetByAssignmentAndRoll(_ context.Context, _ *gorm.DB, assignmentID uint, roll string) (*models.StudentAssignment, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, a := range r.f.allocations {
		if a.AssignmentID == assignmentID && a.StudentRoll == roll {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentAssignmentRepo) GetByRoll(_ context.Context, _ *gorm.DB, roll string) ([]*models.StudentAssignment, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.StudentAssignment
	for _, a := range r.f.allocations {
		if a.StudentRoll == roll {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeStudentAssignmentRepo) UpdateStatus(_ context.Context, _ *gorm.DB, id uint, status models.StudentAssignmentStatus) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, a := range r.f.allocations {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ===== threshold =====

type fakeThresholdRepo struct{ f *fakeRepository }

func (r *fakeThresholdRepo) Get(_ context.Context, _ *gorm.DB) (*models.ThresholdConfig, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.threshold == nil {
		return &models.ThresholdConfig{DefaultRequirement: 75}, nil
	}
	return r.f.threshold, nil
}

func (r *fakeThresholdRepo) Save(_ context.Context, _ *gorm.DB, config *models.ThresholdConfig) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.threshold = config
	return nil
}
