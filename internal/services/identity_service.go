package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/campusgate/allocation-service/internal/models"
	"github.com/campusgate/allocation-service/internal/repositories"
)

type identityService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewIdentityService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) IdentityService {
	return &identityService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// Resolve merges every enrollment row sharing the roll into one canonical
// identity. Attendance or submissions recorded against any of the rows are
// thereby counted for the same person.
func (s *identityService) Resolve(ctx context.Context, roll string) (*models.StudentIdentity, error) {
	records, err := s.repo.Student().GetByRoll(ctx, s.db, roll)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrStudentNotFound
	}

	return s.buildIdentity(roll, records), nil
}

// ResolveByInternalID resolves the full identity starting from any single
// enrollment-row id.
func (s *identityService) ResolveByInternalID(ctx context.Context, id uint) (*models.StudentIdentity, error) {
	record, err := s.repo.Student().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return s.Resolve(ctx, record.Roll)
}

func (s *identityService) buildIdentity(roll string, records []*models.Student) *models.StudentIdentity {
	// Rows arrive ordered by id; the first row's department/year win so the
	// pick is stable across requests.
	identity := &models.StudentIdentity{
		Roll:          roll,
		InternalIDs:   make([]uint, 0, len(records)),
		Department:    records[0].Department,
		Year:          records[0].Year,
		LoginDisabled: true,
		Records:       records,
	}

	for _, r := range records {
		identity.InternalIDs = append(identity.InternalIDs, r.ID)
		if !r.LoginDisabled {
			identity.LoginDisabled = false
		}
		if r.Department != identity.Department || r.Year != identity.Year {
			s.logger.Warn("Enrollment rows disagree on department/year",
				"roll", roll,
				"internal_id", r.ID,
				"department", r.Department,
				"year", r.Year,
				"chosen_department", identity.Department,
				"chosen_year", identity.Year)
		}
	}

	return identity
}
