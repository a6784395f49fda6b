package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates every store the engine reads or writes.
type Repository interface {
	Student() StudentRepository
	Attendance() AttendanceRepository
	Assignment() AssignmentRepository
	StudentAssignment() StudentAssignmentRepository
	Threshold() ThresholdRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// IsNotFoundError reports whether err means the record does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a uniqueness violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
