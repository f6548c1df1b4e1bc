package store

import (
	"github.com/google/uuid"

	"github.com/laresh1090/pennivault/internal/domain"
)

// Storage defines the persistence operations for the stateful product
// entities. Implementations must persist decimal amounts losslessly.
type Storage interface {
	CreateInstallmentPlan(plan *domain.InstallmentPlan) error
	GetInstallmentPlan(id uuid.UUID) (*domain.InstallmentPlan, error)
	UpdateInstallmentPlan(plan *domain.InstallmentPlan) error
	ListActiveInstallmentPlans() ([]*domain.InstallmentPlan, error)

	CreateLockPlan(plan *domain.LockPlan) error
	GetLockPlan(id uuid.UUID) (*domain.LockPlan, error)
	UpdateLockPlan(plan *domain.LockPlan) error
	ListActiveLockPlans() ([]*domain.LockPlan, error)

	CreateGroup(group *domain.RotatingGroup) error
	GetGroup(id uuid.UUID) (*domain.RotatingGroup, error)
	UpdateGroup(group *domain.RotatingGroup) error
	ListActiveGroups() ([]*domain.RotatingGroup, error)

	Close() error
}
