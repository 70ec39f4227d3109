package contract

import (
	"context"
	"time"
)

// ContractRepository exposes the slice of contract data the payroll and request
// workflows need. Contract CRUD lives with the employee administration.
type ContractRepository interface {
	GetByID(ctx context.Context, id string) (Contract, error)
	ListActiveBetween(ctx context.Context, from, to time.Time) ([]Contract, error)
	UpdateEndDate(ctx context.Context, id string, endDate time.Time, status Status) error
}
