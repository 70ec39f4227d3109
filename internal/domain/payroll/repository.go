package payroll

import (
	"context"
	"time"
)

// ConceptRepository - salary concepts and their contract assignments
type ConceptRepository interface {
	Create(ctx context.Context, concept SalaryConcept) (SalaryConcept, error)
	GetByID(ctx context.Context, id string) (SalaryConcept, error)
	List(ctx context.Context, activeOnly bool) ([]SalaryConcept, error)
	Update(ctx context.Context, concept SalaryConcept) error

	// ListByContract returns every concept assigned to the contract, active or not.
	ListByContract(ctx context.Context, contractID string) ([]SalaryConcept, error)
	Assign(ctx context.Context, contractID, conceptID string) error
	Unassign(ctx context.Context, contractID, conceptID string) error
}

// BreakdownRepository - persisted payroll results
type BreakdownRepository interface {
	// Create inserts the breakdown with all its line items.
	Create(ctx context.Context, b Breakdown) (Breakdown, error)
	Exists(ctx context.Context, contractID string, period Period) (bool, error)
	// LiquidatedContractIDs returns the contracts that already have a breakdown for period.
	LiquidatedContractIDs(ctx context.Context, period Period) (map[string]bool, error)
	GetByID(ctx context.Context, id string) (Breakdown, error)
	List(ctx context.Context, filter BreakdownFilter) ([]Breakdown, error)
	UpdateStatus(ctx context.Context, id string, status BreakdownStatus, paidAt *time.Time) error
}
