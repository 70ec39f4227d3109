package request

import (
	"context"
	"time"
)

// RequestRepository persists requests together with their variant record.
type RequestRepository interface {
	Create(ctx context.Context, req Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	// ListByContract returns the contract's requests, optionally restricted to one variant.
	ListByContract(ctx context.Context, contractID string, variant *Variant) ([]Request, error)
	Update(ctx context.Context, req Request) error
	SetActive(ctx context.Context, id string, active bool) error
	// ListDueResignations returns active accepted resignations effective on or before asOf.
	ListDueResignations(ctx context.Context, asOf time.Time) ([]Request, error)
}
