package payroll

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/contract"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/payroll"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
)

type fakeTx struct{ calls int }

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeContractRepo struct {
	items []contract.Contract
}

func (f *fakeContractRepo) GetByID(ctx context.Context, id string) (contract.Contract, error) {
	for _, c := range f.items {
		if c.ID == id {
			return c, nil
		}
	}
	return contract.Contract{}, contract.ErrContractNotFound
}

func (f *fakeContractRepo) ListActiveBetween(ctx context.Context, from, to time.Time) ([]contract.Contract, error) {
	var out []contract.Contract
	for _, c := range f.items {
		if c.ActiveDuring(from, to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContractRepo) UpdateEndDate(ctx context.Context, id string, endDate time.Time, status contract.Status) error {
	return nil
}

type fakeRequestRepo struct {
	byContract map[string][]request.Request
}

func (f *fakeRequestRepo) Create(ctx context.Context, req request.Request) (request.Request, error) {
	f.byContract[req.ContractID] = append(f.byContract[req.ContractID], req)
	return req, nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (request.Request, error) {
	return request.Request{}, request.ErrRequestNotFound
}

func (f *fakeRequestRepo) ListByContract(ctx context.Context, contractID string, variant *request.Variant) ([]request.Request, error) {
	return slices.Clone(f.byContract[contractID]), nil
}

func (f *fakeRequestRepo) Update(ctx context.Context, req request.Request) error { return nil }

func (f *fakeRequestRepo) SetActive(ctx context.Context, id string, active bool) error { return nil }

func (f *fakeRequestRepo) ListDueResignations(ctx context.Context, asOf time.Time) ([]request.Request, error) {
	return nil, nil
}

type fakeConceptRepo struct {
	items       map[string]payroll.SalaryConcept
	assignments map[string][]string
	listErr     map[string]error
}

func newFakeConceptRepo() *fakeConceptRepo {
	return &fakeConceptRepo{
		items:       map[string]payroll.SalaryConcept{},
		assignments: map[string][]string{},
		listErr:     map[string]error{},
	}
}

func (f *fakeConceptRepo) Create(ctx context.Context, c payroll.SalaryConcept) (payroll.SalaryConcept, error) {
	c.ID = uuid.Must(uuid.NewV7()).String()
	f.items[c.ID] = c
	return c, nil
}

func (f *fakeConceptRepo) GetByID(ctx context.Context, id string) (payroll.SalaryConcept, error) {
	c, ok := f.items[id]
	if !ok {
		return payroll.SalaryConcept{}, payroll.ErrConceptNotFound
	}
	return c, nil
}

func (f *fakeConceptRepo) List(ctx context.Context, activeOnly bool) ([]payroll.SalaryConcept, error) {
	var out []payroll.SalaryConcept
	for _, c := range f.items {
		if !activeOnly || c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeConceptRepo) Update(ctx context.Context, c payroll.SalaryConcept) error {
	f.items[c.ID] = c
	return nil
}

func (f *fakeConceptRepo) ListByContract(ctx context.Context, contractID string) ([]payroll.SalaryConcept, error) {
	if err := f.listErr[contractID]; err != nil {
		return nil, err
	}
	var out []payroll.SalaryConcept
	for _, id := range f.assignments[contractID] {
		out = append(out, f.items[id])
	}
	return out, nil
}

func (f *fakeConceptRepo) Assign(ctx context.Context, contractID, conceptID string) error {
	if slices.Contains(f.assignments[contractID], conceptID) {
		return payroll.ErrConceptAlreadyAssigned
	}
	f.assignments[contractID] = append(f.assignments[contractID], conceptID)
	return nil
}

func (f *fakeConceptRepo) Unassign(ctx context.Context, contractID, conceptID string) error {
	ids := f.assignments[contractID]
	i := slices.Index(ids, conceptID)
	if i < 0 {
		return payroll.ErrConceptNotAssigned
	}
	f.assignments[contractID] = slices.Delete(ids, i, i+1)
	return nil
}

type fakeBreakdownRepo struct {
	items     []payroll.Breakdown
	createErr map[string]error // by contract
	// racer, when set, inserts a competing breakdown right before Exists runs.
	racer func(contractID string, period payroll.Period)
}

func newFakeBreakdownRepo() *fakeBreakdownRepo {
	return &fakeBreakdownRepo{createErr: map[string]error{}}
}

func (f *fakeBreakdownRepo) Create(ctx context.Context, b payroll.Breakdown) (payroll.Breakdown, error) {
	if err := f.createErr[b.ContractID]; err != nil {
		return payroll.Breakdown{}, err
	}
	b.ID = uuid.Must(uuid.NewV7()).String()
	f.items = append(f.items, b)
	return b, nil
}

func (f *fakeBreakdownRepo) Exists(ctx context.Context, contractID string, period payroll.Period) (bool, error) {
	if f.racer != nil {
		f.racer(contractID, period)
	}
	for _, b := range f.items {
		if b.ContractID == contractID && b.Period == period {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBreakdownRepo) LiquidatedContractIDs(ctx context.Context, period payroll.Period) (map[string]bool, error) {
	out := map[string]bool{}
	for _, b := range f.items {
		if b.Period == period {
			out[b.ContractID] = true
		}
	}
	return out, nil
}

func (f *fakeBreakdownRepo) GetByID(ctx context.Context, id string) (payroll.Breakdown, error) {
	for _, b := range f.items {
		if b.ID == id {
			return b, nil
		}
	}
	return payroll.Breakdown{}, payroll.ErrBreakdownNotFound
}

func (f *fakeBreakdownRepo) List(ctx context.Context, filter payroll.BreakdownFilter) ([]payroll.Breakdown, error) {
	var out []payroll.Breakdown
	for _, b := range f.items {
		if filter.Period != nil && b.Period.String() != *filter.Period {
			continue
		}
		if filter.Status != nil && string(b.Status) != *filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBreakdownRepo) UpdateStatus(ctx context.Context, id string, status payroll.BreakdownStatus, paidAt *time.Time) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Status = status
			f.items[i].PaidAt = paidAt
			return nil
		}
	}
	return payroll.ErrBreakdownNotFound
}
