package request

import (
	"context"
	"maps"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/contract"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
)

type snapshotter interface {
	snapshot() (restore func())
}

// fakeTx restores every registered repository when fn fails.
type fakeTx struct {
	repos []snapshotter
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	restores := make([]func(), 0, len(f.repos))
	for _, r := range f.repos {
		restores = append(restores, r.snapshot())
	}
	if err := fn(ctx); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

type fakeRequestRepo struct {
	items     map[string]request.Request
	seq       int
	updateErr error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{items: map[string]request.Request{}}
}

func (f *fakeRequestRepo) snapshot() func() {
	saved := make(map[string]request.Request, len(f.items))
	for id, r := range f.items {
		saved[id] = cloneRequest(r)
	}
	return func() { f.items = saved }
}

func (f *fakeRequestRepo) Create(ctx context.Context, req request.Request) (request.Request, error) {
	f.seq++
	req.ID = uuid.Must(uuid.NewV7()).String()
	req.CreatedAt = time.Date(2025, time.January, 1, 0, 0, f.seq, 0, time.UTC)
	req.UpdatedAt = req.CreatedAt
	f.items[req.ID] = cloneRequest(req)
	return req, nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string) (request.Request, error) {
	r, ok := f.items[id]
	if !ok {
		return request.Request{}, request.ErrRequestNotFound
	}
	return cloneRequest(r), nil
}

func (f *fakeRequestRepo) ListByContract(ctx context.Context, contractID string, variant *request.Variant) ([]request.Request, error) {
	var out []request.Request
	for _, r := range f.items {
		if r.ContractID != contractID || (variant != nil && r.Variant != *variant) {
			continue
		}
		out = append(out, cloneRequest(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRequestRepo) Update(ctx context.Context, req request.Request) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.items[req.ID]; !ok {
		return request.ErrRequestNotFound
	}
	f.items[req.ID] = cloneRequest(req)
	return nil
}

func (f *fakeRequestRepo) SetActive(ctx context.Context, id string, active bool) error {
	r, ok := f.items[id]
	if !ok {
		return request.ErrRequestNotFound
	}
	r.Active = active
	f.items[id] = r
	return nil
}

func (f *fakeRequestRepo) ListDueResignations(ctx context.Context, asOf time.Time) ([]request.Request, error) {
	var out []request.Request
	for _, r := range f.items {
		if r.Variant != request.VariantResignation || !r.Active || r.Resignation.State != request.StateAccepted {
			continue
		}
		if r.Resignation.EffectiveDate != nil && !r.Resignation.EffectiveDate.After(asOf) {
			out = append(out, cloneRequest(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeContractRepo struct {
	items     map[string]contract.Contract
	updateErr error
}

func newFakeContractRepo(contracts ...contract.Contract) *fakeContractRepo {
	f := &fakeContractRepo{items: map[string]contract.Contract{}}
	for _, c := range contracts {
		f.items[c.ID] = c
	}
	return f
}

func (f *fakeContractRepo) snapshot() func() {
	saved := maps.Clone(f.items)
	return func() { f.items = saved }
}

func (f *fakeContractRepo) GetByID(ctx context.Context, id string) (contract.Contract, error) {
	c, ok := f.items[id]
	if !ok {
		return contract.Contract{}, contract.ErrContractNotFound
	}
	return c, nil
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
	if f.updateErr != nil {
		return f.updateErr
	}
	c, ok := f.items[id]
	if !ok {
		return contract.ErrContractNotFound
	}
	c.EndDate = &endDate
	c.Status = status
	f.items[id] = c
	return nil
}

type settlementCall struct {
	contractID string
	date       time.Time
}

type fakeSettlement struct {
	calls []settlementCall
	err   error
}

func (f *fakeSettlement) RunFinalSettlement(ctx context.Context, contractID string, date time.Time) error {
	f.calls = append(f.calls, settlementCall{contractID: contractID, date: date})
	return f.err
}
