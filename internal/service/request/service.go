package request

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/domain/contract"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/apperror"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/database"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/validator"
)

// FinalSettlement runs the prorated payroll of a contract that ends on date.
type FinalSettlement interface {
	RunFinalSettlement(ctx context.Context, contractID string, date time.Time) error
}

type Service struct {
	tx         database.Transactor
	requests   request.RequestRepository
	contracts  contract.ContractRepository
	calendars  *calendar.Source
	settlement FinalSettlement
	now        func() time.Time
}

func NewService(
	tx database.Transactor,
	requests request.RequestRepository,
	contracts contract.ContractRepository,
	calendars *calendar.Source,
	settlement FinalSettlement,
) *Service {
	return &Service{
		tx:         tx,
		requests:   requests,
		contracts:  contracts,
		calendars:  calendars,
		settlement: settlement,
		now:        time.Now,
	}
}

func (s *Service) today() time.Time {
	return calendar.Truncate(s.now())
}

func (s *Service) Get(ctx context.Context, id string) (request.Request, error) {
	return s.requests.GetByID(ctx, id)
}

func (s *Service) ListByContract(ctx context.Context, contractID string, variant string) ([]request.Request, error) {
	if _, err := s.contracts.GetByID(ctx, contractID); err != nil {
		return nil, err
	}
	var filter *request.Variant
	if variant != "" {
		v, err := request.ParseVariant(variant)
		if err != nil {
			return nil, validator.ValidationErrors{{Field: "variant", Message: err.Error()}}
		}
		filter = &v
	}
	return s.requests.ListByContract(ctx, contractID, filter)
}

// Update edits a pending request and, when State is set, moves it through its
// state machine in the same transaction. Once a request has left pending only
// its state may change.
func (s *Service) Update(ctx context.Context, req request.UpdateRequest) (request.Request, error) {
	if err := req.Validate(); err != nil {
		return request.Request{}, err
	}

	var updated request.Request
	var settle bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.editable(ctx, req.ID)
		if err != nil {
			return err
		}
		if !current.IsPending() && !req.OnlyState() {
			return request.ErrOnlyStateEditable
		}

		if !req.OnlyState() {
			edited, err := s.applyEdit(ctx, current, req)
			if err != nil {
				return err
			}
			if err := s.requests.Update(ctx, edited); err != nil {
				return fmt.Errorf("failed to update request: %w", err)
			}
			current = edited
		}

		if req.State != nil && request.State(*req.State) != current.State() {
			current, err = s.transition(ctx, current, request.State(*req.State))
			if err != nil {
				return err
			}
			settle = current.Variant == request.VariantResignation && current.State() == request.StateProcessed
		}
		updated = current
		return nil
	})
	if err != nil {
		return request.Request{}, err
	}
	if settle {
		s.runSettlement(ctx, updated)
	}
	return updated, nil
}

// Transition moves a request to a new state, applying the variant's side effects atomically.
func (s *Service) Transition(ctx context.Context, req request.TransitionRequest) (request.Request, error) {
	if err := req.Validate(); err != nil {
		return request.Request{}, err
	}

	var updated request.Request
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.editable(ctx, req.ID)
		if err != nil {
			return err
		}
		updated, err = s.transition(ctx, current, request.State(req.State))
		return err
	})
	if err != nil {
		return request.Request{}, err
	}
	if updated.Variant == request.VariantResignation && updated.State() == request.StateProcessed {
		s.runSettlement(ctx, updated)
	}
	return updated, nil
}

// Delete soft-deactivates a request.
func (s *Service) Delete(ctx context.Context, id string) error {
	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !r.Active {
		return request.ErrRequestInactive
	}
	if err := s.requests.SetActive(ctx, id, false); err != nil {
		return fmt.Errorf("failed to deactivate request: %w", err)
	}
	slog.Info("request deactivated", "request_id", id, "contract_id", r.ContractID, "variant", r.Variant)
	return nil
}

// Reactivate restores a deactivated request after re-checking the pending and overlap rules.
func (s *Service) Reactivate(ctx context.Context, id string) (request.Request, error) {
	var restored request.Request
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := s.requests.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if r.Active {
			return request.ErrRequestAlreadyActive
		}
		r.Active = true

		existing, err := s.contractRequests(ctx, r.ContractID)
		if err != nil {
			return err
		}
		if r.IsPending() {
			if err := checkPending(r, existing); err != nil {
				return err
			}
		}
		if r.IsPending() || r.Blocking() {
			if err := checkOverlap(r, existing); err != nil {
				return err
			}
		}

		if err := s.requests.SetActive(ctx, id, true); err != nil {
			return fmt.Errorf("failed to reactivate request: %w", err)
		}
		restored = r
		return nil
	})
	if err != nil {
		return request.Request{}, err
	}
	return restored, nil
}

// editable loads a request that is active and not in a terminal state.
func (s *Service) editable(ctx context.Context, id string) (request.Request, error) {
	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return request.Request{}, err
	}
	if !r.Active {
		return request.Request{}, request.ErrRequestInactive
	}
	if request.IsTerminal(r.Variant, r.State()) {
		return request.Request{}, request.ErrRequestNotEditable
	}
	return r, nil
}

// openContract loads the contract and rejects finished ones.
func (s *Service) openContract(ctx context.Context, id string) (contract.Contract, error) {
	c, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return contract.Contract{}, err
	}
	c.Refresh(s.today())
	if c.Status == contract.StatusFinished {
		return contract.Contract{}, contract.ErrContractFinished
	}
	return c, nil
}

// prepareCreate enforces the single-pending rule and the overlap rule for a new request.
func (s *Service) prepareCreate(ctx context.Context, candidate request.Request) error {
	existing, err := s.contractRequests(ctx, candidate.ContractID)
	if err != nil {
		return err
	}
	return validateCandidate(candidate, existing)
}

func (s *Service) contractRequests(ctx context.Context, contractID string) ([]request.Request, error) {
	existing, err := s.requests.ListByContract(ctx, contractID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list contract requests: %w", err)
	}
	return existing, nil
}

func validateCandidate(candidate request.Request, existing []request.Request) error {
	if err := checkPending(candidate, existing); err != nil {
		return err
	}
	return checkOverlap(candidate, existing)
}

func (s *Service) create(ctx context.Context, r request.Request) (request.Request, error) {
	r.Active = true
	if err := r.Validate(); err != nil {
		return request.Request{}, err
	}
	created, err := s.requests.Create(ctx, r)
	if err != nil {
		return request.Request{}, fmt.Errorf("failed to create %s request: %w", r.Variant, err)
	}
	slog.Info("request created", "request_id", created.ID, "contract_id", created.ContractID, "variant", created.Variant)
	return created, nil
}

func checkPending(candidate request.Request, existing []request.Request) error {
	for _, other := range existing {
		if other.ID == candidate.ID || !other.Active || other.Variant != candidate.Variant {
			continue
		}
		if other.IsPending() {
			return apperror.Detailf(request.ErrPendingRequestExists,
				"%s request %s is still pending for contract %s", other.Variant, other.ID, candidate.ContractID)
		}
	}
	return nil
}

func checkOverlap(candidate request.Request, existing []request.Request) error {
	other, found := FindOverlap(candidate, existing, candidate.ID)
	if !found {
		return nil
	}
	start, end, _ := other.Span()
	return apperror.Detailf(request.ErrOverlap, "overlaps %s %s request %s (%s to %s)",
		other.State(), other.Variant, other.ID, start.Format(calendar.DateLayout), end.Format(calendar.DateLayout))
}

// applyEdit returns a copy of current with the update's fields applied and re-validated.
func (s *Service) applyEdit(ctx context.Context, current request.Request, req request.UpdateRequest) (request.Request, error) {
	var errs validator.ValidationErrors
	allowed := request.EditableFields[current.Variant]
	for _, field := range req.EditedFields() {
		if !slices.Contains(allowed, field) {
			errs.Add(field, fmt.Sprintf("%s cannot be set on a %s request", field, current.Variant))
		}
	}
	if err := errs.Err(); err != nil {
		return request.Request{}, err
	}

	edited := cloneRequest(current)
	existing, err := s.contractRequests(ctx, current.ContractID)
	if err != nil {
		return request.Request{}, err
	}

	switch edited.Variant {
	case request.VariantVacation:
		if err := s.editVacation(ctx, &edited, req, existing); err != nil {
			return request.Request{}, err
		}
	case request.VariantLeave:
		if err := editLeave(edited.Leave, req); err != nil {
			return request.Request{}, err
		}
	case request.VariantOvertime:
		if err := editOvertime(edited.Overtime, req); err != nil {
			return request.Request{}, err
		}
	case request.VariantResignation:
		if req.NotifiedOn != nil {
			edited.Resignation.NotifiedOn = mustDate(*req.NotifiedOn)
		}
	}

	if err := checkOverlap(edited, existing); err != nil {
		return request.Request{}, err
	}
	return edited, nil
}

// transition runs inside a transaction; the caller persists nothing else.
func (s *Service) transition(ctx context.Context, current request.Request, to request.State) (request.Request, error) {
	from := current.State()
	if !request.CanTransition(current.Variant, from, to) {
		return request.Request{}, apperror.Detailf(request.ErrInvalidTransition,
			"%s request cannot move from %s to %s", current.Variant, from, to)
	}

	existing, err := s.contractRequests(ctx, current.ContractID)
	if err != nil {
		return request.Request{}, err
	}

	next := cloneRequest(current)
	next.SetState(to)
	today := s.today()

	switch next.Variant {
	case request.VariantVacation:
		if to == request.StateApproved {
			err = s.approveVacation(ctx, &next, existing, today)
		}
	case request.VariantLeave:
		if to == request.StateJustified {
			err = s.justifyLeave(ctx, &next, existing)
		}
	case request.VariantOvertime:
		if to == request.StateApproved {
			err = checkOverlap(next, existing)
		}
	case request.VariantResignation:
		switch to {
		case request.StateAccepted:
			err = s.acceptResignation(ctx, &next, existing, today)
		case request.StateProcessed:
			err = s.processResignation(ctx, &next, existing, today)
		}
	}
	if err != nil {
		return request.Request{}, err
	}

	if err := s.requests.Update(ctx, next); err != nil {
		return request.Request{}, fmt.Errorf("failed to update request state: %w", err)
	}
	slog.Info("request state changed",
		"request_id", next.ID,
		"contract_id", next.ContractID,
		"variant", next.Variant,
		"from", from,
		"to", to,
	)
	return next, nil
}

func (s *Service) runSettlement(ctx context.Context, r request.Request) {
	if s.settlement == nil || r.Resignation == nil || r.Resignation.EffectiveDate == nil {
		return
	}
	if err := s.settlement.RunFinalSettlement(ctx, r.ContractID, *r.Resignation.EffectiveDate); err != nil {
		slog.Error("final settlement failed",
			"request_id", r.ID,
			"contract_id", r.ContractID,
			"error", err,
		)
	}
}

func cloneRequest(r request.Request) request.Request {
	out := r
	switch {
	case r.Vacation != nil:
		v := *r.Vacation
		out.Vacation = &v
	case r.Leave != nil:
		l := *r.Leave
		out.Leave = &l
	case r.Overtime != nil:
		o := *r.Overtime
		out.Overtime = &o
	case r.Resignation != nil:
		res := *r.Resignation
		out.Resignation = &res
	}
	return out
}

// mustDate parses a date that DTO validation already accepted.
func mustDate(s string) time.Time {
	t, _ := calendar.ParseDate(s)
	return t
}
