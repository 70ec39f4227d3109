package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/domain/contract"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
)

// NoticeDays is the calendar-day notice between notification and termination.
const NoticeDays = 15

func (s *Service) CreateResignation(ctx context.Context, req request.CreateResignationRequest) (request.Request, error) {
	if err := req.Validate(); err != nil {
		return request.Request{}, err
	}

	c, err := s.openContract(ctx, req.ContractID)
	if err != nil {
		return request.Request{}, err
	}

	existing, err := s.contractRequests(ctx, c.ID)
	if err != nil {
		return request.Request{}, err
	}
	if BlocksToday(existing, s.today()) {
		return request.Request{}, request.ErrEmployeeAbsentToday
	}
	if _, found := acceptedResignation(existing); found {
		return request.Request{}, request.ErrResignationInProgress
	}

	candidate := request.Request{
		ContractID: c.ID,
		Variant:    request.VariantResignation,
		Resignation: &request.Resignation{
			NotifiedOn: mustDate(req.NotifiedOn),
			State:      request.StatePending,
		},
	}
	if err := validateCandidate(candidate, existing); err != nil {
		return request.Request{}, err
	}
	return s.create(ctx, candidate)
}

// acceptResignation sets the effective date to the notification date plus the
// notice, rolled forward to a business day.
func (s *Service) acceptResignation(ctx context.Context, next *request.Request, existing []request.Request, today time.Time) error {
	if BlocksToday(existing, today) {
		return request.ErrEmployeeAbsentToday
	}
	notice := next.Resignation.NotifiedOn.AddDate(0, 0, NoticeDays)
	cal, err := s.calendars.Load(ctx, notice, notice.AddDate(0, 1, 0))
	if err != nil {
		return err
	}
	effective := cal.RollForward(notice)
	next.Resignation.EffectiveDate = &effective
	return nil
}

// processResignation ends the contract today. The caller's transaction covers
// both the request and the contract update.
func (s *Service) processResignation(ctx context.Context, next *request.Request, existing []request.Request, today time.Time) error {
	if BlocksToday(existing, today) {
		return request.ErrEmployeeAbsentToday
	}
	next.Resignation.EffectiveDate = &today

	c, err := s.contracts.GetByID(ctx, next.ContractID)
	if err != nil {
		return err
	}
	end := today
	status := contract.DeriveStatus(c.StartDate, &end, today)
	if err := s.contracts.UpdateEndDate(ctx, c.ID, end, status); err != nil {
		return fmt.Errorf("failed to update contract end date: %w", err)
	}
	return nil
}

// extendAcceptedResignation pushes an accepted resignation's effective date by days.
func (s *Service) extendAcceptedResignation(ctx context.Context, existing []request.Request, days int) error {
	res, found := acceptedResignation(existing)
	if !found || days <= 0 {
		return nil
	}
	extended := cloneRequest(res)
	effective := extended.Resignation.EffectiveDate.AddDate(0, 0, days)
	extended.Resignation.EffectiveDate = &effective
	if err := s.requests.Update(ctx, extended); err != nil {
		return fmt.Errorf("failed to extend resignation: %w", err)
	}
	slog.Info("resignation effective date extended",
		"request_id", extended.ID,
		"contract_id", extended.ContractID,
		"days", days,
		"effective_date", effective,
	)
	return nil
}

func acceptedResignation(existing []request.Request) (request.Request, bool) {
	for _, r := range existing {
		if r.Variant == request.VariantResignation && r.Active &&
			r.Resignation.State == request.StateAccepted && r.Resignation.EffectiveDate != nil {
			return r, true
		}
	}
	return request.Request{}, false
}

// SweepResignations processes every accepted resignation that is due. A failing
// contract is logged and skipped; the returned error joins all failures.
func (s *Service) SweepResignations(ctx context.Context) (int, error) {
	today := s.today()
	due, err := s.requests.ListDueResignations(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list due resignations: %w", err)
	}

	processed := 0
	var errs []error
	for _, r := range due {
		done, err := s.sweepOne(ctx, r.ID)
		if err != nil {
			slog.Error("failed to process resignation",
				"request_id", r.ID,
				"contract_id", r.ContractID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("resignation %s: %w", r.ID, err))
			continue
		}
		s.runSettlement(ctx, done)
		processed++
	}
	return processed, errors.Join(errs...)
}

func (s *Service) sweepOne(ctx context.Context, id string) (request.Request, error) {
	var done request.Request
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.editable(ctx, id)
		if err != nil {
			return err
		}
		done, err = s.transition(ctx, current, request.StateProcessed)
		return err
	})
	return done, err
}
