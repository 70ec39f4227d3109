package request

import (
	"context"
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/domain/contract"
	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/apperror"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
)

func (s *Service) CreateVacation(ctx context.Context, req request.CreateVacationRequest) (request.Request, error) {
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
	vacation, err := s.planVacation(ctx, c, req.Period, mustDate(req.StartDate), mustDate(req.EndDate), existing, "")
	if err != nil {
		return request.Request{}, err
	}

	candidate := request.Request{ContractID: c.ID, Variant: request.VariantVacation, Vacation: vacation}
	if err := validateCandidate(candidate, existing); err != nil {
		return request.Request{}, err
	}
	return s.create(ctx, candidate)
}

// planVacation checks the entitlement window and the available balance and
// fills the derived day counts. excludeID is left out of the taken days.
func (s *Service) planVacation(ctx context.Context, c contract.Contract, period int, start, end time.Time, existing []request.Request, excludeID string) (*request.Vacation, error) {
	if end.Before(start) {
		return nil, request.ErrInvalidDateRange
	}
	windowStart, windowEnd := contract.EntitlementWindow(period)
	if start.Before(windowStart) || end.After(windowEnd) {
		return nil, apperror.Detailf(request.ErrOutsideEntitlement,
			"vacation %s to %s is outside the %d window (%s to %s)",
			start.Format(calendar.DateLayout), end.Format(calendar.DateLayout), period,
			windowStart.Format(calendar.DateLayout), windowEnd.Format(calendar.DateLayout))
	}

	// a month of slack so the return date can roll past trailing holidays
	cal, err := s.calendars.Load(ctx, start, end.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	requested := cal.CountBusinessDays(start, end)
	if requested == 0 {
		return nil, request.ErrNoBusinessDays
	}

	entitled := c.EntitledVacationDays(windowStart, windowEnd)
	taken := request.TakenVacationDays(existing, period, excludeID)
	available := max(entitled-taken, 0)
	if requested > available {
		return nil, apperror.Detailf(request.ErrInsufficientVacation,
			"requested %d business days but only %d of %d are available", requested, available, entitled)
	}

	return &request.Vacation{
		Period:        period,
		EntitledDays:  entitled,
		TakenDays:     taken,
		AvailableDays: available,
		RequestedDays: requested,
		StartDate:     start,
		EndDate:       end,
		ReturnDate:    cal.NextBusinessDay(end),
		State:         request.StatePending,
	}, nil
}

func (s *Service) editVacation(ctx context.Context, edited *request.Request, req request.UpdateRequest, existing []request.Request) error {
	v := edited.Vacation
	period, start, end := v.Period, v.StartDate, v.EndDate
	if req.Period != nil {
		period = *req.Period
	}
	if req.StartDate != nil {
		start = mustDate(*req.StartDate)
	}
	if req.EndDate != nil {
		end = mustDate(*req.EndDate)
	}

	c, err := s.openContract(ctx, edited.ContractID)
	if err != nil {
		return err
	}
	planned, err := s.planVacation(ctx, c, period, start, end, existing, edited.ID)
	if err != nil {
		return err
	}
	planned.NotifiedOn = v.NotifiedOn
	planned.State = v.State
	edited.Vacation = planned
	return nil
}

func (s *Service) approveVacation(ctx context.Context, next *request.Request, existing []request.Request, today time.Time) error {
	if err := checkOverlap(*next, existing); err != nil {
		return err
	}
	if next.Vacation.NotifiedOn == nil {
		next.Vacation.NotifiedOn = &today
	}
	return s.extendAcceptedResignation(ctx, existing, next.Vacation.RequestedDays)
}
