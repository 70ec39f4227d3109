package request

import (
	"context"

	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

func (s *Service) CreateOvertime(ctx context.Context, req request.CreateOvertimeRequest) (request.Request, error) {
	if err := req.Validate(); err != nil {
		return request.Request{}, err
	}

	c, err := s.openContract(ctx, req.ContractID)
	if err != nil {
		return request.Request{}, err
	}

	ot := &request.Overtime{
		Date:      mustDate(req.Date),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Tier:      request.OvertimeTier(req.Tier),
		State:     request.StatePending,
	}
	if ot.Hours, err = OvertimeHours(ot.StartTime, ot.EndTime); err != nil {
		return request.Request{}, err
	}

	candidate := request.Request{ContractID: c.ID, Variant: request.VariantOvertime, Overtime: ot}
	if err := s.prepareCreate(ctx, candidate); err != nil {
		return request.Request{}, err
	}
	return s.create(ctx, candidate)
}

// OvertimeHours is the length of an HH:MM slot in hours, rounded to two places.
func OvertimeHours(start, end string) (decimal.Decimal, error) {
	s, okStart := validator.ClockMinutes(start)
	e, okEnd := validator.ClockMinutes(end)
	if !okStart || !okEnd || e <= s {
		return decimal.Zero, request.ErrInvalidOvertimeWindow
	}
	return decimal.NewFromInt(int64(e - s)).Div(decimal.NewFromInt(60)).Round(2), nil
}

func editOvertime(o *request.Overtime, req request.UpdateRequest) error {
	if req.Date != nil {
		o.Date = mustDate(*req.Date)
	}
	if req.StartTime != nil {
		o.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		o.EndTime = *req.EndTime
	}
	if req.Tier != nil {
		o.Tier = request.OvertimeTier(*req.Tier)
	}
	hours, err := OvertimeHours(o.StartTime, o.EndTime)
	if err != nil {
		return err
	}
	o.Hours = hours
	return nil
}
