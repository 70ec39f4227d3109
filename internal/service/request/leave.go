package request

import (
	"context"

	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
)

func (s *Service) CreateLeave(ctx context.Context, req request.CreateLeaveRequest) (request.Request, error) {
	if err := req.Validate(); err != nil {
		return request.Request{}, err
	}

	c, err := s.openContract(ctx, req.ContractID)
	if err != nil {
		return request.Request{}, err
	}

	candidate := request.Request{
		ContractID: c.ID,
		Variant:    request.VariantLeave,
		Leave: &request.Leave{
			Reason:         request.LeaveReason(req.Reason),
			StartDate:      mustDate(req.StartDate),
			EndDate:        mustDate(req.EndDate),
			HealthRecordID: req.HealthRecordID,
			State:          request.StatePending,
		},
	}
	if err := s.prepareCreate(ctx, candidate); err != nil {
		return request.Request{}, err
	}
	return s.create(ctx, candidate)
}

func editLeave(l *request.Leave, req request.UpdateRequest) error {
	if req.Reason != nil {
		l.Reason = request.LeaveReason(*req.Reason)
	}
	if req.StartDate != nil {
		l.StartDate = mustDate(*req.StartDate)
	}
	if req.EndDate != nil {
		l.EndDate = mustDate(*req.EndDate)
	}
	if req.HealthRecordID != nil {
		l.HealthRecordID = req.HealthRecordID
	}
	if l.EndDate.Before(l.StartDate) {
		return request.ErrInvalidDateRange
	}
	return nil
}

// justifyLeave extends an accepted resignation by the leave's calendar days.
func (s *Service) justifyLeave(ctx context.Context, next *request.Request, existing []request.Request) error {
	if err := checkOverlap(*next, existing); err != nil {
		return err
	}
	return s.extendAcceptedResignation(ctx, existing, next.Leave.Days())
}
