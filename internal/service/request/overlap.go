package request

import (
	"context"
	"fmt"
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/domain/request"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/validator"
)

// HasOverlap loads the contract's requests and reports whether candidate
// collides with any blocking one other than excludeID.
func (s *Service) HasOverlap(ctx context.Context, contractID string, candidate request.Request, excludeID string) (bool, error) {
	existing, err := s.requests.ListByContract(ctx, contractID, nil)
	if err != nil {
		return false, fmt.Errorf("failed to list contract requests: %w", err)
	}
	_, found := FindOverlap(candidate, existing, excludeID)
	return found, nil
}

// FindOverlap returns the first blocking request that collides with candidate.
// Only approved vacations, justified leaves and approved overtime block.
func FindOverlap(candidate request.Request, existing []request.Request, excludeID string) (request.Request, bool) {
	cStart, cEnd, ok := candidate.Span()
	if !ok {
		return request.Request{}, false
	}
	for _, other := range existing {
		if other.ID == excludeID || other.ID == candidate.ID || !other.Blocking() {
			continue
		}
		oStart, oEnd, _ := other.Span()
		if !calendar.Overlaps(cStart, cEnd, oStart, oEnd) {
			continue
		}
		// Two overtime entries on the same day only collide when their hours do.
		if candidate.Variant == request.VariantOvertime && other.Variant == request.VariantOvertime &&
			!TimesOverlap(candidate.Overtime.StartTime, candidate.Overtime.EndTime, other.Overtime.StartTime, other.Overtime.EndTime) {
			continue
		}
		return other, true
	}
	return request.Request{}, false
}

// TimesOverlap compares HH:MM slots with open bounds: back-to-back slots do not overlap.
func TimesOverlap(start1, end1, start2, end2 string) bool {
	s1, _ := validator.ClockMinutes(start1)
	e1, _ := validator.ClockMinutes(end1)
	s2, _ := validator.ClockMinutes(start2)
	e2, _ := validator.ClockMinutes(end2)
	return s1 < e2 && e1 > s2
}

// BlocksToday reports whether today falls inside an approved vacation or a justified leave.
func BlocksToday(requests []request.Request, today time.Time) bool {
	for _, r := range requests {
		if !r.Blocking() || r.Variant == request.VariantOvertime {
			continue
		}
		start, end, _ := r.Span()
		if calendar.Contains(start, end, today) {
			return true
		}
	}
	return false
}
