package request

import "github.com/joaquinkuster/rrhh-sub000/internal/pkg/apperror"

var (
	ErrRequestNotFound       = apperror.NotFound("request not found")
	ErrPendingRequestExists  = apperror.Conflict("another request of this type is already pending for the contract")
	ErrOverlap               = apperror.Conflict("request overlaps an existing approved request")
	ErrRequestNotEditable    = apperror.Conflict("request is no longer editable")
	ErrOnlyStateEditable     = apperror.Conflict("only the state can change once a request has left pending")
	ErrInvalidTransition     = apperror.Conflict("invalid request state transition")
	ErrEmployeeAbsentToday   = apperror.Conflict("employee is on approved vacation or justified leave today")
	ErrRequestInactive       = apperror.Conflict("request is inactive")
	ErrRequestAlreadyActive  = apperror.Conflict("request is already active")
	ErrInsufficientVacation  = apperror.Validation("requested vacation days exceed available days")
	ErrOutsideEntitlement    = apperror.Validation("vacation range is outside the entitlement window")
	ErrInvalidDateRange      = apperror.Validation("start_date must be before or equal end_date")
	ErrInvalidOvertimeWindow = apperror.Validation("end_time must be after start_time")
	ErrNoBusinessDays        = apperror.Validation("vacation range contains no business days")
	ErrResignationInProgress = apperror.Conflict("contract already has an accepted resignation")
)
