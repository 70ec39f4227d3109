package payroll

import "github.com/joaquinkuster/rrhh-sub000/internal/pkg/apperror"

var (
	ErrConceptNotFound         = apperror.NotFound("salary concept not found")
	ErrConceptAlreadyAssigned  = apperror.Conflict("salary concept already assigned to contract")
	ErrConceptNotAssigned      = apperror.NotFound("salary concept is not assigned to contract")
	ErrBreakdownNotFound       = apperror.NotFound("payroll breakdown not found")
	ErrBreakdownAlreadyExists  = apperror.Conflict("payroll breakdown already exists for this contract and period")
	ErrInvalidStatusTransition = apperror.Conflict("payroll breakdown status can only move pending -> generated -> paid")
	ErrNoEligibleContract      = apperror.NotFound("no active eligible contract for this period")
	ErrInvalidPeriod           = apperror.Validation("invalid payroll period")
	ErrInvalidFormula          = apperror.Validation("invalid concept formula")
	ErrInvalidStatus           = apperror.Validation("invalid payroll status")
)
