package contract

import "github.com/joaquinkuster/rrhh-sub000/internal/pkg/apperror"

var (
	ErrContractNotFound = apperror.NotFound("contract not found")
	ErrContractFinished = apperror.Conflict("contract is already finished")
)
