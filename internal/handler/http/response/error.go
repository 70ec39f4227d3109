package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/apperror"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/validator"
)

// HandleError maps validation errors to 422, application errors to their own
// status and anything else to 500.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		Error(w, appErr.HTTPStatus, appErr.Code, appErr.Message)
		return
	}

	slog.Error("unhandled error", "error", err)
	InternalServerError(w, "An unexpected error occurred")
}
