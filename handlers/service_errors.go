package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bitsbybeier/backend/services"
	"github.com/bitsbybeier/backend/utils"
)

// HandleServiceError maps domain errors to HTTP responses. All per-request
// auth failures terminate here; only configuration errors may abort the
// process, and those never reach a handler.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	switch {
	case services.IsNotFoundError(err):
		_ = utils.WriteNotFound(w, errMessage(err))

	case services.IsValidationError(err):
		_ = utils.WriteBadRequest(w, errMessage(err), nil)

	case services.IsUnauthorizedError(err):
		_ = utils.WriteUnauthorized(w, errMessage(err))

	case services.IsForbiddenError(err):
		_ = utils.WriteForbidden(w, errMessage(err))

	case services.IsConflictError(err):
		_ = utils.WriteConflict(w, errMessage(err), nil)

	case services.IsInternalError(err):
		// Log the detail, return a generic message
		logger.Error("internal server error", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "An internal error occurred")

	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		_ = utils.WriteInternalServerError(w, "An unexpected error occurred")
	}
}

// errMessage returns the client-facing message of a domain error
func errMessage(err error) string {
	var domainErr *services.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if utils.IsValidationError(err) {
		fields := utils.GetValidationFields(err)
		details := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
		_ = utils.WriteBadRequest(w, "Validation failed", details)
		return
	}

	_ = utils.WriteBadRequest(w, err.Error(), nil)
}
