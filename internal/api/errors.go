package api

import (
	"errors"
	"net/http"

	"dbobjects/internal/domain"
)

// errorResponse is the JSON body of every non-2xx response.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// httpStatusFromDomainError maps domain errors to HTTP status codes and
// stable error codes.
func httpStatusFromDomainError(err error) (int, string) {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var execution *domain.ExecutionError
	var service *domain.ServiceError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.As(err, &validation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.As(err, &conflict):
		return http.StatusConflict, "CONFLICT"
	case errors.As(err, &execution):
		return http.StatusUnprocessableEntity, "EXECUTION_ERROR"
	case errors.As(err, &service):
		return http.StatusBadGateway, "SERVICE_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
