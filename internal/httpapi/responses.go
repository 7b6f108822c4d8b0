package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"qms/core-api/internal/apimodel"
	"qms/core-api/internal/store"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	typeInvalidRequest    = "INVALID_REQUEST"
	typeNotFound          = "NOT_FOUND"
	typeDuplicate         = "DUPLICATE"
	typeInUse             = "IN_USE"
	typeInvalidTransition = "INVALID_TRANSITION"
	typeUnauthorized      = "UNAUTHORIZED"
	typeForbidden         = "FORBIDDEN"
	typeRateLimited       = "RATE_LIMITED"
	typeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	typeInternal          = "INTERNAL_ERROR"

	messageInternal = "Internal Server Error"
)

// requestError is a client mistake detected before the store is reached.
type requestError struct {
	message string
}

func (e requestError) Error() string { return e.message }

func badRequest(message string) error {
	return requestError{message: message}
}

func mapError(err error) (int, string, string) {
	var reqErr requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, typeInvalidRequest, reqErr.message
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, typeNotFound, "Item not found"
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict, typeDuplicate, "Duplicate item, please review your request"
	case errors.Is(err, store.ErrInvalidStatusType):
		return http.StatusBadRequest, typeInvalidRequest, "Invalid status type"
	case errors.Is(err, store.ErrInvalidReference):
		return http.StatusBadRequest, typeInvalidRequest, "Referenced item does not exist"
	case errors.Is(err, store.ErrInvalidValue):
		return http.StatusBadRequest, typeInvalidRequest, "Invalid value"
	case errors.Is(err, store.ErrInUse):
		return http.StatusConflict, typeInUse, "Item is referenced by other items"
	case errors.Is(err, store.ErrInvalidTransition):
		return http.StatusConflict, typeInvalidTransition, "Invalid status transition"
	default:
		return http.StatusInternalServerError, typeInternal, messageInternal
	}
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, apimodel.APIResponse{
		Code:    strconv.Itoa(status),
		Type:    errType,
		Message: message,
	})
}

func writeResult(w http.ResponseWriter, status int, operation, message string) {
	writeJSON(w, status, apimodel.APIResponse{
		Code:    strconv.Itoa(status),
		Type:    operation,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeRequest(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, typeInvalidRequest, "invalid JSON payload")
		return false
	}
	return true
}
