// Package response holds the JSON envelope shared by every HTTP handler.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/tair/stockroom/pkg/logger"
)

// Response is the body of every API reply
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Code    string            `json:"code,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrBadRequest marks a body that could not be parsed
var ErrBadRequest = errors.New("invalid request body")

var validate = validator.New()

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to encode response")
	}
}

// OK sends a successful envelope
func OK(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Response{Success: true, Message: message, Data: data})
}

// Fail sends an error envelope
func Fail(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, Response{Success: false, Error: message, Code: code})
}

// Decode parses the request body into dst and validates it
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrBadRequest
	}
	return validate.Struct(dst)
}

// ValidationFailed writes a 422 with one entry per offending field.
// It reports false when err is not a validation error.
func ValidationFailed(w http.ResponseWriter, err error) bool {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return false
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	JSON(w, http.StatusUnprocessableEntity, Response{
		Success: false,
		Error:   "validation failed",
		Code:    "VALIDATION_FAILED",
		Fields:  fields,
	})
	return true
}

// PathID reads a positive numeric route variable
func PathID(r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// QueryInt reads an integer query parameter, returning 0 when absent or malformed
func QueryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}
