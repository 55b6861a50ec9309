package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	customError "github.com/segyhp/sacco-ledger/pkg/errors"
)

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type ErrorResponse struct {
	Success   bool              `json:"success"`
	Error     string            `json:"error"`
	Code      string            `json:"code,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	Message   string            `json:"message,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	response := Response{
		Success:   statusCode >= 200 && statusCode < 300,
		Data:      data,
		Timestamp: time.Now(),
	}

	writeJSON(w, statusCode, response)
}

// Success sends a successful JSON response
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a created JSON response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Error sends an error JSON response
func Error(w http.ResponseWriter, statusCode int, message string, err error) {
	response := ErrorResponse{
		Success:   false,
		Message:   message,
		Timestamp: time.Now(),
	}

	if err != nil {
		response.Error = err.Error()
	}

	writeJSON(w, statusCode, response)
}

// FromError maps a service error onto its HTTP status. Internal errors are
// attached to the Recorder for LoggingMiddleware to log, and their detail is
// not exposed.
func FromError(w http.ResponseWriter, err error) {
	kind := customError.KindOf(err)
	status := StatusFor(kind)

	response := ErrorResponse{
		Success:   false,
		Kind:      string(kind),
		Timestamp: time.Now(),
	}

	var be *customError.BusinessError
	if kind != customError.KindInternal && errors.As(err, &be) {
		response.Error = be.Message
		response.Message = be.Message
		response.Code = be.Code
		response.Fields = be.Fields
	} else {
		recordError(w, err)
		response.Error = http.StatusText(status)
		response.Message = "Internal server error"
		if errors.As(err, &be) {
			response.Code = be.Code
		}
	}

	writeJSON(w, status, response)
}

// StatusFor returns the HTTP status code for an error kind
func StatusFor(kind customError.Kind) int {
	switch kind {
	case customError.KindValidation:
		return http.StatusBadRequest
	case customError.KindUnauthorized:
		return http.StatusUnauthorized
	case customError.KindForbidden:
		return http.StatusForbidden
	case customError.KindNotFound:
		return http.StatusNotFound
	case customError.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// BadRequest sends a 400 bad request response
func BadRequest(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusBadRequest, message, err)
}

// NotFound sends a 404 not found response
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message, nil)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(w http.ResponseWriter, message string, err error) {
	Error(w, http.StatusInternalServerError, message, err)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 forbidden response
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message, nil)
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		recordError(w, fmt.Errorf("encode response: %w", err))
	}
}

// CORSMiddleware adds CORS headers
func CORSMiddleware(allowedOrigins string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Create a response recorder to capture the status code
			recorder := &Recorder{ResponseWriter: w, StatusCode: http.StatusOK}

			next.ServeHTTP(recorder, r)

			entry := log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   recorder.StatusCode,
				"duration": time.Since(start).String(),
			})
			if recorder.Err != nil {
				entry.WithError(recorder.Err).Error("request failed")
				return
			}
			entry.Info("http request")
		})
	}
}

// Recorder captures the status code written by a handler and the internal
// error behind a failed response, if any.
type Recorder struct {
	http.ResponseWriter
	StatusCode int
	Err        error
}

func (rec *Recorder) fail(err error) {
	rec.Err = err
	if inner, ok := rec.ResponseWriter.(*Recorder); ok {
		inner.fail(err)
	}
}

func recordError(w http.ResponseWriter, err error) {
	if rec, ok := w.(*Recorder); ok {
		rec.fail(err)
	}
}

func (rec *Recorder) WriteHeader(statusCode int) {
	rec.StatusCode = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}
