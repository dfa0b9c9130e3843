package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"flipbook/metrics"
)

// ValidationError reports missing or malformed input (400).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// UnauthorizedError reports a missing or wrong project password (401).
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// NotFoundError reports a key lookup that matched nothing (404).
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// StorageError wraps a failed store or object storage call (500). Message
// is what the client sees; Err stays in the logs unless ShowDetails is set.
type StorageError struct {
	Op          string
	Message     string
	Err         error
	ShowDetails bool
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

func storageError(op, message string, err error) *StorageError {
	return &StorageError{Op: op, Message: message, Err: err}
}

// writeError renders err according to its type. Anything that is not one of
// the typed errors is treated as a storage failure.
func writeError(c *gin.Context, err error) {
	var (
		validationErr   *ValidationError
		unauthorizedErr *UnauthorizedError
		notFoundErr     *NotFoundError
		storageErr      *StorageError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &unauthorizedErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorizedErr.Message, "passwordRequired": true})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Message})
	default:
		if !errors.As(err, &storageErr) {
			storageErr = storageError("unknown", "Internal server error", err)
		}
		metrics.StoreErrors.WithLabelValues(storageErr.Op).Inc()
		log.Error().Err(storageErr.Err).Str("op", storageErr.Op).Msg(storageErr.Message)
		_ = c.Error(storageErr)

		body := gin.H{"error": storageErr.Message}
		if storageErr.ShowDetails {
			body["details"] = storageErr.Err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}
