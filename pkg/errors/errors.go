package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated  = errors.New("request could not be authenticated")
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrInvalidToken     = errors.New("invalid or expired token")

	ErrDeviceNotFound    = errors.New("device not found")
	ErrCompanyMismatch   = errors.New("device does not belong to company")
	ErrMappingNotFound   = errors.New("driver mapping not found")
	ErrMappingExists     = errors.New("an active mapping already exists for this provider driver")
	ErrUnknownProvider   = errors.New("unknown telemetry provider")
	ErrEventNotFound     = errors.New("compliance event not found")
	ErrEventResolved     = errors.New("compliance event is already resolved")
	ErrNoValidRecords    = errors.New("no valid records remained after validation")
	ErrEmptyBatch        = errors.New("batch contains no records")
	ErrInvalidTimeWindow = errors.New("invalid time window")
)

// AppError carries a machine-readable code next to the human message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
