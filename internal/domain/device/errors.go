package device

import "errors"

var (
	ErrDeviceNotFound      = errors.New("device not found")
	ErrDeviceAlreadyExists = errors.New("device already exists")
	ErrDeviceInactive      = errors.New("device is inactive")
	ErrCompanyMismatch     = errors.New("device does not belong to company")
	ErrInvalidProvider     = errors.New("invalid provider")
)
