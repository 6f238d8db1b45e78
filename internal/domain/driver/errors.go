package driver

import "errors"

var (
	ErrMappingNotFound = errors.New("driver mapping not found")
	ErrMappingExists   = errors.New("an active mapping already exists for this provider driver")
)
