package compliance

import "errors"

var (
	ErrEventNotFound   = errors.New("compliance event not found")
	ErrAlreadyResolved = errors.New("compliance event is already resolved")
)
