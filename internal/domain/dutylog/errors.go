package dutylog

import "errors"

var (
	ErrSegmentNotFound = errors.New("duty status segment not found")
	ErrMissingStart    = errors.New("segment has no start time")
)
