package psod

import "errors"

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrRunTerminal  = errors.New("run is terminal")
	ErrRunIDMissing = errors.New("run_id is required")
	ErrRunExists    = errors.New("run already exists")
	ErrInvalidInput = errors.New("invalid run input")
	ErrTooManyRuns  = errors.New("too many active runs")
)
