package metrosim

import "errors"

var (
	ErrInvalidTopology = errors.New("invalid topology")
	ErrUnknownLine     = errors.New("unknown line")
	ErrUnknownStation  = errors.New("unknown station")
	ErrUnknownTrain    = errors.New("unknown train")
	ErrNoCommonLine    = errors.New("no line serves both stations")
	ErrLogFrozen       = errors.New("event log is frozen")
	ErrStalled         = errors.New("simulation stalled")
	ErrAlreadyRun      = errors.New("simulation already run")
)
