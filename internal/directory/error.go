package directory

import "errors"

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrAgentNotFound    = errors.New("agent not found")
)
