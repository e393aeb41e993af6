package messaging

import "errors"

var (
	// ErrUnassignedDoctor is returned when a patient without an assigned
	// doctor tries to participate in a conversation. Nothing is written.
	ErrUnassignedDoctor = errors.New("patient has no assigned doctor")

	ErrMessageNotFound = errors.New("message not found")

	// ErrValidation marks bad caller input. Handlers map it to a 4xx;
	// anything unmarked is treated as a server fault.
	ErrValidation = errors.New("validation failed")
)
