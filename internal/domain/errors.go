package domain

import "fmt"

// ValidationError reports a bound violation or a missing required field.
// Rejected synchronously at the call boundary, before anything is appended.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

// StateTransitionError reports an illegal intention transition, including
// any attempt to leave a terminal state.
type StateTransitionError struct {
	From IntentionStatus
	To   IntentionStatus
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s", e.From, e.To)
}

// StorageError wraps a durable-log failure. Once a fallback store is active
// these no longer surface as call failures; they go to the operator channel.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
