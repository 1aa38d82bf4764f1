package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Cart pricing / validation
	ErrCapacityExceeded          = errors.New("slot capacity exceeded")
	ErrMissingCustomerAssignment = errors.New("price tier has fewer assigned customers than quantity")

	// Membership lifecycle
	ErrInvalidStateTransition  = errors.New("invalid membership state transition")
	ErrSuspensionLimitExceeded = errors.New("annual suspension day limit exceeded")
	ErrNoScheduledPause        = errors.New("no scheduled pause exists")

	// Prepaid passes
	ErrPassDepleted = errors.New("prepaid pass has insufficient remaining passes")

	// External billing provider
	ErrExternalProvider = errors.New("billing provider call failed")

	// Infra-level errors surfaced by repositories
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid transaction execution context")
	ErrLockNotAcquired    = errors.New("could not acquire lock")
)
