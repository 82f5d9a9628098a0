// Package common defines the sentinel errors shared by every layer of the
// ledger and a couple of helpers for handling secret material. Callers should
// match errors with errors.Is; lower layers wrap them with context.
package common

import (
	"errors"
	"fmt"
)

// Session errors are recovered at the calling boundary: the user is told,
// nothing changes and nothing is recorded.
var (
	// ErrAuth means the supplied PIN did not verify, or no PIN is set yet.
	ErrAuth = errors.New("authentication failed")

	// ErrMismatch means a new PIN and its confirmation differ.
	ErrMismatch = errors.New("PIN confirmation does not match")

	// ErrInvalidAmount means a non-positive amount, or more than the balance on withdraw.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds is the withdraw-specific form of ErrInvalidAmount.
	ErrInsufficientFunds = fmt.Errorf("%w: insufficient funds", ErrInvalidAmount)

	// ErrParse means the amount typed by the user is not a number.
	ErrParse = errors.New("not a number")

	// ErrEmptySecret means an empty PIN was offered as a new credential.
	ErrEmptySecret = errors.New("PIN must not be empty")

	// ErrSecretTooLong means the PIN exceeds what the hash algorithm accepts.
	ErrSecretTooLong = errors.New("PIN is too long")
)

// Lifecycle errors.
var (
	// ErrNotInitialized means the account has no PIN yet.
	ErrNotInitialized = errors.New("account is not initialized")

	// ErrAlreadyInitialized means the initial PIN was already set.
	ErrAlreadyInitialized = errors.New("account is already initialized")
)

// Storage errors.
var (
	// ErrCorruptState means existing storage could not be read or parsed.
	// It is fatal at start-up.
	ErrCorruptState = errors.New("stored account state is corrupt or unreadable")

	// ErrIO means a snapshot could not be persisted.
	ErrIO = errors.New("failed to persist account state")

	// ErrNotDurable means a snapshot was written but may not survive a crash.
	// The new state is in storage and callers treat the save as done.
	ErrNotDurable = errors.New("account state written but not confirmed durable")
)

// Configuration errors.
var (
	ErrUnknownHashAlgorithm = errors.New("unknown hash algorithm")
	ErrUnknownStorageDriver = errors.New("unknown storage driver")
)
