// Package errs contains sentinel errors shared across layers.
package errs

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist, locally or remotely.
	ErrNotFound = errors.New("not found")

	// ErrSyncAlreadyActive indicates a sync is already running for the account.
	ErrSyncAlreadyActive = errors.New("sync already active for account")

	// ErrAccountNotFound indicates no account matches the given id or email.
	ErrAccountNotFound = errors.New("account not found")

	// ErrNoCredentials indicates the account has no stored Gmail tokens.
	ErrNoCredentials = errors.New("account has no stored credentials")
)
