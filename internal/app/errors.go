package app

import "errors"

var (
	// ErrInvalidState is returned when a manual start targets a tournament that is not upcoming.
	ErrInvalidState = errors.New("tournament is not in a startable state")
	// ErrRepository marks failures to list or fetch from a repository.
	ErrRepository = errors.New("repository error")
	// ErrSweepInProgress is returned when another sweep already holds the sweep lease.
	ErrSweepInProgress = errors.New("another sweep is already running")
	// ErrAdminNotAuthorized is returned when a non-admin calls an admin operation.
	ErrAdminNotAuthorized = errors.New("performing user is not authorized as an admin")
)
