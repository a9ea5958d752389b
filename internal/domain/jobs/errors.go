package jobs

import "errors"

var (
	// ErrNotFound indicates no job exists with the requested id.
	ErrNotFound = errors.New("job not found")

	// ErrForbidden indicates the requester does not own the job and has no
	// elevated role.
	ErrForbidden = errors.New("job access forbidden")

	// ErrNoSourceFiles indicates the scan produced zero eligible files;
	// surfaced synchronously, no job record is created.
	ErrNoSourceFiles = errors.New("no recognized source files in submission")

	// ErrTerminal indicates an attempt to transition a job that already
	// reached a terminal state.
	ErrTerminal = errors.New("job already in terminal state")
)
