package pimsim

import "errors"

var (
	// ErrInvalidGeometry is returned by Config.Validate (and therefore New)
	// when the bank geometry or query surface is inconsistent.
	ErrInvalidGeometry = errors.New("invalid bank geometry")

	// ErrAlreadyRun is returned by Run on a simulator whose scan has already
	// completed. A simulator is single-shot; build a new one for a new run.
	ErrAlreadyRun = errors.New("simulation already run")
)
