package substrate

import "errors"

var (
	// ErrInvalidMemoryLimit is returned for a negative memory limit.
	ErrInvalidMemoryLimit = errors.New("substrate: memory limit must not be negative")

	// ErrInvalidArena is returned for an arena without a name or with a non-positive capacity.
	ErrInvalidArena = errors.New("substrate: invalid arena")

	// ErrArenaExists is returned when an arena name is registered twice.
	ErrArenaExists = errors.New("substrate: arena already exists")

	// ErrClosed is returned by operations on a closed Runtime.
	ErrClosed = errors.New("substrate: runtime closed")
)
