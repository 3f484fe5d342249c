package client

import "errors"

var (
	// ErrUnavailable marks transient transport failures. The orchestrator
	// retries on it; everything else propagates immediately.
	ErrUnavailable = errors.New("server unavailable")

	// ErrConflict is returned when the server rejects an item update because
	// LastRevision no longer matches (optimistic concurrency).
	ErrConflict = errors.New("revision conflict")
)
