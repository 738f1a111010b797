package services

import "errors"

// Sentinel errors for the points engine. Handlers map these to HTTP
// statuses; callers decide retry vs manual reconcile from the kind.
var (
	// ErrUnknownPolicy: the (category, outcome) pair has no configured
	// delta. Configuration error — surfaced before any write happens.
	ErrUnknownPolicy = errors.New("no point policy configured for category/outcome pair")

	// ErrAthleteNotFound / ErrMatchNotFound: referenced record missing.
	ErrAthleteNotFound = errors.New("athlete not found")
	ErrMatchNotFound   = errors.New("match record not found")

	// ErrPartialSync: the score balance was written but the ranking
	// projection write failed. The audit entry is still appended with
	// the partial flag set; the reconcile worker repairs the ranking
	// row later. Not silently recovered.
	ErrPartialSync = errors.New("ranking projection out of sync after balance write")

	// ErrStoreUnavailable: transient store failure. Safe to retry the
	// whole operation — record/rollback compensate on failure so a
	// retry cannot double-apply.
	ErrStoreUnavailable = errors.New("backing store unavailable")

	// ErrConcurrencyConflict: lock contention or version mismatch at
	// the store. Safe to retry.
	ErrConcurrencyConflict = errors.New("concurrent mutation conflict")
)
