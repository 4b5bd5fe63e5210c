package store

import "errors"

var (
	// ErrNotFound covers both a missing row and a row owned by someone
	// else: ownership must not be distinguishable from absence.
	ErrNotFound = errors.New("not found")

	// ErrFormInactive rejects submissions to a deactivated form.
	ErrFormInactive = errors.New("form is not accepting submissions")

	// ErrSubmissionFailed means the commit lost a race (e.g. a field was
	// deleted after validation). Nothing was stored; safe to resubmit.
	ErrSubmissionFailed = errors.New("submission could not be stored")
)
