package quest

import "errors"

// ErrMissingURL is returned when a url-type ingestion carries no URL.
var ErrMissingURL = errors.New("quest: missing url")

// ErrFetchFailed is returned when the recon URL cannot be fetched.
// Fetch is a single attempt; the caller may retry the whole ingestion.
var ErrFetchFailed = errors.New("quest: failed to fetch url")

// ErrInsufficientText is returned when the working text is too short
// to be worth sending to the oracle.
var ErrInsufficientText = errors.New("quest: no usable recon text")

// ErrRejected is returned by the validator when a candidate module
// fails an admission gate. Callers drop the candidate silently.
var ErrRejected = errors.New("quest: module rejected")
