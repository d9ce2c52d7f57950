package cache

import "errors"

var (
	// ErrAccountNotFound marks a merged record whose source or destination did not resolve.
	ErrAccountNotFound = errors.New("transaction cache: account not found")
	// ErrTransferFailed marks a merged record the ledger refused or failed to post.
	ErrTransferFailed = errors.New("transaction cache: transfer failed")
	// ErrCacheClosed is returned (or panicked with, from Submit) once Shutdown has begun.
	ErrCacheClosed = errors.New("transaction cache: closed")
)
