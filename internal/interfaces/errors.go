package interfaces

import "errors"

// ErrAccountNotFound is returned by stores when no account has the requested id.
var ErrAccountNotFound = errors.New("account not found")
