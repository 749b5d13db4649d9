package models

import "errors"

// Domain errors that can be returned by repositories
var (
	// ErrNotFound indicates the requested transaction was not found
	ErrNotFound = errors.New("not found")
)
