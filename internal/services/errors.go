package services

import "errors"

var (
	// ErrGroupNotFound is returned for a group key that is not configured.
	ErrGroupNotFound = errors.New("group not found")
)
