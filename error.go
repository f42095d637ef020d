// Package portaria holds the core types every other package builds on:
// the Environment, the User, context keys and sentinel errors.
package portaria

import "errors"

var (
	ErrBadConfig   = errors.New("bad config")
	ErrBadFormat   = errors.New("bad format")
	ErrMissingData = errors.New("missing data")
	ErrNotExist    = errors.New("not exist")
	ErrNotValid    = errors.New("invalid")
	ErrUnexpected  = errors.New("unexpected")
)
