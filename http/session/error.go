package session

import "errors"

var (
	ErrNotValid  = errors.New("not valid")
	ErrNoSession = errors.New("no session")
)
