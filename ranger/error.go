package ranger

import "github.com/arvoredigital/portaria"

// Aliased for brevity's sake.
var (
	ErrBadConfig = portaria.ErrBadConfig
	ErrNotExist  = portaria.ErrNotExist
	ErrNotValid  = portaria.ErrNotValid
)
