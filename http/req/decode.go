package req

import (
	"errors"
	"fmt"

	"github.com/gorilla/schema"

	"github.com/arvoredigital/portaria"
)

type formDecoder interface {
	Decode(dst any, src map[string][]string) error
}

func newFormDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return dec
}

// translateDecoderError converts an error returned by *schema.Decoder into standardized errors.
// Some *schema.Decoder errors are issues with calling code;
// some errors are unexpected issues;
// still some are issues with mismatches between a request's values and the expected shape.
func translateDecoderError(err error) error {
	var pkgErrs schema.MultiError
	// NOTE: outside other errors handled below,
	// the schema package appears to always use MultiError to wrap errors up.
	if !errors.As(err, &pkgErrs) {
		return fmt.Errorf("%w: %s", portaria.ErrBadFormat, err)
	}

	for _, pkgErr := range pkgErrs {
		switch pkgErr.(type) {
		case schema.ConversionError, schema.UnknownKeyError:
			return fmt.Errorf("%w: %s", portaria.ErrNotValid, err)
		case schema.EmptyFieldError:
			return fmt.Errorf(`%w: use the validation rules on the struct, not schema "required"`, portaria.ErrBadFormat)
		default:
			// The above covers all the known struct-backed errors schema returns.
			// If it isn't one of those, it's likely a programming error, and thus a show-stopper.
			return fmt.Errorf("%w: %s", portaria.ErrUnexpected, err)
		}
	}

	return fmt.Errorf("%w: %s", portaria.ErrNotValid, err)
}
