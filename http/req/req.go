package req

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/arvoredigital/portaria"
)

type Parser struct {
	formDecoder formDecoder
}

func NewParser() *Parser {
	return &Parser{formDecoder: newFormDecoder()}
}

// Parse decodes the request payload into a pointer to a struct,
// reading JSON when the request declares a JSON Content-Type
// and URL-encoded form data otherwise.
//
// Browser form posts and API clients thereby share one entrypoint.
func (p *Parser) Parse(r *http.Request, structPtr any) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		return p.ParseBody(r.Body, structPtr)
	}

	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("portaria/http/req: %w: failed parsing request form: %s", portaria.ErrBadFormat, err)
	}

	return p.ParseForm(r.PostForm, structPtr)
}

// ParseBody decodes into a pointer to a struct the JSON data in *http.Request.Body.
//
// ParseBody reads the entire body and it can't be read from again.
// Use a [io.TeeReader] if the body needs to be reused after calling ParseBody.
func (p *Parser) ParseBody(body io.Reader, structPtr any) error {
	var ourFault *json.InvalidUnmarshalError
	err := json.NewDecoder(body).Decode(structPtr)
	if errors.As(err, &ourFault) {
		return fmt.Errorf("portaria/http/req: %w: ParseBody called with non-pointer: %s", portaria.ErrNotValid, err)
	}

	if err != nil {
		return fmt.Errorf("portaria/http/req: %w: failed decoding request body: %s", portaria.ErrBadFormat, err)
	}

	return nil
}

// ParseForm decodes into a pointer to a struct the URL-encoded data in vals.
func (p *Parser) ParseForm(vals url.Values, structPtr any) error {
	if err := p.formDecoder.Decode(structPtr, vals); err != nil {
		return fmt.Errorf("portaria/http/req: failed decoding request form: %w", translateDecoderError(err))
	}

	return nil
}

// ParseQueryParams decodes into a pointer to a struct the query param data in *http.Request.URL.Query.
func (p *Parser) ParseQueryParams(params url.Values, structPtr any) error {
	if err := p.formDecoder.Decode(structPtr, params); err != nil {
		return fmt.Errorf("portaria/http/req: failed decoding request query params: %w", translateDecoderError(err))
	}

	return nil
}
