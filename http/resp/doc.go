// Package resp standardizes writing HTTP responses with a Responder.
//
// A Responder composes a response out of small, functional options
// so handlers declare what a response contains
// rather than how headers, codes, flashes and bodies get written.
package resp
