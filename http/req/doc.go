// Package req parses HTTP request payloads - JSON bodies,
// URL-encoded forms and query params - into structs.
package req
