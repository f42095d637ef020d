package session

import (
	"net/http"

	gorilla "github.com/gorilla/sessions"
)

// keys used internal to specific implementations of different interfaces.
const (
	sessionKey      = "portaria-session-gorilla" // used by Service
	tokenSessionKey = sessionKey + "-tokens"     // used by Session
)

// Tokens are the opaque provider session tokens carried in the app session.
type Tokens struct {
	Access  string
	Refresh string
}

// The Sessionable wraps methods for basic adding values to, deleting, and getting values from a session
// associated with an *http.Request and saving those to the session store.
type Sessionable interface {
	Delete(w http.ResponseWriter, r *http.Request) error
	Get(key string) any
	ResetExpiry(w http.ResponseWriter, r *http.Request) error
	Save(w http.ResponseWriter, r *http.Request) error
	Set(w http.ResponseWriter, r *http.Request, key string, val any) error
}

// The TokenSessionable wraps methods for adding, removing, and retrieving
// provider session tokens from a session.
type TokenSessionable interface {
	DeregisterTokens(w http.ResponseWriter, r *http.Request) error
	RegisterTokens(w http.ResponseWriter, r *http.Request, tokens Tokens) error
	Tokens() (Tokens, error)
}

// The FlashSessionable wraps methods for setting and popping flash messages.
type FlashSessionable interface {
	ClearFlashes(w http.ResponseWriter, r *http.Request)
	Flashes(w http.ResponseWriter, r *http.Request) []Flash
	SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error
}

// The PortariaSessionable composes session's major interfaces.
type PortariaSessionable interface {
	FlashSessionable
	Sessionable
	TokenSessionable
}

// A Session provides all functionality for managing a fully featured session.
//
// Its functionality is implemented by lightly wrapping a gorilla.Session.
type Session struct {
	s *gorilla.Session
}

// NewSession constructs a new Session as an implementation of PortariaSessionable
// from a *gorilla.Session.
//
// Typical usage is to pass in the value retrieved from a http.Request.Context.
func NewSession(g *gorilla.Session) PortariaSessionable { return Session{s: g} }

func (s Session) ClearFlashes(w http.ResponseWriter, r *http.Request) {
	_ = s.Flashes(w, r)
}

// Delete removes a session by making the MaxAge negative.
func (s Session) Delete(w http.ResponseWriter, r *http.Request) error {
	s.s.Options.MaxAge = -1
	return s.Save(w, r)
}

// DeregisterTokens removes the provider tokens from the session.
func (s Session) DeregisterTokens(w http.ResponseWriter, r *http.Request) error {
	delete(s.s.Values, tokenSessionKey)
	return s.Save(w, r)
}

// Flashes retrieves []Flash stored in the session.
func (s Session) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	raw := s.s.Flashes()
	fs := make([]Flash, 0)
	for _, r := range raw {
		f, ok := r.(Flash)
		if !ok {
			continue
		}

		fs = append(fs, f)
	}
	if len(fs) > 0 {
		// NOTE: Flashes are removed after they are accessed,
		// but the session needs to be saved for them to be finally removed
		if err := s.Save(w, r); err != nil {
			return nil
		}
	}

	return fs
}

// Get retrieves a value from the session according to the key passed in.
func (s Session) Get(key string) any {
	return s.s.Values[key]
}

// RegisterTokens stores the provider session tokens in the session.
func (s Session) RegisterTokens(w http.ResponseWriter, r *http.Request, tokens Tokens) error {
	s.s.Values[tokenSessionKey] = tokens
	return s.Save(w, r)
}

// ResetExpiry resets the expiration of the session by saving it.
func (s Session) ResetExpiry(w http.ResponseWriter, r *http.Request) error {
	return s.Save(w, r)
}

// Save wraps gorilla.Session.Save, saving the session in the request.
func (s Session) Save(w http.ResponseWriter, r *http.Request) error { return s.s.Save(r, w) }

// Set stores a value according to the key passed in on the session.
func (s Session) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	s.s.Values[key] = val
	return s.Save(w, r)
}

// SetFlash stores the passed in Flash in the session.
func (s Session) SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error {
	s.s.AddFlash(flash)
	return s.Save(w, r)
}

// Tokens gets the provider session tokens out of the session.
// Tokens should be present in a session if the user successfully authenticated.
// If none can be found, ErrNoSession returns.
// This ought to only happen when a user is going through an authentication workflow
// or hitting unauthenticated pages.
//
// If the stored value is not a Tokens, ErrNotValid returns and represents a programming error.
func (s Session) Tokens() (Tokens, error) {
	intfVal, ok := s.s.Values[tokenSessionKey]
	if !ok {
		return Tokens{}, ErrNoSession
	}

	val, ok := intfVal.(Tokens)
	if !ok {
		return Tokens{}, ErrNotValid
	}

	return val, nil
}
