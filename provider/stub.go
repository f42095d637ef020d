package provider

import (
	"context"

	"github.com/arvoredigital/portaria"
)

var _ Client = (*Stub)(nil)

// A Stub implements Client for tests.
//
// Each operation defers to the matching func field when set
// and otherwise succeeds with zero values.
type Stub struct {
	ResetPasswordForEmailFn  func(ctx context.Context, email, redirectTo string) error
	SignInWithPasswordFn     func(ctx context.Context, email, password string) (Session, error)
	SignUpFn                 func(ctx context.Context, params SignUpParams) error
	UpdateUserFn             func(ctx context.Context, password string) error
	SignOutFn                func(ctx context.Context) error
	ResendFn                 func(ctx context.Context, typ ResendType, email string) error
	GetUserFn                func(ctx context.Context) (portaria.User, error)
	ExchangeCodeForSessionFn func(ctx context.Context, code string) (Session, error)
}

func (s *Stub) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	if s.ResetPasswordForEmailFn == nil {
		return nil
	}
	return s.ResetPasswordForEmailFn(ctx, email, redirectTo)
}

func (s *Stub) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	if s.SignInWithPasswordFn == nil {
		return Session{}, nil
	}
	return s.SignInWithPasswordFn(ctx, email, password)
}

func (s *Stub) SignUp(ctx context.Context, params SignUpParams) error {
	if s.SignUpFn == nil {
		return nil
	}
	return s.SignUpFn(ctx, params)
}

func (s *Stub) UpdateUser(ctx context.Context, password string) error {
	if s.UpdateUserFn == nil {
		return nil
	}
	return s.UpdateUserFn(ctx, password)
}

func (s *Stub) SignOut(ctx context.Context) error {
	if s.SignOutFn == nil {
		return nil
	}
	return s.SignOutFn(ctx)
}

func (s *Stub) Resend(ctx context.Context, typ ResendType, email string) error {
	if s.ResendFn == nil {
		return nil
	}
	return s.ResendFn(ctx, typ, email)
}

func (s *Stub) GetUser(ctx context.Context) (portaria.User, error) {
	if s.GetUserFn == nil {
		return portaria.User{}, nil
	}
	return s.GetUserFn(ctx)
}

func (s *Stub) ExchangeCodeForSession(ctx context.Context, code string) (Session, error) {
	if s.ExchangeCodeForSessionFn == nil {
		return Session{}, nil
	}
	return s.ExchangeCodeForSessionFn(ctx, code)
}
