package middleware

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/arvoredigital/portaria"
)

// ReportPanic encloses the env and returns an Adapter that
// wraps the handler in sentryhttp.Handle
// in order to recover and report panics.
//
// Panics are not reported in development or testing.
func ReportPanic(env portaria.Environment) Adapter {
	if env.IsDevelopment() || env.IsTesting() {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         false,
		WaitForDelivery: true,
	})

	return func(handler http.Handler) http.Handler {
		return sh.Handle(handler)
	}
}
