package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvoredigital/portaria/http/middleware"
)

func TestChain(t *testing.T) {
	// Arrange
	var got []string
	tag := func(name string) middleware.Adapter {
		return func(h http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = append(got, name)
				h.ServeHTTP(w, r)
			})
		}
	}

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, "handler")
	})

	// Act
	chained := middleware.Chain(h, tag("first"), tag("second"))
	chained.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, []string{"first", "second", "handler"}, got)
}

func TestNoopAdapter(t *testing.T) {
	// Arrange
	called := false
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	// Act
	middleware.NoopAdapter(h).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.True(t, called)
}
