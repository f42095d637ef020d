package middleware_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arvoredigital/portaria/http/middleware"
)

func TestGetIPAddress(t *testing.T) {
	for _, tc := range []struct {
		name     string
		header   http.Header
		expected string
	}{
		{"Empty", http.Header{}, "0.0.0.0"},
		{"Public", http.Header{"X-Forwarded-For": []string{"44.44.44.44"}}, "44.44.44.44"},
		{"SkipsPrivate", http.Header{"X-Forwarded-For": []string{"44.44.44.44, 10.0.0.1"}}, "44.44.44.44"},
		{"RealIp", http.Header{"X-Real-Ip": []string{"44.44.44.44"}}, "44.44.44.44"},
		{"Loopback", http.Header{"X-Forwarded-For": []string{"127.0.0.1"}}, "0.0.0.0"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, middleware.GetIPAddress(tc.header))
		})
	}
}
