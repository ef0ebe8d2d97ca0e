// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testhelper provides shared helpers for package tests.
package testhelper

import (
	"bytes"
	"io"
	stdhttp "net/http"
	"os"
	"strings"
	"testing"
)

// TestOnlineAPIURL is a reachable endpoint used by timeout and integration tests.
const TestOnlineAPIURL = "https://api.open-meteo.com/v1/forecast"

// MockRoundTripper lets tests replace the transport of an http.Client.
type MockRoundTripper struct {
	Fn func(req *stdhttp.Request) (*stdhttp.Response, error)
}

func (m MockRoundTripper) RoundTrip(req *stdhttp.Request) (*stdhttp.Response, error) {
	return m.Fn(req)
}

// PerformIntegrationTests skips the calling test unless PERFORM_INTEGRATION_TEST is set to true.
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if val := os.Getenv("PERFORM_INTEGRATION_TEST"); !strings.EqualFold(val, "true") {
		t.Skip("skipping integration test")
	}
}

// FileResponder returns a round trip function that answers every request with the given
// fixture file and status code.
func FileResponder(t *testing.T, file string, code int) func(req *stdhttp.Request) (*stdhttp.Response, error) {
	t.Helper()
	return func(req *stdhttp.Request) (*stdhttp.Response, error) {
		data, err := os.Open(file)
		if err != nil {
			t.Fatalf("failed to open JSON response file: %s", err)
		}
		return &stdhttp.Response{
			StatusCode: code,
			Body:       data,
			Header:     make(stdhttp.Header),
		}, nil
	}
}

// StringResponder returns a round trip function that answers every request with the given
// body and status code.
func StringResponder(body string, code int) func(req *stdhttp.Request) (*stdhttp.Response, error) {
	return func(req *stdhttp.Request) (*stdhttp.Response, error) {
		return &stdhttp.Response{
			StatusCode: code,
			Body:       io.NopCloser(bytes.NewBufferString(body)),
			Header:     make(stdhttp.Header),
		}, nil
	}
}
