// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveUpstream(t *testing.T) {
	before := testutil.ToFloat64(upstreamRequests.WithLabelValues("api.example.com", "200"))
	ObserveUpstream("api.example.com", "200", time.Millisecond*25)
	after := testutil.ToFloat64(upstreamRequests.WithLabelValues("api.example.com", "200"))
	if after-before != 1 {
		t.Errorf("expected upstream counter to increase by 1, got %f", after-before)
	}
}

func TestObserveSearch(t *testing.T) {
	before := testutil.ToFloat64(searches.WithLabelValues("ok"))
	ObserveSearch("ok")
	ObserveSearch("ok")
	after := testutil.ToFloat64(searches.WithLabelValues("ok"))
	if after-before != 2 {
		t.Errorf("expected search counter to increase by 2, got %f", after-before)
	}
}

func TestObserveAdvisory(t *testing.T) {
	before := testutil.ToFloat64(advisories.WithLabelValues("fallback"))
	ObserveAdvisory("fallback")
	after := testutil.ToFloat64(advisories.WithLabelValues("fallback"))
	if after-before != 1 {
		t.Errorf("expected advisory counter to increase by 1, got %f", after-before)
	}
}

func TestHandler(t *testing.T) {
	ObserveSearch("not_found")
	recorder := httptest.NewRecorder()
	Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status code 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "skycast_searches_total") {
		t.Error("expected metrics output to contain skycast_searches_total")
	}
}
