// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package gpsd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stratoberry/go-gpsd"

	"github.com/wneessen/skycast/internal/geolocation"
)

const (
	testLat = 40.7185
	testLon = -74.0025

	tpvFix = `{"class":"TPV","device":"/dev/ttyACM0","mode":3,"time":"2025-11-24T10:44:41.000Z",` +
		`"lat":40.718537,"lon":-74.002521,"alt":75.0,"epx":8.100,"epy":11.400,"epv":27.600}`
	tpvNoFix = `{"class":"TPV","device":"/dev/ttyACM0","mode":1}`
)

func TestNewGeolocationGPSDProvider(t *testing.T) {
	t.Run("new GPSd provider succeeds", func(t *testing.T) {
		var provider geolocation.Provider = NewGeolocationGPSDProvider()
		if provider == nil {
			t.Fatal("expected provider to be non-nil")
		}
		if !strings.EqualFold(provider.Name(), name) {
			t.Errorf("expected provider name to be %s, got %s", name, provider.Name())
		}
	})
}

func TestGeolocationGPSDProvider_Locate(t *testing.T) {
	t.Run("locate succeeds with a 2D fix", func(t *testing.T) {
		provider := NewGeolocationGPSDProvider()
		provider.fixFn = func(context.Context) (Fix, error) {
			return Fix{Lat: 1.23456, Lon: 2.34567, Acc: 3, Mode: gpsd.Mode2D}, nil
		}
		coord, err := provider.Locate(t.Context())
		if err != nil {
			t.Fatalf("failed to locate: %s", err)
		}
		if coord.Lat != 1.2345 || coord.Lon != 2.3456 || coord.Acc != 3 {
			t.Errorf("unexpected coordinate: %+v", coord)
		}
	})
	t.Run("locate fails without a fix", func(t *testing.T) {
		provider := NewGeolocationGPSDProvider()
		provider.fixFn = func(context.Context) (Fix, error) {
			return Fix{Lat: 1, Lon: 2, Mode: gpsd.NoFix}, nil
		}
		if _, err := provider.Locate(t.Context()); !errors.Is(err, ErrNoFix) {
			t.Errorf("expected error to be %s, got %v", ErrNoFix, err)
		}
	})
	t.Run("locate fails when gpsd fails", func(t *testing.T) {
		provider := NewGeolocationGPSDProvider()
		provider.fixFn = func(context.Context) (Fix, error) {
			return Fix{}, errors.New("intentionally failing")
		}
		if _, err := provider.Locate(t.Context()); err == nil {
			t.Fatal("expected locate to fail")
		}
	})
	t.Run("locate fails when gpsd is not reachable", func(t *testing.T) {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("failed to listen: %s", err)
		}
		addr := listener.Addr().String()
		_ = listener.Close()

		provider := NewGeolocationGPSDProvider()
		provider.addr = addr
		if _, err = provider.Locate(t.Context()); err == nil {
			t.Fatal("expected locate to fail")
		}
	})
	t.Run("locate reads the first fix from a gpsd server", func(t *testing.T) {
		addr, _ := fakeGPSD(t, tpvNoFix, tpvFix)
		provider := NewGeolocationGPSDProvider()
		provider.addr = addr

		ctx, cancel := context.WithTimeout(t.Context(), time.Second*5)
		defer cancel()
		coord, err := provider.Locate(ctx)
		if err != nil {
			t.Fatalf("failed to locate: %s", err)
		}
		if coord.Lat != testLat || coord.Lon != testLon {
			t.Errorf("expected %f,%f, got %f,%f", testLat, testLon, coord.Lat, coord.Lon)
		}
		wantAcc := geolocation.Truncate(math.Hypot(8.1, 11.4), geolocation.TruncPrecision)
		if coord.Acc != wantAcc {
			t.Errorf("expected accuracy to be %f, got %f", wantAcc, coord.Acc)
		}
	})
}

func TestGeolocationGPSDProvider_watch(t *testing.T) {
	t.Run("the session is closed after a fix", func(t *testing.T) {
		addr, closed := fakeGPSD(t, tpvFix)
		provider := NewGeolocationGPSDProvider()
		provider.addr = addr

		ctx, cancel := context.WithTimeout(t.Context(), time.Second*5)
		defer cancel()
		if _, err := provider.Locate(ctx); err != nil {
			t.Fatalf("failed to locate: %s", err)
		}
		select {
		case err := <-closed:
			if err != nil {
				t.Errorf("expected the server to read EOF, got: %s", err)
			}
		case <-time.After(time.Second * 2):
			t.Error("expected the gpsd connection to be closed after locate returned")
		}
	})
	t.Run("the session is closed on timeout", func(t *testing.T) {
		addr, closed := fakeGPSD(t, tpvNoFix)
		provider := NewGeolocationGPSDProvider()
		provider.addr = addr

		ctx, cancel := context.WithTimeout(t.Context(), time.Millisecond*500)
		defer cancel()
		if _, err := provider.Locate(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected error to be %s, got %v", context.DeadlineExceeded, err)
		}
		select {
		case err := <-closed:
			if err != nil {
				t.Errorf("expected the server to read EOF, got: %s", err)
			}
		case <-time.After(time.Second * 2):
			t.Error("expected the gpsd connection to be closed after locate returned")
		}
	})
}

func TestHorizontalAccuracy(t *testing.T) {
	tests := []struct {
		name string
		tpv  gpsd.TPVReport
		want float64
	}{
		{"error estimates", gpsd.TPVReport{Mode: gpsd.Mode3D, Epx: 3, Epy: 4}, 5},
		{"3D fallback", gpsd.TPVReport{Mode: gpsd.Mode3D}, fallbackAccuracy3DFix},
		{"2D fallback", gpsd.TPVReport{Mode: gpsd.Mode2D}, fallbackAccuracy2DFix},
		{"no fix", gpsd.TPVReport{Mode: gpsd.NoFix}, fallbackAccuracyNoFix},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := horizontalAccuracy(&tc.tpv); got != tc.want {
				t.Errorf("expected accuracy to be %f, got %f", tc.want, got)
			}
		})
	}
}

// fakeGPSD starts a minimal gpsd that greets the client and then emits the given reports. The
// returned channel receives the result of reading until the client hangs up, nil meaning EOF.
func fakeGPSD(t *testing.T, reports ...string) (string, <-chan error) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %s", err)
	}
	t.Cleanup(func() { _ = listener.Close() })

	closed := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		_, _ = fmt.Fprintln(conn, `{"class":"VERSION","release":"3.25","rev":"3.25","proto_major":3,"proto_minor":15}`)
		// The WATCH command carries no newline, so the read ends with the deadline.
		reader := bufio.NewReader(conn)
		_ = conn.SetReadDeadline(time.Now().Add(time.Millisecond * 200))
		_, _ = reader.ReadString('\n')
		for _, report := range reports {
			_, _ = fmt.Fprintln(conn, report)
		}

		_ = conn.SetReadDeadline(time.Now().Add(time.Second * 5))
		_, err = io.Copy(io.Discard, reader)
		closed <- err
	}()

	return listener.Addr().String(), closed
}
