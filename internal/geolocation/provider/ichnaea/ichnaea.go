// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package ichnaea

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mdlayher/wifi"

	"github.com/wneessen/skycast/internal/geolocation"
	"github.com/wneessen/skycast/internal/http"
)

const (
	apiEndpoint   = "https://api.beacondb.net/v1/geolocate"
	lookupTimeout = time.Second * 5
	name          = "ichnaea"
)

// GeolocationICHNAEAProvider locates the host through an Ichnaea compatible API using the
// visible WiFi access points. Without WiFi support the lookup falls back to the IP address.
type GeolocationICHNAEAProvider struct {
	name   string
	http   *http.Client
	wlan   *wifi.Client
	scanFn func() ([]WirelessNetwork, error)
}

type APIResult struct {
	Location struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
	Error    *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type WirelessNetwork struct {
	LastSeen       int64  `json:"age"`
	MACAddress     string `json:"macAddress"`
	SignalStrength int32  `json:"signalStrength"`
}

type request struct {
	ConsiderIP   bool              `json:"considerIp"`
	Accesspoints []WirelessNetwork `json:"wifiAccessPoints,omitempty"`
}

func NewGeolocationICHNAEAProvider(http *http.Client) (*GeolocationICHNAEAProvider, error) {
	if http == nil {
		return nil, fmt.Errorf("http client is required")
	}

	provider := &GeolocationICHNAEAProvider{
		name: name,
		http: http,
	}
	if wlan, err := wifi.New(); err == nil {
		provider.wlan = wlan
	}
	provider.scanFn = provider.wifiAccessPoints
	return provider, nil
}

func (p *GeolocationICHNAEAProvider) Name() string {
	return p.name
}

// Locate scans for access points and asks the API for the matching position.
func (p *GeolocationICHNAEAProvider) Locate(ctx context.Context) (geolocation.Coordinate, error) {
	// A failed scan still allows an IP based lookup.
	aps, _ := p.scanFn()

	req := request{
		ConsiderIP:   true,
		Accesspoints: aps,
	}
	bodyBuffer := bytes.NewBuffer(nil)
	if err := json.NewEncoder(bodyBuffer).Encode(req); err != nil {
		return geolocation.Coordinate{}, fmt.Errorf("failed to encode wifi list to JSON: %w", err)
	}

	result := new(APIResult)
	code, err := p.http.PostWithTimeout(ctx, apiEndpoint, result, bodyBuffer,
		map[string]string{"Content-Type": "application/json"}, lookupTimeout)
	if err != nil {
		return geolocation.Coordinate{}, fmt.Errorf("failed to get geolocation data from API: %w", err)
	}
	if code != 200 {
		msg := ""
		if result.Error != nil {
			msg = result.Error.Message
		}
		return geolocation.Coordinate{}, fmt.Errorf("geolocation API returned non-positive response code: %d (%s)",
			code, msg)
	}

	return geolocation.Coordinate{
		Lat: geolocation.Truncate(result.Location.Latitude, geolocation.TruncPrecision),
		Lon: geolocation.Truncate(result.Location.Longitude, geolocation.TruncPrecision),
		Acc: geolocation.Truncate(result.Accuracy, geolocation.TruncPrecision),
	}, nil
}

func (p *GeolocationICHNAEAProvider) wifiAccessPoints() ([]WirelessNetwork, error) {
	if p.wlan == nil {
		return nil, nil
	}

	var checkIfaces []*wifi.Interface
	var list []WirelessNetwork

	ifaces, err := p.wlan.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	for _, iface := range ifaces {
		if iface.Type != wifi.InterfaceTypeStation {
			continue
		}
		checkIfaces = append(checkIfaces, iface)
	}
	if len(checkIfaces) == 0 {
		return nil, nil
	}

	for _, iface := range checkIfaces {
		aps, err := p.wlan.AccessPoints(iface)
		if err != nil {
			continue
		}
		for _, ap := range aps {
			// Networks opting out of location services carry the _nomap suffix.
			if ap.SSID == "" || ap.SSID[0] == '\x00' || strings.HasSuffix(ap.SSID, "_nomap") {
				continue
			}
			list = append(list, WirelessNetwork{
				SignalStrength: ap.Signal / 100,
				MACAddress:     ap.BSSID.String(),
				LastSeen:       ap.LastSeen.Milliseconds(),
			})
		}
	}

	return list, nil
}
