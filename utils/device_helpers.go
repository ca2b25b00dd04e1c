// Package utils holds backend helpers shared by tests.
package utils

import (
	"errors"

	"github.com/notargets/gocca"
)

// TestDevice creates a device for testing, preferring parallel backends and
// falling back to Serial. It returns an error when no backend is available
// so callers can skip device-bound tests.
func TestDevice() (*gocca.OCCADevice, error) {
	backends := []string{
		`{"mode": "OpenMP"}`,
		`{"mode": "CUDA", "device_id": 0}`,
		`{"mode": "Serial"}`,
	}

	for _, props := range backends {
		device, err := gocca.NewDevice(props)
		if err == nil {
			return device, nil
		}
	}
	return nil, errors.New("utils: no backend available")
}
