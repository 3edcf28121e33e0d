package main

import (
	"fmt"
	"net/url"

	"github.com/lumentouch/touchcore/internal/touch/l1scan"
	"github.com/lumentouch/touchcore/internal/touchconfig"
)

// dialScanner opens the Scanner a SensorConfig's URI names. Supported
// schemes: "serial" (USB-serial planar scanner) and "udp" (framed UDP scan
// packets). A mock:// URI has no live counterpart; replay sessions build
// their Scanner map directly rather than going through this dialer.
func dialScanner(cfg touchconfig.SensorConfig) (l1scan.Scanner, error) {
	u, err := url.Parse(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("sensor %q: parse uri %q: %w", cfg.ID, cfg.URI, err)
	}

	params := l1scan.Params{StepCount: cfg.StepCount, AngularStepRadians: cfg.AngularStepRadians}

	switch u.Scheme {
	case "serial":
		return l1scan.OpenSerialScanner(u.Path, params)
	case "udp":
		return l1scan.OpenNetworkScanner(u.Host, params)
	default:
		return nil, fmt.Errorf("sensor %q: unsupported scanner scheme %q", cfg.ID, u.Scheme)
	}
}
