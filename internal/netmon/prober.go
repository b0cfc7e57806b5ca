// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

// Package netmon watches connectivity to the push gateway and classifies it
// into the tri-state signal the sync layer keys off
// (online / offline / slow).
package netmon

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/models"
)

// Prober performs one connectivity measurement against the probe target.
type Prober interface {
	Probe(ctx context.Context) models.Probe
}

type httpProber struct {
	client *resty.Client
	url    string

	logger *logger.Logger
}

// NewHTTPProber constructs a Prober that issues a HEAD request to probeURL
// and measures the round trip. Any HTTP response, including an error status,
// counts as reachable: the measurement is about the network path, not the
// endpoint's health.
func NewHTTPProber(probeURL string, timeout time.Duration, logger *logger.Logger) Prober {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	cli := resty.New().SetTimeout(timeout)

	return &httpProber{client: cli, url: probeURL, logger: logger}
}

func (p *httpProber) Probe(ctx context.Context) models.Probe {
	start := time.Now()
	_, err := p.client.R().SetContext(ctx).Head(p.url)
	rtt := time.Since(start)

	if err != nil {
		p.logger.Debug().
			Str("func", "httpProber.Probe").
			Str("url", p.url).
			Err(err).
			Msg("probe target unreachable")
		return models.Probe{Reachable: false, RTT: rtt}
	}

	return models.Probe{Reachable: true, RTT: rtt}
}
