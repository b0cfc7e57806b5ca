// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tabwave

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tabwave/pushsync/internal/logger"
	"github.com/tabwave/pushsync/models"
)

// HTTPClientConfig carries the settings for the REST implementation of
// [ServerAdapter].
type HTTPClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

type httpServerAdapter struct {
	client *resty.Client
	tokens TokenSource

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter]. It normalises and validates the base URL from cfg.BaseURL
// and configures the underlying resty client with the resolved base URL and
// request timeout. Bearer credentials are pulled from tokens per request.
//
// Returns an error if cfg.BaseURL is empty or cannot be parsed as a valid URL.
func NewHTTPServerAdapter(cfg HTTPClientConfig, tokens TokenSource, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid gateway address: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout)

	return &httpServerAdapter{client: cli, tokens: tokens, logger: logger}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// GetVapidKey implements [ServerAdapter]. It GETs
// GET /v1/web-push/vapid-public-key and returns the decoded public key.
func (h *httpServerAdapter) GetVapidKey(ctx context.Context) (string, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return "", err
	}

	resp, err := req.Get("/v1/web-push/vapid-public-key")
	if err != nil {
		return "", fmt.Errorf("%w: vapid key request: %w", ErrUnreachable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	var out models.VapidKeyResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("%w: decode vapid key response: %w", ErrServerError, err)
	}
	if out.PublicKey == "" {
		return "", fmt.Errorf("%w: empty vapid public key", ErrServerError)
	}

	return out.PublicKey, nil
}

// Subscribe implements [ServerAdapter]. It POSTs the subscription to
// POST /v1/web-push/subscribe and returns the decoded result.
func (h *httpServerAdapter) Subscribe(ctx context.Context, req models.SubscribeRequest) (models.SubscribeResponse, error) {
	r, err := h.authedRequest(ctx)
	if err != nil {
		return models.SubscribeResponse{}, err
	}

	resp, err := r.
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/v1/web-push/subscribe")
	if err != nil {
		return models.SubscribeResponse{}, fmt.Errorf("%w: subscribe request: %w", ErrUnreachable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SubscribeResponse{}, err
	}

	var out models.SubscribeResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.SubscribeResponse{}, fmt.Errorf("%w: decode subscribe response: %w", ErrServerError, err)
	}

	return out, nil
}

// Unsubscribe implements [ServerAdapter]. It POSTs the device reference to
// POST /v1/web-push/unsubscribe.
func (h *httpServerAdapter) Unsubscribe(ctx context.Context, req models.UnsubscribeRequest) error {
	r, err := h.authedRequest(ctx)
	if err != nil {
		return err
	}

	resp, err := r.
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/v1/web-push/unsubscribe")
	if err != nil {
		return fmt.Errorf("%w: unsubscribe request: %w", ErrUnreachable, err)
	}

	return mapHTTPError(resp)
}

// UpdatePreferences implements [ServerAdapter]. It PUTs the encrypted
// preference blob to PUT /v1/web-push/preferences.
func (h *httpServerAdapter) UpdatePreferences(ctx context.Context, req models.PreferencesRequest) error {
	r, err := h.authedRequest(ctx)
	if err != nil {
		return err
	}

	resp, err := r.
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Put("/v1/web-push/preferences")
	if err != nil {
		return fmt.Errorf("%w: preferences request: %w", ErrUnreachable, err)
	}

	return mapHTTPError(resp)
}

// ListSubscriptions implements [ServerAdapter]. It GETs
// GET /v1/web-push/subscriptions and returns the decoded subscription list.
func (h *httpServerAdapter) ListSubscriptions(ctx context.Context) ([]models.ServerSubscription, error) {
	req, err := h.authedRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.Get("/v1/web-push/subscriptions")
	if err != nil {
		return nil, fmt.Errorf("%w: subscriptions request: %w", ErrUnreachable, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var out models.SubscriptionsResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: decode subscriptions response: %w", ErrServerError, err)
	}

	return out.Subscriptions, nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) (*resty.Request, error) {
	token, err := h.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve credential: %w", err)
	}

	return h.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token), nil
}

func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, body)
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: http %d: %s", ErrServerError, code, body)
	case code >= http.StatusBadRequest:
		return fmt.Errorf("%w: http %d: %s", ErrBadRequest, code, body)
	default:
		return fmt.Errorf("http %d: %s", code, body)
	}
}
