// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package billing queries the external billing provider for subscription
// state. Inkwell never stores card data; the provider is the source of
// truth and this client only mirrors its answers into the local
// subscriptions table.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Status describes a customer's subscription as reported by the provider.
type Status struct {
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// Client talks to the billing provider's REST API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a billing client. baseURL is the provider origin
// without a trailing slash.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// CustomerStatus fetches the current subscription status for a provider
// customer ID.
func (c *Client) CustomerStatus(ctx context.Context, customerID string) (*Status, error) {
	url := c.baseURL + "/v1/customers/" + customerID + "/subscription"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("billing request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("billing http: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("billing read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("billing API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var status Status
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("billing unmarshal: %w", err)
	}

	return &status, nil
}
