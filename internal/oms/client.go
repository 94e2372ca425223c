// Package oms queries the CMS OMS aggregation API for fill metadata.
package oms

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Metadata describes a fill as reported by OMS. It is consumed once per
// capture, to label the screenshot and its filename.
type Metadata struct {
	Bunches int
	System  string
	Type    string
	Year    string
}

// Label renders the banner form, e.g. "[2024 pp 2400b]".
func (m *Metadata) Label() string {
	return fmt.Sprintf("[%s %s %db]", m.Year, m.System, m.Bunches)
}

// Config holds client settings. ClientID/ClientSecret are optional; when
// empty, requests go out unauthenticated and the lookup degrades per the
// caller's soft-failure handling.
type Config struct {
	BaseURL            string
	TokenURL           string
	ClientID           string
	ClientSecret       string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Client communicates with the OMS aggregation REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *tokenSource
}

// NewClient creates a client targeting the given OMS endpoint. The HTTP
// timeout is always bounded — a stuck metadata lookup must not stall the
// capture loop indefinitely.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.InsecureSkipVerify {
		// The original tool disables verification for hosts behind the
		// CERN proxy chain.
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		c.tokens = newTokenSource(cfg.TokenURL, cfg.ClientID, cfg.ClientSecret, httpClient)
	}
	return c
}

// fillAttributes is the fixed attribute set requested per fill.
const fillAttributes = "bunches_colliding,fill_type_runtime,energy,start_time"

// FillMetadata fetches metadata for one fill number.
// GET /fills?filter[fill_number][EQ]=<n> -> { data: [ { attributes: {...} } ] }
// Any failure — transport, auth, no matching entry — is returned as an
// error; callers treat all of them as "no metadata available".
func (c *Client) FillMetadata(ctx context.Context, fillNumber int) (*Metadata, error) {
	q := url.Values{}
	q.Set("filter[fill_number][EQ]", fmt.Sprintf("%d", fillNumber))
	q.Set("fields[fills]", fillAttributes)
	q.Set("page[limit]", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/fills?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain OMS token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach OMS: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OMS returned %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data []struct {
			Attributes struct {
				BunchesColliding *int   `json:"bunches_colliding"`
				FillTypeRuntime  string `json:"fill_type_runtime"`
				StartTime        string `json:"start_time"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("no OMS entry for fill %d", fillNumber)
	}

	attrs := result.Data[0].Attributes
	return deriveMetadata(attrs.BunchesColliding, attrs.FillTypeRuntime, attrs.StartTime), nil
}

// deriveMetadata applies the display conventions: sentinel "UNKNOWN" for
// missing type/year, year taken from the first four bytes of start_time,
// and the collision-system heuristic on the runtime fill type.
func deriveMetadata(bunches *int, fillType, startTime string) *Metadata {
	m := &Metadata{
		Type: "UNKNOWN",
		Year: "UNKNOWN",
	}
	if bunches != nil {
		m.Bunches = *bunches
	}
	if fillType != "" {
		m.Type = fillType
	}
	if len(startTime) >= 4 {
		m.Year = startTime[:4]
	}

	upper := strings.ToUpper(fillType)
	switch {
	case strings.Contains(upper, "ION") || strings.Contains(upper, "PBPB"):
		m.System = "PbPb"
	default:
		m.System = "pp"
	}
	return m
}
