package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/futura/kpigate/internal/domain/kpi"
)

// maxResponseBytes bounds the oracle response body. Anything larger is
// treated as truncated output.
const maxResponseBytes = 1 << 20

// Client invokes a remote scoring oracle over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for the oracle at endpoint. Call timeouts are
// bounded by the caller's context, not a client-wide deadline.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{},
	}
}

// wireRequest mirrors the JSON body sent to the oracle.
type wireRequest struct {
	CanonicalDomain    string             `json:"canonical_domain"`
	BrandName          string             `json:"brand_name,omitempty"`
	Market             string             `json:"market"`
	Sector             string             `json:"sector,omitempty"`
	Segment            string             `json:"segment"`
	Timeframe          string             `json:"timeframe"`
	IndustryDefinition string             `json:"industry_definition,omitempty"`
	Seed               *int64             `json:"seed,omitempty"`
	Overrides          map[string]float64 `json:"overrides,omitempty"`
}

// Invoke implements Invoker. Every failure mode maps onto a typed kind so
// the orchestrator can treat them uniformly.
func (c *Client) Invoke(ctx context.Context, req Request) (kpi.Payload, error) {
	d := req.Descriptor.Resolve()
	body, err := json.Marshal(wireRequest{
		CanonicalDomain:    d.CanonicalDomain,
		BrandName:          d.BrandName,
		Market:             d.Market,
		Sector:             d.Sector,
		Segment:            d.Segment,
		Timeframe:          d.Timeframe,
		IndustryDefinition: d.IndustryDefinition,
		Seed:               d.Seed,
		Overrides:          req.Overrides,
	})
	if err != nil {
		return kpi.Payload{}, NewError(KindInvalidJSON, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return kpi.Payload{}, NewError(KindNetwork, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return kpi.Payload{}, NewError(KindTimeout, err)
		}
		return kpi.Payload{}, NewError(KindNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return kpi.Payload{}, NewError(KindHTTPError, fmt.Errorf("status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return kpi.Payload{}, NewError(KindTimeout, err)
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return kpi.Payload{}, NewError(KindTruncated, err)
		}
		return kpi.Payload{}, NewError(KindNetwork, err)
	}
	if len(raw) > maxResponseBytes {
		return kpi.Payload{}, NewError(KindTruncated, fmt.Errorf("response exceeds %d bytes", maxResponseBytes))
	}

	var payload kpi.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) && syntaxErr.Offset >= int64(len(raw)) {
			return kpi.Payload{}, NewError(KindTruncated, err)
		}
		return kpi.Payload{}, NewError(KindInvalidJSON, err)
	}

	applyOverrides(&payload, req.Overrides)
	return payload, nil
}

// Ensure Client implements Invoker at compile time.
var _ Invoker = (*Client)(nil)
