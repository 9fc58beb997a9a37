package evm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marketdesk/relay/internal/metrics"
)

// Provider is a single JSON-RPC endpoint.
type Provider struct {
	name       string
	endpoint   string
	httpClient *http.Client
}

// NewProvider creates an HTTP JSON-RPC provider.
func NewProvider(name, endpoint string, timeout time.Duration) *Provider {
	return &Provider{
		name:     name,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Name returns the provider's configured name.
func (p *Provider) Name() string { return p.name }

// Call makes a single JSON-RPC call.
func (p *Provider) Call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	reqBody := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		metrics.ChainCalls.WithLabelValues(p.name, method, "error").Inc()
		return nil, fmt.Errorf("rpc call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ChainCalls.WithLabelValues(p.name, method, "error").Inc()
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.ChainCalls.WithLabelValues(p.name, method, "error").Inc()
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		metrics.ChainCalls.WithLabelValues(p.name, method, "error").Inc()
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if rpcResp.Error != nil {
		metrics.ChainCalls.WithLabelValues(p.name, method, "error").Inc()
		return nil, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	metrics.ChainCalls.WithLabelValues(p.name, method, "ok").Inc()
	return rpcResp.Result, nil
}
