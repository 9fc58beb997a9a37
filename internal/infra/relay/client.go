package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sethvargo/go-retry"

	"github.com/marketdesk/relay/internal/core/domain"
	"github.com/marketdesk/relay/internal/metrics"
)

// Client talks to the relay service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a relay client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
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

// GetNonce fetches the wallet's next unused transaction counter. The relay
// is the source of truth; the value is never cached or incremented locally.
func (c *Client) GetNonce(ctx context.Context, wallet common.Address) (string, error) {
	q := url.Values{}
	q.Set("address", wallet.Hex())
	q.Set("type", "SAFE")

	var resp nonceResponse
	if err := c.getJSON(ctx, "/nonce", q, &resp); err != nil {
		return "", fmt.Errorf("get nonce: %w", err)
	}
	if resp.Nonce == "" {
		return "", fmt.Errorf("get nonce: empty nonce for %s", wallet.Hex())
	}
	return resp.Nonce, nil
}

// IsDeployed asks the relay whether the wallet contract exists on-chain.
func (c *Client) IsDeployed(ctx context.Context, wallet common.Address) (bool, error) {
	q := url.Values{}
	q.Set("address", wallet.Hex())

	var resp deployedResponse
	if err := c.getJSON(ctx, "/deployed", q, &resp); err != nil {
		return false, fmt.Errorf("get deployed: %w", err)
	}
	return resp.Deployed, nil
}

// Deploy submits a signed wallet-creation request and returns the relay
// transaction id.
func (c *Client) Deploy(ctx context.Context, req DeployRequest) (string, error) {
	id, err := c.submit(ctx, "/deploy", req, string(domain.SubmissionDeploy))
	if err != nil {
		return "", fmt.Errorf("deploy: %w", err)
	}
	return id, nil
}

// Execute submits a signed wallet transaction and returns the relay
// transaction id.
func (c *Client) Execute(ctx context.Context, req ExecuteRequest) (string, error) {
	id, err := c.submit(ctx, "/execute", req, string(domain.SubmissionApprovals))
	if err != nil {
		return "", fmt.Errorf("execute: %w", err)
	}
	return id, nil
}

// GetTransaction fetches the current state of a submitted transaction.
// The relay returns either a bare object or a one-element array.
func (c *Client) GetTransaction(ctx context.Context, id string) (domain.RelayTransactionRecord, error) {
	q := url.Values{}
	q.Set("id", id)

	body, err := c.get(ctx, "/transaction", q)
	if err != nil {
		return domain.RelayTransactionRecord{}, fmt.Errorf("get transaction: %w", err)
	}

	var status transactionStatus
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var statuses []transactionStatus
		if err := json.Unmarshal(trimmed, &statuses); err != nil {
			return domain.RelayTransactionRecord{}, fmt.Errorf("get transaction: parse response: %w", err)
		}
		if len(statuses) == 0 {
			return domain.RelayTransactionRecord{}, fmt.Errorf("get transaction: no record for id %s", id)
		}
		status = statuses[0]
	} else if err := json.Unmarshal(trimmed, &status); err != nil {
		return domain.RelayTransactionRecord{}, fmt.Errorf("get transaction: parse response: %w", err)
	}

	return domain.RelayTransactionRecord{
		TransactionID: id,
		Hash:          status.TransactionHash,
		State:         domain.RelayTransactionState(status.State),
	}, nil
}

// submit POSTs a signed payload. Transport-level failures are retried with
// the same payload since nothing reached the relay; once a response is
// received the outcome is processed exactly once, and a rejection is never
// retried with the same signature.
func (c *Client) submit(ctx context.Context, path string, payload any, kind string) (string, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()
	var body []byte
	var statusCode int

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("relay unreachable: %w", err))
		}
		defer resp.Body.Close()

		statusCode = resp.StatusCode
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.RelaySubmissions.WithLabelValues(kind, "unreachable").Inc()
		return "", err
	}
	metrics.RelaySubmitLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if statusCode < 200 || statusCode >= 300 {
		metrics.RelaySubmissions.WithLabelValues(kind, "rejected").Inc()
		if strings.Contains(strings.ToLower(string(body)), "nonce") {
			return "", fmt.Errorf("http %d: %s: %w", statusCode, string(body), domain.ErrStaleNonce)
		}
		return "", fmt.Errorf("http %d: %s", statusCode, string(body))
	}

	var resp submitResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	id := resp.TransactionID
	if id == "" {
		id = resp.ID
	}
	if id == "" {
		return "", fmt.Errorf("response missing transaction id: %s", string(body))
	}
	metrics.RelaySubmissions.WithLabelValues(kind, "accepted").Inc()
	return id, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	body, err := c.get(ctx, path, q)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
