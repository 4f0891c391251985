// Package rpc reads normalized Move modules from a Sui fullnode over
// JSON-RPC.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tristendillon/govgen/core/logger"
)

const (
	DefaultURL     = "https://fullnode.mainnet.sui.io:443"
	DefaultTimeout = 15 * time.Second

	methodNormalizedModule  = "sui_getNormalizedMoveModule"
	methodNormalizedModules = "sui_getNormalizedMoveModulesByPackage"
)

// FetchError reports a failed descriptor fetch. Callers may fall back to
// degraded handling on it instead of failing.
type FetchError struct {
	Method string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("rpc %s failed: %v", e.Method, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
	nextID  atomic.Int64
}

func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:     url,
		timeout: timeout,
		http:    &http.Client{},
	}
}

type request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// Error is a JSON-RPC error object returned by the node.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Message)
}

// GetNormalizedModule fetches one module of a published package.
func (c *Client) GetNormalizedModule(ctx context.Context, pkg, module string) (*NormalizedModule, error) {
	var mod NormalizedModule
	if err := c.call(ctx, methodNormalizedModule, []interface{}{pkg, module}, &mod); err != nil {
		return nil, err
	}
	return &mod, nil
}

// GetNormalizedModules fetches every module of a published package, keyed by
// module name.
func (c *Client) GetNormalizedModules(ctx context.Context, pkg string) (map[string]*NormalizedModule, error) {
	mods := make(map[string]*NormalizedModule)
	if err := c.call(ctx, methodNormalizedModules, []interface{}{pkg}, &mods); err != nil {
		return nil, err
	}
	return mods, nil
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return &FetchError{Method: method, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return &FetchError{Method: method, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Debug("POST %s %s %v", c.url, method, params)
	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Method: method, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &FetchError{Method: method, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return &FetchError{Method: method, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var rpcResp response
	if err := json.Unmarshal(raw, &rpcResp); err != nil {
		return &FetchError{Method: method, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if rpcResp.Error != nil {
		return &FetchError{Method: method, Err: rpcResp.Error}
	}
	if len(rpcResp.Result) == 0 || string(rpcResp.Result) == "null" {
		return &FetchError{Method: method, Err: fmt.Errorf("empty result")}
	}
	if err := json.Unmarshal(rpcResp.Result, out); err != nil {
		return &FetchError{Method: method, Err: fmt.Errorf("failed to decode result: %w", err)}
	}
	return nil
}
