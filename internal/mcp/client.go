// Package mcp implements the HTTP client for the upstream tool-calling
// server (JSON-RPC 2.0 over HTTP POST, Streamable HTTP style).
package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tributolabs/fiscalgw/internal/extract"
	"github.com/tributolabs/fiscalgw/internal/metrics"
)

// Config holds the upstream connection settings. A Client is built from a
// Config value so tests can point it at a local fake server.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// UpstreamError carries the upstream HTTP status and body for diagnostics.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (http %d): %s", e.Status, e.Body)
}

// Client talks to the remote tool server. Safe for concurrent use; all
// state is read-only after construction.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client from config.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// CallTool invokes a named tool with the given arguments and returns the
// normalized result value.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (extract.Value, error) {
	return c.rpcCall(ctx, MethodToolsCall, name, args)
}

// GetPrompt retrieves a templated prompt by name and arguments.
func (c *Client) GetPrompt(ctx context.Context, name string, args map[string]any) (extract.Value, error) {
	return c.rpcCall(ctx, MethodPromptsGet, name, args)
}

// rpcCall sends a JSON-RPC request to <base>/mcp. A JSON-RPC "invalid
// request" error triggers exactly one REST-shaped fallback to
// <base>/tools/<name>; any other failure propagates.
func (c *Client) rpcCall(ctx context.Context, method, name string, args map[string]any) (extract.Value, error) {
	if args == nil {
		args = map[string]any{}
	}
	params, err := json.Marshal(callParams{Name: name, Arguments: args})
	if err != nil {
		return extract.Value{}, fmt.Errorf("marshal params: %w", err)
	}
	rpcReq := Request{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	}
	body, err := json.Marshal(rpcReq)
	if err != nil {
		return extract.Value{}, fmt.Errorf("marshal request: %w", err)
	}

	status, result, err := c.post(ctx, c.baseURL+"/mcp", body, "application/json, text/event-stream")
	if err != nil {
		metrics.UpstreamCalls.WithLabelValues(method, "transport_error").Inc()
		return extract.Value{}, fmt.Errorf("http post: %w", err)
	}

	if rpcErr, ok := rpcError(result); ok {
		if rpcErr.Code == CodeInvalidRequest {
			slog.Debug("upstream rejected json-rpc envelope, falling back to rest",
				"method", method, "tool", name)
			metrics.UpstreamFallbacks.Inc()
			return c.restCall(ctx, method, name, args)
		}
		metrics.UpstreamCalls.WithLabelValues(method, "rpc_error").Inc()
		return extract.Value{}, fmt.Errorf("rpc error %d: %s", rpcErr.Code, rpcErr.Message)
	}

	if status != http.StatusOK {
		metrics.UpstreamCalls.WithLabelValues(method, "http_error").Inc()
		return extract.Value{}, &UpstreamError{Status: status, Body: rawBody(result)}
	}

	metrics.UpstreamCalls.WithLabelValues(method, "ok").Inc()
	if inner, ok := result.Field("result"); ok {
		return inner, nil
	}
	return result, nil
}

// restCall issues the one-shot REST fallback: bare arguments as the body,
// plain JSON only, tool-name-specific path.
func (c *Client) restCall(ctx context.Context, method, name string, args map[string]any) (extract.Value, error) {
	body, err := json.Marshal(args)
	if err != nil {
		return extract.Value{}, fmt.Errorf("marshal fallback body: %w", err)
	}

	status, result, err := c.post(ctx, c.baseURL+"/tools/"+name, body, "application/json")
	if err != nil {
		metrics.UpstreamCalls.WithLabelValues(method, "fallback_transport_error").Inc()
		return extract.Value{}, fmt.Errorf("fallback post: %w", err)
	}
	if status != http.StatusOK {
		metrics.UpstreamCalls.WithLabelValues(method, "fallback_http_error").Inc()
		return extract.Value{}, &UpstreamError{Status: status, Body: rawBody(result)}
	}

	metrics.UpstreamCalls.WithLabelValues(method, "fallback_ok").Inc()
	return result, nil
}

// post sends the request and decodes the response body. The decoded value
// is returned even on non-200 statuses so callers can inspect embedded
// JSON-RPC errors before deciding the call failed.
func (c *Client) post(ctx context.Context, url string, body []byte, accept string) (int, extract.Value, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, extract.Value{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, extract.Value{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, extract.Value{}, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, decodeBody(resp.Header.Get("Content-Type"), raw), nil
}

// decodeBody parses an upstream response body. Event-stream bodies are
// scanned for "data:" lines; the first JSON-parseable one wins. A body
// that fails to parse degrades silently to its raw text.
func decodeBody(contentType string, raw []byte) extract.Value {
	if strings.HasPrefix(contentType, "text/event-stream") {
		scanner := bufio.NewScanner(bytes.NewReader(raw))
		// Tool results can exceed the default 64KB scanner buffer.
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			data := strings.TrimPrefix(line, "data: ")
			if v, err := extract.Parse([]byte(data)); err == nil {
				return v
			}
		}
		return extract.FromAny(string(raw))
	}

	v, err := extract.Parse(raw)
	if err != nil {
		return extract.FromAny(string(raw))
	}
	return v
}

// rpcError extracts an embedded JSON-RPC error from a decoded body.
func rpcError(v extract.Value) (*RPCError, bool) {
	errField, ok := v.Field("error")
	if !ok {
		return nil, false
	}
	code, ok := errField.Field("code")
	if !ok {
		return nil, false
	}
	n, ok := code.Num()
	if !ok {
		return nil, false
	}
	msg, _ := errField.FieldStr("message")
	return &RPCError{Code: int(n), Message: msg}, true
}

// rawBody renders a decoded value back to text for error reporting.
func rawBody(v extract.Value) string {
	if s, ok := v.Str(); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
