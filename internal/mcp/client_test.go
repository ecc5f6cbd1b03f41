package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(Config{BaseURL: url, Timeout: 5 * time.Second})
}

func TestCallToolPlainJSON(t *testing.T) {
	var gotReq Request
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mcp", r.URL.Path)
		gotAccept = r.Header.Get("Accept")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotReq))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"jsonrpc":"2.0","id":"1","result":{"data":{"recommendation":"ok"}}}`)
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).CallTool(context.Background(), "obtener_recomendaciones", map[string]any{"actividad": "comercio"})
	require.NoError(t, err)

	rec, ok := result.StrAt("data", "recommendation")
	require.True(t, ok)
	assert.Equal(t, "ok", rec)

	assert.Equal(t, "2.0", gotReq.JSONRPC)
	assert.Equal(t, MethodToolsCall, gotReq.Method)
	assert.NotEmpty(t, gotReq.ID)
	assert.Contains(t, gotAccept, "application/json")
	assert.Contains(t, gotAccept, "text/event-stream")

	var params callParams
	require.NoError(t, json.Unmarshal(gotReq.Params, &params))
	assert.Equal(t, "obtener_recomendaciones", params.Name)
	assert.Equal(t, "comercio", params.Arguments["actividad"])
}

func TestCallToolUniqueIDs(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		ids = append(ids, req.ID)
		io.WriteString(w, `{"jsonrpc":"2.0","id":"1","result":{}}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CallTool(context.Background(), "x", nil)
	require.NoError(t, err)
	_, err = c.CallTool(context.Background(), "x", nil)
	require.NoError(t, err)

	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestCallToolSSE(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, ": keepalive\n\nevent: message\ndata: {\"jsonrpc\":\"2.0\",\"id\":\"1\",\"result\":{\"recommendation\":\"desde sse\"}}\n\n")
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).CallTool(context.Background(), "chat_fiscal", nil)
	require.NoError(t, err)

	rec, ok := result.FieldStr("recommendation")
	require.True(t, ok)
	assert.Equal(t, "desde sse", rec)
}

func TestCallToolRawBodyDegradation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "no soy json")
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).CallTool(context.Background(), "x", nil)
	require.NoError(t, err)

	s, ok := result.Str()
	require.True(t, ok)
	assert.Equal(t, "no soy json", s)
}

func TestCallToolFallbackOnInvalidRequest(t *testing.T) {
	var rpcCalls, restCalls int
	var restPath string
	var restBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mcp":
			rpcCalls++
			io.WriteString(w, `{"jsonrpc":"2.0","id":"1","error":{"code":-32600,"message":"invalid request"}}`)
		default:
			restCalls++
			restPath = r.URL.Path
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &restBody)
			io.WriteString(w, `{"data":{"recommendation":"via rest"}}`)
		}
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).CallTool(context.Background(), "evaluar_riesgo", map[string]any{"actividad": "servicios"})
	require.NoError(t, err)

	assert.Equal(t, 1, rpcCalls)
	assert.Equal(t, 1, restCalls)
	assert.Equal(t, "/tools/evaluar_riesgo", restPath)
	// The fallback body is the bare arguments object, no envelope.
	assert.Equal(t, "servicios", restBody["actividad"])

	rec, ok := result.StrAt("data", "recommendation")
	require.True(t, ok)
	assert.Equal(t, "via rest", rec)
}

func TestCallToolFallbackFailurePropagates(t *testing.T) {
	var restCalls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/mcp" {
			io.WriteString(w, `{"jsonrpc":"2.0","id":"1","error":{"code":-32600,"message":"invalid request"}}`)
			return
		}
		restCalls++
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "rest exploto")
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CallTool(context.Background(), "x", nil)
	require.Error(t, err)

	// The surfaced error reflects the fallback's failure, not the
	// original invalid-request error.
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusBadGateway, ue.Status)
	assert.Contains(t, ue.Body, "rest exploto")
	assert.Equal(t, 1, restCalls)
}

func TestCallToolOtherRPCErrorsDoNotFallBack(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, "/mcp", r.URL.Path)
		io.WriteString(w, `{"jsonrpc":"2.0","id":"1","error":{"code":-32601,"message":"method not found"}}`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CallTool(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-32601")
	assert.Equal(t, 1, calls)
}

func TestCallToolHTTPErrorCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, "mantenimiento")
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CallTool(context.Background(), "x", nil)

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusServiceUnavailable, ue.Status)
	assert.Contains(t, ue.Body, "mantenimiento")
}

func TestCallToolTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := newTestClient(srv.URL).CallTool(context.Background(), "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http post")
}

func TestGetPromptUsesPromptsGet(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		gotMethod = req.Method
		io.WriteString(w, `{"jsonrpc":"2.0","id":"1","result":{"data":"plantilla"}}`)
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).GetPrompt(context.Background(), "consulta_fiscal", map[string]any{"consulta": "iva"})
	require.NoError(t, err)
	assert.Equal(t, MethodPromptsGet, gotMethod)

	data, ok := result.FieldStr("data")
	require.True(t, ok)
	assert.Equal(t, "plantilla", data)
}
