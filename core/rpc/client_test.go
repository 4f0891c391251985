package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moduleResult = `{
	"fileFormatVersion": 6,
	"address": "0x2",
	"name": "counter",
	"friends": [],
	"structs": {
		"Counter": {
			"abilities": {"abilities": ["Key"]},
			"typeParameters": [],
			"fields": [{"name": "value", "type": "U64"}]
		}
	},
	"exposedFunctions": {
		"increment": {
			"visibility": "Public",
			"isEntry": true,
			"typeParameters": [],
			"parameters": [{"MutableReference": {"Struct": {"address": "0x2", "module": "counter", "name": "Counter", "typeArguments": []}}}],
			"return": []
		}
	}
}`

// rpcServer answers every request with handler's result. The returned func
// lists the decoded requests seen so far.
func rpcServer(t *testing.T, handler func(req request) (string, int)) (*httptest.Server, func() []request) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []request
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		var req request
		assert.NoError(t, json.Unmarshal(body, &req))
		mu.Lock()
		seen = append(seen, req)
		mu.Unlock()

		payload, status := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, payload)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []request {
		mu.Lock()
		defer mu.Unlock()
		return append([]request(nil), seen...)
	}
}

func TestClient_GetNormalizedModule(t *testing.T) {
	srv, seen := rpcServer(t, func(req request) (string, int) {
		return `{"jsonrpc":"2.0","id":1,"result":` + moduleResult + `}`, http.StatusOK
	})

	mod, err := NewClient(srv.URL, time.Second).GetNormalizedModule(context.Background(), "0x2", "counter")
	require.NoError(t, err)

	assert.Equal(t, "counter", mod.Name)
	assert.Equal(t, []string{"Key"}, mod.Structs["Counter"].Abilities.Abilities)
	increment := mod.ExposedFunctions["increment"]
	assert.True(t, increment.IsEntry)
	require.Len(t, increment.Parameters, 1)
	assert.Equal(t, "&mut Counter", increment.Parameters[0].Render(ModuleID{Address: "0x2", Name: "counter"}))

	require.Len(t, seen(), 1)
	req := seen()[0]
	assert.Equal(t, "2.0", req.JSONRPC)
	assert.Equal(t, methodNormalizedModule, req.Method)
	assert.Equal(t, []interface{}{"0x2", "counter"}, req.Params)
}

func TestClient_GetNormalizedModules(t *testing.T) {
	srv, seen := rpcServer(t, func(req request) (string, int) {
		return `{"jsonrpc":"2.0","id":1,"result":{"counter":` + moduleResult + `}}`, http.StatusOK
	})

	mods, err := NewClient(srv.URL, time.Second).GetNormalizedModules(context.Background(), "0x2")
	require.NoError(t, err)
	require.Contains(t, mods, "counter")
	assert.Equal(t, "0x2", mods["counter"].Address)
	assert.Equal(t, methodNormalizedModules, seen()[0].Method)
}

func TestClient_RequestIDsIncrease(t *testing.T) {
	srv, seen := rpcServer(t, func(req request) (string, int) {
		return `{"jsonrpc":"2.0","id":1,"result":` + moduleResult + `}`, http.StatusOK
	})
	client := NewClient(srv.URL, time.Second)
	for i := 0; i < 3; i++ {
		_, err := client.GetNormalizedModule(context.Background(), "0x2", "counter")
		require.NoError(t, err)
	}
	requests := seen()
	require.Len(t, requests, 3)
	assert.Equal(t, int64(1), requests[0].ID)
	assert.Equal(t, int64(3), requests[2].ID)
}

func TestClient_FetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		status  int
		want    string
	}{
		{"http status", `oops`, http.StatusBadGateway, "unexpected status"},
		{"rpc error", `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"module not found"}}`, http.StatusOK, "module not found"},
		{"null result", `{"jsonrpc":"2.0","id":1,"result":null}`, http.StatusOK, "empty result"},
		{"garbage", `not json`, http.StatusOK, "failed to decode response"},
		{"bad type", `{"jsonrpc":"2.0","id":1,"result":{"name":"m","exposedFunctions":{"f":{"parameters":[{"Weird":1}]}}}}`, http.StatusOK, "failed to decode result"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := rpcServer(t, func(request) (string, int) { return tt.payload, tt.status })

			_, err := NewClient(srv.URL, time.Second).GetNormalizedModule(context.Background(), "0x2", "m")
			var fetchErr *FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, methodNormalizedModule, fetchErr.Method)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestClient_RPCErrorUnwraps(t *testing.T) {
	srv, _ := rpcServer(t, func(request) (string, int) {
		return `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"boom"}}`, http.StatusOK
	})
	_, err := NewClient(srv.URL, time.Second).GetNormalizedModule(context.Background(), "0x2", "m")

	var rpcErr *Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32000, rpcErr.Code)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 50*time.Millisecond).GetNormalizedModule(context.Background(), "0x2", "m")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).GetNormalizedModule(context.Background(), "0x2", "m")
	var fetchErr *FetchError
	assert.ErrorAs(t, err, &fetchErr)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", 0)
	assert.Equal(t, DefaultURL, c.url)
	assert.Equal(t, DefaultTimeout, c.timeout)
}
