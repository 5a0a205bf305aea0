package odoorpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRPCServer(t *testing.T, authCalls *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jsonrpc", r.URL.Path)

		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "2.0", req.JSONRPC)

		w.Header().Set("Content-Type", "application/json")
		switch {
		case req.Params.Service == "common" && req.Params.Method == "authenticate":
			atomic.AddInt64(authCalls, 1)
			json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "result": 2})
		case req.Params.Service == "object" && req.Params.Method == "execute_kw":
			require.GreaterOrEqual(t, len(req.Params.Args), 6)
			assert.Equal(t, float64(2), req.Params.Args[1], "calls must carry the authenticated uid")
			method := req.Params.Args[4]
			switch method {
			case "search_read":
				json.NewEncoder(w).Encode(map[string]any{
					"jsonrpc": "2.0",
					"result": []map[string]any{
						{"id": 7, "name": "Ceramic Mug", "default_code": false},
					},
				})
			case "search":
				json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "result": []int64{7, 8}})
			default:
				json.NewEncoder(w).Encode(map[string]any{
					"jsonrpc": "2.0",
					"error": map[string]any{
						"code":    200,
						"message": "Odoo Server Error",
						"data":    map[string]any{"message": "unsupported method"},
					},
				})
			}
		default:
			http.Error(w, "unexpected service", http.StatusBadRequest)
		}
	}))
}

func newTestClient(url string) *Client {
	return New(Config{
		URL:      url,
		Database: "erp",
		Username: "sync",
		Password: "secret",
		Timeout:  2 * time.Second,
	}, zap.NewNop())
}

func TestSearchReadAuthenticatesOnce(t *testing.T) {
	var authCalls int64
	server := newRPCServer(t, &authCalls)
	defer server.Close()

	client := newTestClient(server.URL)
	ctx := context.Background()

	records, err := client.SearchRead(ctx, "product.template", []any{"write_date", ">=", "2026-01-01 00:00:00"}, []string{"id", "name"}, 0, 50)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(7), records[0].Int64("id"))
	assert.Equal(t, "Ceramic Mug", records[0].Str("name"))
	assert.Equal(t, "", records[0].Str("default_code"), "false must decode as empty string")

	_, err = client.Search(ctx, "product.template", nil, 0, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(&authCalls), "uid must be cached across calls")
}

func TestRemoteErrorSurfacesDataMessage(t *testing.T) {
	var authCalls int64
	server := newRPCServer(t, &authCalls)
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.Write(context.Background(), "product.template", []int64{7}, map[string]any{"name": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported method")
}

func TestUnconfiguredEndpointFailsFast(t *testing.T) {
	client := New(Config{}, zap.NewNop())

	_, err := client.SearchRead(context.Background(), "product.template", nil, nil, 0, 0)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestZeroUIDIsAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "result": false})
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Search(context.Background(), "product.template", nil, 0, 0)
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestReadEmptyIDsSkipsRemoteCall(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")

	records, err := client.Read(context.Background(), "account.tax", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, records)
}
