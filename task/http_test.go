package task

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPHandler(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/close_aws_account", func(w http.ResponseWriter, r *http.Request) {
		var input map[string]any
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"account_id": input["account_id"],
			"sf_status":  map[string]any{"close_aws_account": true},
		})
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/gateway_timeout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	})
	mux.HandleFunc("/bad_request", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	mux.HandleFunc("/server_error", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/not_object", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[1,2]`))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	handler := NewHTTPHandler(server.URL+"/", 50*time.Millisecond)

	t.Run("decodes output", func(t *testing.T) {
		out, err := handler.Invoke(context.Background(), "close_aws_account", map[string]any{"account_id": "123"})
		require.NoError(t, err)
		require.Equal(t, "123", out["account_id"])
		require.Equal(t, map[string]any{"close_aws_account": true}, out["sf_status"])
	})

	t.Run("empty body", func(t *testing.T) {
		out, err := handler.Invoke(context.Background(), "empty", nil)
		require.NoError(t, err)
		require.Empty(t, out)
	})

	for name, kind := range map[string]ErrorKind{
		"gateway_timeout": ERROR_TIMEOUT,
		"bad_request":     ERROR_TERMINAL,
		"unknown_task":    ERROR_TERMINAL,
		"server_error":    ERROR_FAILED,
		"not_object":      ERROR_TERMINAL,
		"slow":            ERROR_TIMEOUT,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := handler.Invoke(context.Background(), name, map[string]any{})
			require.Error(t, err)
			require.Equal(t, kind, KindOf(err))
		})
	}
}
