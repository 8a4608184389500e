package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/accounts:lookup", r.URL.Path)
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body struct {
			IDToken string `json:"idToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "some-id-token", body.IDToken)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"users": []map[string]string{{"email": "admin@example.com"}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	email, err := client.Verify(context.Background(), "some-id-token")
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", email)
}

func TestVerifyNoUsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"users": []interface{}{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.Verify(context.Background(), "some-id-token")
	require.Error(t, err)
}

func TestVerifyUpstreamRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"INVALID_ID_TOKEN"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.Verify(context.Background(), "bad-token")
	require.Error(t, err)
}

func TestVerifyEmptyToken(t *testing.T) {
	// 空 token 不該打出任何請求
	client := NewClient("http://127.0.0.1:1", "test-key")
	_, err := client.Verify(context.Background(), "")
	require.Error(t, err)
}
