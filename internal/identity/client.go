// Package identity 封裝外部身份服務，負責把 idToken 換成已驗證的 email。
// 主持人的身份認證完全委託給這個外部服務，系統本身不保存使用者。
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://identitytoolkit.googleapis.com/v1"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type lookupRequest struct {
	IDToken string `json:"idToken"`
}

type lookupResponse struct {
	Users []struct {
		Email string `json:"email"`
	} `json:"users"`
}

// Verify 呼叫身份服務驗證 idToken，回傳 token 對應的 email
func (c *Client) Verify(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", errors.New("identity: missing token")
	}

	body, err := json.Marshal(lookupRequest{IDToken: idToken})
	if err != nil {
		return "", fmt.Errorf("identity: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/accounts:lookup?key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("identity: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		buf, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("identity: unexpected status %d: %s", resp.StatusCode, string(buf))
	}

	var payload lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("identity: decode response: %w", err)
	}
	if len(payload.Users) == 0 || payload.Users[0].Email == "" {
		return "", errors.New("identity: no verified user in response")
	}

	return payload.Users[0].Email, nil
}
