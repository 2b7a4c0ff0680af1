package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"finsight/src/listening"
)

// Ensure HostClient implements listening.Identity
var _ listening.Identity = (*HostClient)(nil)

// HostClient resolves caller identity against the media host's HTTP API.
type HostClient struct {
	URL    string
	client *http.Client
}

// NewHostClient creates a new identity client for the host at url.
func NewHostClient(url string) *HostClient {
	return &HostClient{
		URL:    strings.TrimSuffix(url, "/"),
		client: http.DefaultClient,
	}
}

// ResolveToken asks the host who owns the given access token. The token is
// passed through as-is; the host decides whether it is valid.
func (h *HostClient) ResolveToken(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: empty token", listening.ErrUnauthorized)
	}

	url := fmt.Sprintf("%s/Users/Me", h.URL)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Emby-Token", token)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: host rejected token", listening.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity lookup failed: %s", resp.Status)
	}

	var user struct {
		ID string `json:"Id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("identity lookup failed: %w", err)
	}
	if user.ID == "" {
		return "", fmt.Errorf("%w: host returned no user id", listening.ErrUnauthorized)
	}
	return user.ID, nil
}
