package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// LookupUserID resolves a username to its user ID.
// Rate limit: 300/15m (app); callers cache the result.
func (c *Client) LookupUserID(ctx context.Context, username string) (string, error) {
	endpoint := fmt.Sprintf("%s/by/username/%s", c.config.UsersPath, url.PathEscape(username))

	resp, err := c.makeRequest(ctx, endpoint, nil, c.config.LookupTimeout)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}
	defer resp.Body.Close()

	if err := c.handleResponse(resp); err != nil {
		return "", err
	}

	var userResp userResponse
	if err := json.NewDecoder(resp.Body).Decode(&userResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if userResp.Data.ID == "" {
		return "", fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return userResp.Data.ID, nil
}
