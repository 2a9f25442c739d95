package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tanadol/relay-go/pkg/accounts"
)

// Client is an X API v2 client bound to one credential set.
type Client struct {
	config *Config
	auth   *Authenticator
	creds  accounts.Credentials
	logger *logrus.Logger
}

// NewClient creates a client for the given credential set.
func NewClient(config *Config, creds accounts.Credentials) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	auth, err := NewAuthenticator(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	return &Client{
		config: config,
		auth:   auth,
		creds:  creds,
		logger: config.Logger,
	}, nil
}

// CredentialID returns the ID of the credential set servicing this client.
func (c *Client) CredentialID() string {
	return c.creds.ID
}

func (c *Client) makeRequest(ctx context.Context, endpoint string, query url.Values, timeout time.Duration) (*http.Response, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fullURL := c.config.BaseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.auth.SetAuthHeader(req)

	resp, err := c.auth.GetClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	return resp, nil
}

// handleResponse checks for API errors in the response, mapping the
// status code onto the error taxonomy.
func (c *Client) handleResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}

	var errResp struct {
		Errors []ErrorDetail `json:"errors"`
		Title  string        `json:"title"`
		Detail string        `json:"detail"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case len(errResp.Errors) > 0:
			apiErr.Code = errResp.Errors[0].Code
			apiErr.Message = firstNonEmpty(errResp.Errors[0].Message, errResp.Errors[0].Detail, errResp.Errors[0].Title)
		case errResp.Detail != "":
			apiErr.Message = errResp.Detail
		case errResp.Title != "":
			apiErr.Message = errResp.Title
		}
	}

	c.logger.WithFields(logrus.Fields{
		"account":     c.creds.ID,
		"status_code": apiErr.StatusCode,
		"error_code":  apiErr.Code,
		"message":     apiErr.Message,
	}).Error("Twitter API error")

	return apiErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
