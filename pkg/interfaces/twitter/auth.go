package twitter

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mrjones/oauth"

	"github.com/tanadol/relay-go/pkg/accounts"
)

const (
	RequestTokenURL   = "https://api.twitter.com/oauth/request_token"
	AuthorizeTokenURL = "https://api.twitter.com/oauth/authorize"
	AccessTokenURL    = "https://api.twitter.com/oauth/access_token"
)

// Authenticator wraps the HTTP client carrying the credential set's
// authentication: an OAuth 1.0a signing client when user tokens are
// present, a plain client plus Bearer header otherwise.
type Authenticator struct {
	client      *http.Client
	bearerToken string
}

// NewAuthenticator builds the authenticator for one credential set.
func NewAuthenticator(creds accounts.Credentials) (*Authenticator, error) {
	if creds.ConsumerKey != "" && creds.AccessToken != "" {
		return newUserAuthenticator(creds)
	}
	if creds.BearerToken != "" {
		return &Authenticator{
			client:      &http.Client{Timeout: 30 * time.Second},
			bearerToken: creds.BearerToken,
		}, nil
	}
	return nil, fmt.Errorf("credential set %s: either OAuth 1.0a credentials or a Bearer token must be provided", creds.ID)
}

func newUserAuthenticator(creds accounts.Credentials) (*Authenticator, error) {
	consumer := oauth.NewConsumer(creds.ConsumerKey, creds.ConsumerSecret, oauth.ServiceProvider{
		RequestTokenUrl:   RequestTokenURL,
		AuthorizeTokenUrl: AuthorizeTokenURL,
		AccessTokenUrl:    AccessTokenURL,
	})
	consumer.HttpClient = &http.Client{Timeout: 30 * time.Second}

	token := oauth.AccessToken{
		Token:  creds.AccessToken,
		Secret: creds.AccessTokenSecret,
	}

	client, err := consumer.MakeHttpClient(&token)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth client: %w", err)
	}
	return &Authenticator{client: client}, nil
}

func (a *Authenticator) GetClient() *http.Client {
	return a.client
}

// SetAuthHeader attaches the Bearer token when the set authenticates via
// app-only auth; the OAuth 1.0a transport signs requests itself.
func (a *Authenticator) SetAuthHeader(req *http.Request) {
	if a.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.bearerToken)
	}
}
