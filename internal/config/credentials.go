package config

import (
	"fmt"
	"os"

	"github.com/tanadol/relay-go/pkg/accounts"
)

// MaxCredentialSets caps how many numbered credential sets are scanned.
const MaxCredentialSets = 8

// LoadCredentials reads numbered X API credential sets from the
// environment: X_BEARER_TOKEN_1, X_CONSUMER_KEY_1, and so on. Numbering
// starts at 1 and stops at the first gap.
func LoadCredentials() ([]accounts.Credentials, error) {
	var creds []accounts.Credentials

	for i := 1; i <= MaxCredentialSets; i++ {
		bearer := os.Getenv(fmt.Sprintf("X_BEARER_TOKEN_%d", i))
		consumerKey := os.Getenv(fmt.Sprintf("X_CONSUMER_KEY_%d", i))
		if bearer == "" && consumerKey == "" {
			break
		}

		creds = append(creds, accounts.Credentials{
			ID:                fmt.Sprintf("account_%d", i),
			BearerToken:       bearer,
			ConsumerKey:       consumerKey,
			ConsumerSecret:    os.Getenv(fmt.Sprintf("X_CONSUMER_SECRET_%d", i)),
			AccessToken:       os.Getenv(fmt.Sprintf("X_ACCESS_TOKEN_%d", i)),
			AccessTokenSecret: os.Getenv(fmt.Sprintf("X_ACCESS_TOKEN_SECRET_%d", i)),
		})
	}

	if len(creds) == 0 {
		return nil, fmt.Errorf("no X API credentials found, set X_BEARER_TOKEN_1 at minimum")
	}
	return creds, nil
}
