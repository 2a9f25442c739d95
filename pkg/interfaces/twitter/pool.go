package twitter

import (
	"sync"

	"github.com/tanadol/relay-go/pkg/accounts"
)

// Pool hands out one Client per credential set, built lazily and reused
// across fetch cycles so OAuth transports are not rebuilt every rotation.
type Pool struct {
	mu      sync.Mutex
	config  *Config
	clients map[string]*Client
}

// NewPool creates a client pool over a shared Config.
func NewPool(config *Config) *Pool {
	return &Pool{
		config:  config,
		clients: make(map[string]*Client),
	}
}

// Client returns the cached client for the credential set, creating it on
// first use.
func (p *Pool) Client(creds accounts.Credentials) (*Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[creds.ID]; ok {
		return c, nil
	}

	c, err := NewClient(p.config, creds)
	if err != nil {
		return nil, err
	}
	p.clients[creds.ID] = c
	return c, nil
}
