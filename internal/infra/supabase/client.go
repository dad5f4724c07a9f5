package supabase

import (
	"fmt"

	"docforge/internal/domain"

	"github.com/supabase-community/supabase-go"
)

// Client wraps the Supabase SDK client used for remote asset storage.
type Client struct {
	client *supabase.Client
	config domain.Config
	logger domain.Logger
}

// NewClient creates an uninitialized Supabase client wrapper.
func NewClient(config domain.Config, logger domain.Logger) *Client {
	return &Client{
		config: config,
		logger: logger,
	}
}

// Initialize establishes the connection to Supabase.
func (c *Client) Initialize() error {
	url := c.config.GetSupabaseURL()
	key := c.config.GetSupabaseKey()

	if url == "" || key == "" {
		return fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return fmt.Errorf("failed to create Supabase client: %w", err)
	}

	c.client = client
	c.logger.Info("Supabase client initialized successfully", "url", url)
	return nil
}

// DB returns the underlying SDK client.
func (c *Client) DB() *supabase.Client {
	return c.client
}
