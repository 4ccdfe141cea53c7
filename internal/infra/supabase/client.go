package supabase

import (
	"fmt"

	"github.com/supabase-community/supabase-go"

	"manga-translator/internal/domain"
)

// Client wraps the Supabase connection used by the repositories.
type Client struct {
	client *supabase.Client
	config domain.Config
	logger domain.Logger
}

// NewClient creates an unconnected Supabase client wrapper.
func NewClient(config domain.Config, logger domain.Logger) *Client {
	return &Client{
		config: config,
		logger: logger,
	}
}

// Initialize establishes the connection to Supabase.
func (c *Client) Initialize() error {
	supabaseURL := c.config.GetSupabaseURL()
	supabaseKey := c.config.GetSupabaseKey()

	if supabaseURL == "" || supabaseKey == "" {
		return fmt.Errorf("supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(supabaseURL, supabaseKey, &supabase.ClientOptions{})
	if err != nil {
		return fmt.Errorf("failed to create Supabase client: %w", err)
	}

	c.client = client
	c.logger.Info("Supabase client initialized successfully", "url", supabaseURL)
	return nil
}

// DB returns the underlying Supabase client.
func (c *Client) DB() *supabase.Client {
	return c.client
}
