// Package socks routes outbound API traffic through an optional SOCKS5
// proxy. The proxy daemon is expected to be running already; when disabled
// the client dials directly.
package socks

import (
	"context"
	"fmt"
	"net"

	"golang.org/x/net/proxy"
)

// Config holds proxy configuration parameters.
type Config struct {
	Enabled   bool
	ProxyAddr string
}

// Client wraps a SOCKS5 dialer with a direct fallback.
type Client struct {
	config Config
	dialer proxy.Dialer
}

// NewClient creates a proxy client. With Enabled false the client dials
// directly and never touches the proxy address.
func NewClient(config Config) (*Client, error) {
	if !config.Enabled {
		return &Client{
			config: config,
			dialer: proxy.Direct,
		}, nil
	}

	dialer, err := proxy.SOCKS5("tcp", config.ProxyAddr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %v", err)
	}

	return &Client{
		config: config,
		dialer: dialer,
	}, nil
}

// DialContext connects to an address, through the proxy when enabled.
func (c *Client) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if !c.config.Enabled {
		var d net.Dialer
		return d.DialContext(ctx, network, address)
	}

	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}

	// Use a goroutine to support context cancellation
	type result struct {
		conn net.Conn
		err  error
	}

	ch := make(chan result, 1)
	go func() {
		conn, err := c.dialer.Dial(network, address)
		ch <- result{conn, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.conn, res.err
	}
}

// IsEnabled returns whether proxying is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// GetProxyAddr returns the proxy address.
func (c *Client) GetProxyAddr() string {
	return c.config.ProxyAddr
}
