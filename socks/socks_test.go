package socks

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestDisabledClientDialsDirect(t *testing.T) {
	client, err := NewClient(Config{Enabled: false})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if client.IsEnabled() {
		t.Error("Expected client to be disabled")
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := client.DialContext(ctx, "tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("DialContext failed: %v", err)
	}
	conn.Close()
}

func TestDisabledClientHonorsContext(t *testing.T) {
	client, err := NewClient(Config{Enabled: false})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 192.0.2.0/24 is TEST-NET, nothing listens there.
	if _, err := client.DialContext(ctx, "tcp", "192.0.2.1:9"); err == nil {
		t.Fatal("Expected error from canceled context, got nil")
	}
}

func TestEnabledClientKeepsProxyAddr(t *testing.T) {
	client, err := NewClient(Config{Enabled: true, ProxyAddr: "127.0.0.1:9050"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if !client.IsEnabled() {
		t.Error("Expected client to be enabled")
	}
	if client.GetProxyAddr() != "127.0.0.1:9050" {
		t.Errorf("GetProxyAddr = %q, want 127.0.0.1:9050", client.GetProxyAddr())
	}
}
