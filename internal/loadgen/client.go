package loadgen

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

const (
	TCPDialTimeout        = 5 * time.Second
	TCPKeepAliveInterval  = 30 * time.Second
	TLSHandshakeTimeout   = 5 * time.Second
	IdleConnTimeout       = 90 * time.Second
	ExpectContinueTimeout = 1 * time.Second
	RequestTimeout        = 30 * time.Second
)

// NewClient builds the process's shared HTTP client: one connection
// pool capped at maxConns concurrent connections, serving every
// connection worker in the process. Certificate validation is disabled;
// the harness only ever talks to trusted test servers.
func NewClient(maxConns int) (*http.Client, error) {
	if maxConns <= 0 {
		return nil, fmt.Errorf("connection pool size must be greater than 0")
	}

	transport := &http.Transport{
		MaxIdleConns:        maxConns,
		MaxIdleConnsPerHost: maxConns,
		MaxConnsPerHost:     maxConns,
		IdleConnTimeout:     IdleConnTimeout,
		DisableCompression:  true,

		DialContext: (&net.Dialer{
			Timeout:   TCPDialTimeout,
			KeepAlive: TCPKeepAliveInterval,
		}).DialContext,

		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ExpectContinueTimeout: ExpectContinueTimeout,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
	}

	// Negotiate h2 on the TLS side when the server offers it.
	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, fmt.Errorf("failed to configure http2 transport: %w", err)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   RequestTimeout,
	}, nil
}
