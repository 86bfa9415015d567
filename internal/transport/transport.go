// Package transport dials the plain and TLS sockets a connection worker
// speaks the RouterOS wire protocol over.
package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"time"
)

// Conn is the socket abstraction a connection worker operates on. Plain
// net.Conn and *tls.Conn both already satisfy it.
type Conn interface {
	net.Conn
}

// Dialer establishes a Conn to a RouterOS endpoint.
type Dialer interface {
	Dial(ctx context.Context, address string) (Conn, error)
}

// TCPDialer dials plain TCP.
type TCPDialer struct {
	Timeout time.Duration
}

func (d *TCPDialer) Dial(ctx context.Context, address string) (Conn, error) {
	nd := &net.Dialer{Timeout: d.Timeout}
	conn, err := nd.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", address, err)
	}
	return conn, nil
}

// TLSDialer dials TCP then performs a TLS handshake before returning.
type TLSDialer struct {
	Timeout time.Duration
	Config  *tls.Config
}

func (d *TLSDialer) Dial(ctx context.Context, address string) (Conn, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: d.Timeout},
		Config:    d.Config,
	}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("transport: tls dial %s: %w", address, err)
	}
	return conn, nil
}

// TLSOptions configures the TLS dialer with the subset of crypto/tls's
// surface a RouterOS client needs.
type TLSOptions struct {
	// ServerName overrides SNI / certificate verification hostname.
	ServerName string
	// InsecureSkipVerify disables certificate verification. Refuse to
	// set this outside development and testing.
	InsecureSkipVerify bool
	// RootCAs, if set, replaces the system trust store.
	RootCAs *x509.CertPool
	// Certificates supplies a client certificate for mutual TLS.
	Certificates []tls.Certificate
}

func (o TLSOptions) tlsConfig() *tls.Config {
	return &tls.Config{
		ServerName:         o.ServerName,
		InsecureSkipVerify: o.InsecureSkipVerify,
		RootCAs:            o.RootCAs,
		Certificates:       o.Certificates,
		MinVersion:         tls.VersionTLS12,
	}
}

// NewDialer builds the plain or TLS dialer a Config resolves to.
func NewDialer(useTLS bool, timeout time.Duration, opts TLSOptions) Dialer {
	if !useTLS {
		return &TCPDialer{Timeout: timeout}
	}
	return &TLSDialer{Timeout: timeout, Config: opts.tlsConfig()}
}
