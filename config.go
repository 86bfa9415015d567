package gorouteros

import (
	"fmt"
	"time"

	"github.com/netwrk/gorouteros/internal/transport"
)

const (
	defaultPlainPort   = 8728
	defaultTLSPort     = 8729
	defaultDialTimeout = 5 * time.Second
	defaultPoolSize    = 5
)

// Config describes how to reach and authenticate against a RouterOS
// device. Callers construct it directly; there is no file-based loader.
type Config struct {
	Host     string
	Username string
	Password string

	// Port defaults to 8728 (plain) or 8729 (TLS) based on the resolved
	// TLS setting, if left at zero.
	Port int

	// TLS selects the transport explicitly. If nil, it is derived from
	// Port: a non-zero Port of 8729 implies TLS, anything else plain.
	TLS *bool

	TLSOptions transport.TLSOptions

	DialTimeout time.Duration
	PoolSize    int
}

type resolvedConfig struct {
	host        string
	username    string
	password    string
	port        int
	tls         bool
	tlsOptions  transport.TLSOptions
	dialTimeout time.Duration
	poolSize    int
}

func (c Config) normalize() (resolvedConfig, error) {
	if c.Host == "" {
		return resolvedConfig{}, fmt.Errorf("gorouteros: config: host is required")
	}
	if c.Username == "" {
		return resolvedConfig{}, fmt.Errorf("gorouteros: config: username is required")
	}

	useTLS := c.Port == defaultTLSPort
	if c.TLS != nil {
		useTLS = *c.TLS
	}

	port := c.Port
	if port == 0 {
		if useTLS {
			port = defaultTLSPort
		} else {
			port = defaultPlainPort
		}
	}

	dialTimeout := c.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	poolSize := c.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	return resolvedConfig{
		host:        c.Host,
		username:    c.Username,
		password:    c.Password,
		port:        port,
		tls:         useTLS,
		tlsOptions:  c.TLSOptions,
		dialTimeout: dialTimeout,
		poolSize:    poolSize,
	}, nil
}

func (c resolvedConfig) address() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}
