package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// Config holds TLS file locations. Empty fields disable the matching feature.
type Config struct {
	CertFile   string // certificate presented by this side
	KeyFile    string
	CAFile     string // CA bundle used to verify the peer
	ServerName string // expected server name for client connections
	ClientAuth bool   // server only: require client certificates signed by CAFile
}

// Enabled reports whether a certificate pair is configured.
func (c Config) Enabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

// ServerConfig builds the listener configuration for the HTTP API.
func ServerConfig(config Config) (*tls.Config, error) {
	if !config.Enabled() {
		return nil, fmt.Errorf("server certificate and key are required")
	}

	cert, err := tls.LoadX509KeyPair(config.CertFile, config.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server certificates: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if config.ClientAuth {
		pool, err := loadPool(config.CAFile)
		if err != nil {
			return nil, err
		}
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
		tlsConfig.ClientCAs = pool
	}

	return tlsConfig, nil
}

// ClientConfig builds the configuration used to reach an RPC node signed by
// a private CA. A certificate pair, when set, is presented for mutual TLS.
func ClientConfig(config Config) (*tls.Config, error) {
	pool, err := loadPool(config.CAFile)
	if err != nil {
		return nil, err
	}

	tlsConfig := &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
		ServerName: config.ServerName,
	}

	if config.Enabled() {
		cert, err := tls.LoadX509KeyPair(config.CertFile, config.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificates: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

func loadPool(caFile string) (*x509.CertPool, error) {
	if caFile == "" {
		return nil, fmt.Errorf("CA file is required")
	}
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate %s", caFile)
	}
	return pool, nil
}
