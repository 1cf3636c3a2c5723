package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoCertsFound is returned when no certificates are found in a PEM file.
	ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM file")

	// ErrKeyPairIncomplete is returned when only one of cert/key is set.
	ErrKeyPairIncomplete = errors.New("tlsroots: client certificate and key must be set together")
)

// ClientOptions selects the trust anchors and identity for API requests.
type ClientOptions struct {
	// CAFile is a PEM file or a directory of PEM files added to the
	// system roots.
	CAFile string
	// CertFile and KeyFile are an optional client key pair.
	CertFile string
	KeyFile  string
	// ServerName overrides SNI and hostname verification.
	ServerName string
}

// IsZero reports whether no TLS customisation was requested.
func (o ClientOptions) IsZero() bool {
	return o == ClientOptions{}
}

// ClientConfig builds a client TLS config. It returns nil, nil when opts is
// zero so callers keep Go's default transport settings.
func ClientConfig(opts ClientOptions) (*tls.Config, error) {
	if opts.IsZero() {
		return nil, nil
	}

	pool, err := NewPool()
	if err != nil {
		return nil, err
	}
	if opts.CAFile != "" {
		if err := pool.AddPath(opts.CAFile); err != nil {
			return nil, err
		}
	}

	cfg := pool.TLSConfig()
	cfg.ServerName = opts.ServerName

	if opts.CertFile != "" || opts.KeyFile != "" {
		if opts.CertFile == "" || opts.KeyFile == "" {
			return nil, ErrKeyPairIncomplete
		}
		cert, err := tls.LoadX509KeyPair(opts.CertFile, opts.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("tlsroots: load key pair: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

// Pool manages a pool of trusted root certificates.
type Pool struct {
	certPool *x509.CertPool
	added    int
}

// NewPool creates a new certificate pool with system roots.
// If system roots cannot be loaded, it creates an empty pool.
func NewPool() (*Pool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	return &Pool{certPool: pool}, nil
}

// NewEmptyPool creates a new empty certificate pool without system roots.
func NewEmptyPool() *Pool {
	return &Pool{certPool: x509.NewCertPool()}
}

// AddPath adds a PEM file, or every PEM file in a directory.
func (p *Pool) AddPath(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("tlsroots: %w", err)
	}
	if fi.IsDir() {
		return p.AddCertDir(path)
	}
	return p.AddCertFile(path)
}

// AddCertFile adds certificates from a PEM file.
// Multiple certificates in the same file are supported.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read cert file %s: %w", path, err)
	}

	if err := p.AddCertPEM(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// AddCertPEM adds certificates from PEM-encoded data.
func (p *Pool) AddCertPEM(pemData []byte) error {
	var certsAdded int

	for len(pemData) > 0 {
		var block *pem.Block
		block, pemData = pem.Decode(pemData)
		if block == nil {
			break
		}

		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("tlsroots: parse certificate: %w", err)
		}

		p.certPool.AddCert(cert)
		certsAdded++
	}

	if certsAdded == 0 {
		return ErrNoCertsFound
	}

	p.added += certsAdded
	return nil
}

// AddCertDir adds all .pem, .crt and .cer files from a directory. It fails
// if none of them holds a certificate.
func (p *Pool) AddCertDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("tlsroots: read dir %s: %w", dir, err)
	}

	before := p.added
	var firstErr error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".pem", ".crt", ".cer":
			if err := p.AddCertFile(filepath.Join(dir, entry.Name())); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	if p.added == before {
		if firstErr != nil {
			return firstErr
		}
		return fmt.Errorf("tlsroots: %s: %w", dir, ErrNoCertsFound)
	}
	return nil
}

// Added returns how many certificates were added beyond the system roots.
func (p *Pool) Added() int {
	return p.added
}

// Pool returns the underlying x509.CertPool.
func (p *Pool) Pool() *x509.CertPool {
	return p.certPool
}

// TLSConfig creates a TLS config using this pool as root CAs.
func (p *Pool) TLSConfig() *tls.Config {
	return &tls.Config{
		RootCAs:    p.certPool,
		MinVersion: tls.VersionTLS12,
	}
}
