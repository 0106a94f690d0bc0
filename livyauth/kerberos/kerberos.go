// Package kerberos provides Kerberos/SPNEGO authentication for the livy-go
// client library. It is a separate package to keep the gokrb5 dependency
// tree opt-in for consumers that don't need negotiated credentials.
package kerberos

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jcmturner/gokrb5/v8/client"
	"github.com/jcmturner/gokrb5/v8/config"
	"github.com/jcmturner/gokrb5/v8/keytab"
	"github.com/jcmturner/gokrb5/v8/spnego"
	livy "github.com/kjmrknsn/livy-go"
)

// Config holds Kerberos authentication parameters.
type Config struct {
	KeytabPath string // Path to .keytab file
	Principal  string // e.g. "user@EXAMPLE.COM"
	Realm      string // e.g. "EXAMPLE.COM"
	ConfigPath string // Path to krb5.conf
	ServiceSPN string // Service principal name, defaults to "HTTP/<hostname>"
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.KeytabPath == "" {
		return fmt.Errorf("kerberos: KeytabPath is required")
	}
	if c.Principal == "" {
		return fmt.Errorf("kerberos: Principal is required")
	}
	if c.Realm == "" {
		return fmt.Errorf("kerberos: Realm is required")
	}
	if c.ConfigPath == "" {
		return fmt.Errorf("kerberos: ConfigPath is required")
	}
	return nil
}

// krbCloser wraps a gokrb5 client to implement io.Closer.
type krbCloser struct {
	cl *client.Client
}

func (k *krbCloser) Close() error {
	k.cl.Destroy()
	return nil
}

// NewRequestOption creates a livy.RequestOption that sets the SPNEGO
// Negotiate header on every request. It returns an io.Closer that must
// be called to destroy the underlying Kerberos client when done.
func NewRequestOption(cfg Config) (livy.RequestOption, io.Closer, error) {
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}

	kt, err := keytab.Load(cfg.KeytabPath)
	if err != nil {
		return nil, nil, fmt.Errorf("kerberos: failed to load keytab %q: %w", cfg.KeytabPath, err)
	}

	krb5Conf, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("kerberos: failed to load config %q: %w", cfg.ConfigPath, err)
	}

	// Parse principal into username and realm parts.
	// If the principal contains "@", split on it; otherwise use the configured realm.
	username := cfg.Principal
	realm := cfg.Realm
	if idx := strings.LastIndex(cfg.Principal, "@"); idx >= 0 {
		username = cfg.Principal[:idx]
		realm = cfg.Principal[idx+1:]
	}

	cl := client.NewWithKeytab(username, realm, kt, krb5Conf)
	if err := cl.Login(); err != nil {
		return nil, nil, fmt.Errorf("kerberos: login failed: %w", err)
	}

	closer := &krbCloser{cl: cl}

	opt := func(req *http.Request) {
		spn := cfg.ServiceSPN
		if spn == "" {
			spn = "HTTP/" + req.URL.Hostname()
		}
		// SetSPNEGOHeader adds the Authorization: Negotiate header.
		// Errors are silently ignored here; the server will return 401
		// if the token is missing, which surfaces as a StatusError.
		_ = spnego.SetSPNEGOHeader(cl, req, spn)
	}

	return opt, closer, nil
}

// NewClientOption creates a livy.ClientOption that authenticates every
// request of the client with negotiated credentials. The returned io.Closer
// must be called to destroy the Kerberos client when done.
//
//	opt, closer, err := kerberos.NewClientOption(cfg)
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//	client, err := livy.NewClient(url, opt)
func NewClientOption(cfg Config) (livy.ClientOption, io.Closer, error) {
	reqOpt, closer, err := NewRequestOption(cfg)
	if err != nil {
		return nil, nil, err
	}
	return livy.WithRequestOptions(reqOpt), closer, nil
}
