package ldapauth

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// maxUserMatches caps the user search result size. The engine only needs to
// distinguish zero, one and more-than-one matches, so transferring more
// entries would only leak directory content.
const maxUserMatches = 2

// Conn is the minimal directory connection surface the engine needs. The
// production implementation is *ldap.Conn; tests substitute doubles that
// record bind calls.
type Conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// Dialer establishes a directory connection for one resolution attempt.
// It exists to enable testing; when nil, the Resolver uses the production
// go-ldap dialer.
type Dialer interface {
	Dial(cfg *Config) (Conn, error)
}

// DialerFunc makes it easy to use a func as a Dialer.
type DialerFunc func(cfg *Config) (Conn, error)

// Dial implements Dialer.
func (f DialerFunc) Dial(cfg *Config) (Conn, error) {
	return f(cfg)
}

// directoryDialer is the production Dialer backed by go-ldap.
type directoryDialer struct {
	logger *slog.Logger
}

// Dial connects to the directory server named by cfg.ServerURI. The
// configured timeout bounds the TCP connect, the TLS handshake and every
// subsequent operation on the returned connection. Any transport, TLS or
// protocol-negotiation fault collapses to the directory-unavailable class
// so an unauthenticated caller cannot fingerprint the infrastructure.
func (d *directoryDialer) Dial(cfg *Config) (Conn, error) {
	start := time.Now()

	tlsConfig, err := newTLSConfig(cfg)
	if err != nil {
		return nil, unavailableError("connect", cfg.ServerURI, err)
	}

	conn, err := ldap.DialURL(cfg.ServerURI,
		ldap.DialWithDialer(&net.Dialer{Timeout: cfg.Timeout}),
		ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		d.logger.Error("directory_dial_failed",
			slog.String("server", maskSensitiveData(cfg.ServerURI)),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return nil, unavailableError("connect", cfg.ServerURI, err)
	}
	conn.SetTimeout(cfg.Timeout)

	if cfg.UseStartTLS && !strings.HasPrefix(strings.ToLower(cfg.ServerURI), "ldaps://") {
		if err := conn.StartTLS(tlsConfig); err != nil {
			_ = conn.Close()
			d.logger.Error("directory_starttls_failed",
				slog.String("server", maskSensitiveData(cfg.ServerURI)),
				slog.String("error", err.Error()),
				slog.Duration("duration", time.Since(start)))
			return nil, unavailableError("starttls", cfg.ServerURI, err)
		}
	}

	d.logger.Debug("directory_connection_established",
		slog.String("server", maskSensitiveData(cfg.ServerURI)),
		slog.Bool("secure", cfg.IsSecure()),
		slog.Duration("duration", time.Since(start)))

	return conn, nil
}

// newTLSConfig builds the TLS client configuration for both ldaps and
// StartTLS connections.
func newTLSConfig(cfg *Config) (*tls.Config, error) {
	u, err := url.Parse(cfg.ServerURI)
	if err != nil {
		return nil, fmt.Errorf("invalid server URI: %w", err)
	}
	host := u.Hostname()
	return &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: !cfg.VerifySSL, //nolint:gosec // operator opt-out via verify_ssl
	}, nil
}

// searchUser looks up the candidate user entry. The supplied username is
// end-user input and is escaped before being interpolated into the filter
// to prevent query injection. At most maxUserMatches entries are returned;
// an empty result is not an error.
func searchUser(conn Conn, cfg *Config, username string) ([]*ldap.Entry, error) {
	req := &ldap.SearchRequest{
		BaseDN:       cfg.BaseDN,
		Scope:        ldap.ScopeWholeSubtree,
		DerefAliases: ldap.NeverDerefAliases,
		SizeLimit:    maxUserMatches,
		TimeLimit:    int(cfg.Timeout / time.Second),
		Filter:       userFilter(cfg, username),
		Attributes:   searchAttributes(cfg),
	}

	result, err := conn.Search(req)
	if err != nil {
		// The server reports an exceeded size limit as an error while
		// still returning the capped entries; two entries are enough to
		// know the username is ambiguous.
		if ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) &&
			result != nil && len(result.Entries) >= maxUserMatches {
			return result.Entries, nil
		}
		return nil, err
	}
	return result.Entries, nil
}

// userFilter combines the configured base filter with the username match:
// (&(baseFilter)(searchAttribute=username)).
func userFilter(cfg *Config, username string) string {
	base := cfg.BaseFilter
	if !strings.HasPrefix(base, "(") || !strings.HasSuffix(base, ")") {
		base = "(" + base + ")"
	}
	return fmt.Sprintf("(&%s(%s=%s))", base, cfg.SearchAttribute, ldap.EscapeFilter(username))
}

func searchAttributes(cfg *Config) []string {
	if cfg.DisplayAttribute == "" {
		return nil
	}
	return []string{cfg.DisplayAttribute}
}
