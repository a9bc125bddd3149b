package ldapauth

import (
	"log/slog"
)

// Option represents a functional option for configuring a Resolver.
type Option func(*Resolver)

// WithLogger sets a custom structured logger for resolution operations.
// If not provided, slog.Default() is used.
//
// Example:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	resolver := ldapauth.NewResolver(source, ldapauth.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDialer sets a custom directory dialer. This exists mainly so tests
// can substitute a recording double for the production go-ldap dialer.
func WithDialer(dialer Dialer) Option {
	return func(r *Resolver) {
		r.dialer = dialer
	}
}
