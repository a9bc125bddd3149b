package ldapauth

import (
	"fmt"
	"log/slog"
	"time"
)

// Resolver orchestrates one credential resolution attempt: load the
// configuration, connect, bind as the helper identity, search for the
// candidate user and rebind as the matched DN with the supplied secret.
//
// The directory, not the caller, supplies the DN that is verified against:
// a client can never cause a bind against a DN it chose itself.
type Resolver struct {
	source Source
	dialer Dialer
	logger *slog.Logger
}

// NewResolver creates a Resolver reading connection parameters from source.
func NewResolver(source Source, opts ...Option) *Resolver {
	r := &Resolver{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.dialer == nil {
		r.dialer = &directoryDialer{logger: r.logger}
	}
	return r
}

// Resolve performs one resolution attempt for the supplied credentials and
// returns the terminal Resolution. All network operations are bounded by
// the configured timeout; a timed-out operation is abandoned and reported
// as directory-unavailable, never retried within the attempt.
func (r *Resolver) Resolve(username, password string) Resolution {
	start := time.Now()
	maskedUsername := maskSensitiveData(username)

	if username == "" || password == "" {
		// An empty secret must never reach the directory: LDAP treats a
		// bind without a password as anonymous and would report success.
		r.logger.Warn("resolution_rejected_empty_credentials",
			slog.String("username_masked", maskedUsername))
		return Resolution{Outcome: OutcomeInvalidCredentials, Err: ErrInvalidCredentials}
	}

	cfg, err := r.source.Load()
	if err != nil {
		r.logger.Error("resolution_configuration_failed",
			slog.String("username_masked", maskedUsername),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return Resolution{Outcome: OutcomeConfigurationError, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		r.logger.Error("resolution_configuration_invalid",
			slog.String("username_masked", maskedUsername),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return Resolution{Outcome: OutcomeConfigurationError, Err: err}
	}

	maskedServer := maskSensitiveData(cfg.ServerURI)
	r.logger.Debug("resolution_attempt",
		slog.String("username_masked", maskedUsername),
		slog.String("server_masked", maskedServer))

	conn, err := r.dialer.Dial(cfg)
	if err != nil {
		return r.unavailable(start, maskedUsername, "connect", err)
	}
	// Scoped resource: the connection is released on every exit path.
	defer func() { _ = conn.Close() }()

	// The helper identity exists solely to authorize the search. Its bind
	// failing means the service is misconfigured, so it surfaces as
	// directory-unavailable and is never conflated with the end user's
	// own invalid credentials.
	if err := conn.Bind(cfg.HelperDN, cfg.HelperPassword); err != nil {
		return r.unavailable(start, maskedUsername, "helper_bind",
			unavailableError("helper_bind", cfg.ServerURI, err))
	}

	entries, err := searchUser(conn, cfg, username)
	if err != nil {
		return r.unavailable(start, maskedUsername, "user_search",
			unavailableError("user_search", cfg.ServerURI, err))
	}

	switch {
	case len(entries) == 0:
		r.logger.Warn("resolution_user_not_found",
			slog.String("username_masked", maskedUsername),
			slog.Duration("duration", time.Since(start)))
		return Resolution{Outcome: OutcomeUserNotFound, Err: ErrUserNotFound}
	case len(entries) > 1:
		// Fail closed: with a non-unique username there is no entry the
		// engine may legitimately bind against.
		r.logger.Warn("resolution_ambiguous_user",
			slog.String("username_masked", maskedUsername),
			slog.Int("matches", len(entries)),
			slog.Duration("duration", time.Since(start)))
		return Resolution{Outcome: OutcomeAmbiguousUser, Err: ErrAmbiguousUser}
	}

	entry := entries[0]
	if entry.DN == "" {
		err := fmt.Errorf("search result for user has no DN")
		r.logger.Error("resolution_entry_invalid",
			slog.String("username_masked", maskedUsername),
			slog.Duration("duration", time.Since(start)))
		return Resolution{Outcome: OutcomeInternalError, Err: err}
	}

	displayName := ""
	if cfg.DisplayAttribute != "" {
		displayName = entry.GetAttributeValue(cfg.DisplayAttribute)
		if displayName == "" {
			displayName = username
		}
	}

	// The actual credential check: rebind as the matched DN with the
	// supplied secret. The helper identity is never reused to impersonate
	// success.
	if err := conn.Bind(entry.DN, password); err != nil {
		if IsInvalidCredentials(err) {
			r.logger.Warn("resolution_invalid_credentials",
				slog.String("username_masked", maskedUsername),
				slog.String("dn_masked", maskSensitiveData(entry.DN)),
				slog.Duration("duration", time.Since(start)))
			return Resolution{Outcome: OutcomeInvalidCredentials, Err: ErrInvalidCredentials}
		}
		return r.unavailable(start, maskedUsername, "user_bind",
			fmt.Errorf("%w: %w", ErrDirectoryUnavailable, NewDirectoryError("user_bind", cfg.ServerURI, err).WithDN(entry.DN)))
	}

	r.logger.Info("resolution_successful",
		slog.String("username_masked", maskedUsername),
		slog.String("dn_masked", maskSensitiveData(entry.DN)),
		slog.Duration("duration", time.Since(start)))

	return Resolution{Outcome: OutcomeSuccess, DN: entry.DN, DisplayName: displayName}
}

func (r *Resolver) unavailable(start time.Time, maskedUsername, op string, err error) Resolution {
	r.logger.Error("resolution_directory_unavailable",
		slog.String("operation", op),
		slog.String("username_masked", maskedUsername),
		slog.String("error", err.Error()),
		slog.Duration("duration", time.Since(start)))
	return Resolution{Outcome: OutcomeDirectoryUnavailable, Err: err}
}
