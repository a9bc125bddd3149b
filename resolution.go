package ldapauth

// Outcome classifies the result of one credential resolution attempt.
// Only OutcomeSuccess is authentication-positive.
type Outcome int

const (
	// OutcomeSuccess means the candidate user was found and the supplied
	// secret bound successfully against the matched DN.
	OutcomeSuccess Outcome = iota
	// OutcomeInvalidCredentials means the directory rejected the supplied
	// secret for the matched DN.
	OutcomeInvalidCredentials
	// OutcomeUserNotFound means no directory entry matched the username.
	OutcomeUserNotFound
	// OutcomeAmbiguousUser means more than one entry matched the username.
	// The engine fails closed and never binds against an arbitrarily
	// chosen entry.
	OutcomeAmbiguousUser
	// OutcomeDirectoryUnavailable covers transport, TLS and protocol
	// faults, including a failed helper bind (a service misconfiguration,
	// not a statement about the end user's credentials).
	OutcomeDirectoryUnavailable
	// OutcomeConfigurationError means connection parameters were missing
	// or malformed.
	OutcomeConfigurationError
	// OutcomeInternalError covers unexpected engine faults.
	OutcomeInternalError
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	case OutcomeUserNotFound:
		return "user_not_found"
	case OutcomeAmbiguousUser:
		return "ambiguous_user"
	case OutcomeDirectoryUnavailable:
		return "directory_unavailable"
	case OutcomeConfigurationError:
		return "configuration_error"
	default:
		return "internal_error"
	}
}

// Resolution is the terminal result of one resolution attempt. Exactly one
// Resolution is produced per attempt; the engine never retries internally.
type Resolution struct {
	// Outcome classifies the attempt.
	Outcome Outcome
	// DN is the distinguished name the directory matched for the
	// username. Set only on success.
	DN string
	// DisplayName is the resolved display attribute value, falling back
	// to the username when the entry lacks the attribute. Set only on
	// success and only when a display attribute is configured.
	DisplayName string
	// Err carries the underlying cause for non-success outcomes. It never
	// crosses the process boundary.
	Err error
}

// Authenticated reports whether the attempt proved the supplied credentials.
func (r Resolution) Authenticated() bool {
	return r.Outcome == OutcomeSuccess
}
