package ldapauth

import (
	"errors"
	"fmt"

	"github.com/go-ldap/ldap/v3"
)

// Sentinel errors for the resolution engine. They provide a stable API for
// error classification; callers should match them with errors.Is.
var (
	// Configuration errors
	ErrConfigNotFound   = errors.New("ldapauth: no configuration found")
	ErrConfigMalformed  = errors.New("ldapauth: configuration malformed")
	ErrConfigIncomplete = errors.New("ldapauth: configuration incomplete")

	// Connection errors
	ErrDirectoryUnavailable = errors.New("ldapauth: directory unavailable")

	// Authentication-domain outcomes
	ErrInvalidCredentials = errors.New("ldapauth: invalid credentials")
	ErrUserNotFound       = errors.New("ldapauth: user not found")
	ErrAmbiguousUser      = errors.New("ldapauth: username matches more than one entry")
)

// DirectoryError is an enhanced error with context for directory operations.
// It wraps the underlying error while recording the operation, the server it
// was issued against and the DN involved (if any).
type DirectoryError struct {
	// Op is the operation name (e.g., "connect", "helper_bind", "user_search")
	Op string
	// Server is the directory server URI
	Server string
	// DN is the distinguished name involved in the operation (if applicable)
	DN string
	// Code is the LDAP result code (if applicable)
	Code int
	// Err is the underlying error
	Err error
}

// Error implements the error interface, providing a formatted error message.
func (e *DirectoryError) Error() string {
	if e.DN != "" {
		return fmt.Sprintf("ldap %s failed for DN %q on server %q: %v", e.Op, e.DN, e.Server, e.Err)
	}
	return fmt.Sprintf("ldap %s failed on server %q: %v", e.Op, e.Server, e.Err)
}

// Unwrap implements the Go 1.13+ error unwrapping interface.
func (e *DirectoryError) Unwrap() error {
	return e.Err
}

// NewDirectoryError creates a new DirectoryError for the given operation.
func NewDirectoryError(op, server string, err error) *DirectoryError {
	e := &DirectoryError{Op: op, Server: server, Err: err}
	var ldapErr *ldap.Error
	if errors.As(err, &ldapErr) {
		e.Code = int(ldapErr.ResultCode)
	}
	return e
}

// WithDN adds a distinguished name to the error context.
func (e *DirectoryError) WithDN(dn string) *DirectoryError {
	e.DN = dn
	return e
}

// IsInvalidCredentials reports whether err represents an LDAP invalid
// credentials protocol response (result code 49) or the package sentinel.
// Every other bind failure is a transport or configuration class fault and
// must not be conflated with a wrong password.
func IsInvalidCredentials(err error) bool {
	if errors.Is(err, ErrInvalidCredentials) {
		return true
	}
	return ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials)
}

// IsConfigurationError reports whether err belongs to the configuration
// error class (missing, malformed or incomplete connection parameters).
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfigNotFound) ||
		errors.Is(err, ErrConfigMalformed) ||
		errors.Is(err, ErrConfigIncomplete)
}

// configurationError creates a standardized configuration error wrapping
// one of the configuration sentinels.
func configurationError(sentinel error, issue string, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", sentinel, issue, err)
	}
	return fmt.Errorf("%w: %s", sentinel, issue)
}

// unavailableError wraps a transport, TLS or protocol-negotiation fault.
// The engine deliberately collapses all of them to the same class so the
// caller cannot fingerprint infrastructure detail.
func unavailableError(op, server string, err error) error {
	return fmt.Errorf("%w: %w", ErrDirectoryUnavailable, NewDirectoryError(op, server, err))
}
