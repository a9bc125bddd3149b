// Package ldapauth verifies a username/password pair against an LDAP or
// LDAPS directory on behalf of a host application that runs an external
// command and interprets its exit code (Home Assistant's command_line auth
// provider).
//
// The engine performs a two-phase bind: it first binds as a configured
// helper identity to search for the candidate user, then rebinds as the
// matched distinguished name with the supplied password. The caller never
// supplies the DN that gets verified, which makes it impossible to bind as
// an arbitrary chosen entry.
//
// # Basic Usage
//
//	source, err := ldapauth.NewSource(ldapauth.SelectorAuto, "", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	resolver := ldapauth.NewResolver(source, ldapauth.WithLogger(logger))
//	res := resolver.Resolve(os.Getenv("username"), os.Getenv("password"))
//	os.Exit(ldapauth.Emit(os.Stdout, res))
//
// # Configuration
//
// Connection parameters are read fresh per attempt from one of two
// backends, chosen explicitly by the caller: the ldap_auth section of
// configuration.yaml, or the persisted config entry store written by the
// host's UI configuration flow. A missing or malformed configuration is
// always a hard failure; the engine never falls back to default directory
// parameters.
//
// # Error Handling
//
// Outcomes are classified, not raised: every attempt terminates in exactly
// one Resolution. Sentinel errors support programmatic matching:
//   - ErrInvalidCredentials: the directory rejected the supplied password
//   - ErrUserNotFound: no entry matched the username
//   - ErrAmbiguousUser: more than one entry matched; the engine fails closed
//   - ErrDirectoryUnavailable: transport, TLS or protocol fault, including
//     a failed helper bind
//   - ErrConfigNotFound, ErrConfigMalformed, ErrConfigIncomplete:
//     configuration-class failures
//
// At the process boundary all failure classes deny access identically
// (non-zero exit, no stdout output) so the caller cannot enumerate
// usernames or fingerprint the configuration.
package ldapauth
