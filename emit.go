package ldapauth

import (
	"fmt"
	"io"
)

// Process exit codes. The host application only distinguishes zero from
// non-zero; the distinct failure codes exist for operators reading logs.
const (
	ExitSuccess              = 0
	ExitInvalidCredentials   = 1
	ExitConfigurationError   = 2
	ExitDirectoryUnavailable = 3
	ExitInternalError        = 5
)

// ExitCode maps an Outcome to the process exit status. The
// authentication-domain denials (wrong password, unknown username,
// ambiguous username) share one code so the boundary leaks nothing about
// which of them occurred.
func ExitCode(o Outcome) int {
	switch o {
	case OutcomeSuccess:
		return ExitSuccess
	case OutcomeInvalidCredentials, OutcomeUserNotFound, OutcomeAmbiguousUser:
		return ExitInvalidCredentials
	case OutcomeConfigurationError:
		return ExitConfigurationError
	case OutcomeDirectoryUnavailable:
		return ExitDirectoryUnavailable
	default:
		return ExitInternalError
	}
}

// Emit writes the process-boundary representation of res to w and returns
// the exit status. On success with a resolved display name it writes
// exactly one metadata line of the form "name = <value>"; on any failure
// it writes nothing, so no failure detail can leak to the caller.
func Emit(w io.Writer, res Resolution) int {
	if res.Outcome == OutcomeSuccess && res.DisplayName != "" {
		fmt.Fprintf(w, "name = %s\n", res.DisplayName)
	}
	return ExitCode(res.Outcome)
}
