package ldapauth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    int
	}{
		{OutcomeSuccess, ExitSuccess},
		{OutcomeInvalidCredentials, ExitInvalidCredentials},
		{OutcomeUserNotFound, ExitInvalidCredentials},
		{OutcomeAmbiguousUser, ExitInvalidCredentials},
		{OutcomeConfigurationError, ExitConfigurationError},
		{OutcomeDirectoryUnavailable, ExitDirectoryUnavailable},
		{OutcomeInternalError, ExitInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.outcome.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.outcome))
			if tt.outcome != OutcomeSuccess {
				assert.NotZero(t, ExitCode(tt.outcome))
			}
		})
	}
}

func TestEmitSuccessWithDisplayName(t *testing.T) {
	var out strings.Builder
	code := Emit(&out, Resolution{
		Outcome:     OutcomeSuccess,
		DN:          "uid=alice,dc=example,dc=com",
		DisplayName: "Alice A.",
	})

	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "name = Alice A.\n", out.String())
}

func TestEmitSuccessWithoutDisplayName(t *testing.T) {
	var out strings.Builder
	code := Emit(&out, Resolution{Outcome: OutcomeSuccess, DN: "uid=alice,dc=example,dc=com"})

	assert.Equal(t, ExitSuccess, code)
	assert.Empty(t, out.String())
}

func TestEmitFailuresWriteNothing(t *testing.T) {
	outcomes := []Outcome{
		OutcomeInvalidCredentials,
		OutcomeUserNotFound,
		OutcomeAmbiguousUser,
		OutcomeDirectoryUnavailable,
		OutcomeConfigurationError,
		OutcomeInternalError,
	}

	for _, outcome := range outcomes {
		t.Run(outcome.String(), func(t *testing.T) {
			var out strings.Builder
			// Even a populated display name must not leak on failure.
			code := Emit(&out, Resolution{Outcome: outcome, DisplayName: "Alice A."})

			assert.NotZero(t, code)
			assert.Empty(t, out.String())
		})
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", OutcomeSuccess.String())
	assert.Equal(t, "ambiguous_user", OutcomeAmbiguousUser.String())
	assert.Equal(t, "internal_error", Outcome(99).String())
}
