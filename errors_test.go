package ldapauth

import (
	"errors"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
)

func TestDirectoryErrorFormatting(t *testing.T) {
	base := errors.New("connection reset")

	err := NewDirectoryError("connect", "ldap://ldap.example.com", base)
	assert.Equal(t, `ldap connect failed on server "ldap://ldap.example.com": connection reset`, err.Error())
	assert.ErrorIs(t, err, base)

	err = err.WithDN("uid=alice,dc=example,dc=com")
	assert.Equal(t, `ldap connect failed for DN "uid=alice,dc=example,dc=com" on server "ldap://ldap.example.com": connection reset`, err.Error())
}

func TestDirectoryErrorCapturesResultCode(t *testing.T) {
	ldapErr := ldap.NewError(ldap.LDAPResultBusy, errors.New("busy"))

	err := NewDirectoryError("user_search", "ldap://ldap.example.com", ldapErr)
	assert.Equal(t, int(ldap.LDAPResultBusy), err.Code)
}

func TestIsInvalidCredentials(t *testing.T) {
	assert.True(t, IsInvalidCredentials(ErrInvalidCredentials))
	assert.True(t, IsInvalidCredentials(ldap.NewError(ldap.LDAPResultInvalidCredentials, errors.New("invalid credentials"))))

	assert.False(t, IsInvalidCredentials(nil))
	assert.False(t, IsInvalidCredentials(errors.New("network down")))
	assert.False(t, IsInvalidCredentials(ldap.NewError(ldap.LDAPResultUnavailable, errors.New("unavailable"))))
}

func TestIsConfigurationError(t *testing.T) {
	assert.True(t, IsConfigurationError(configurationError(ErrConfigNotFound, "missing", nil)))
	assert.True(t, IsConfigurationError(configurationError(ErrConfigMalformed, "bad yaml", errors.New("yaml: line 3"))))
	assert.True(t, IsConfigurationError(configurationError(ErrConfigIncomplete, "no base DN", nil)))

	assert.False(t, IsConfigurationError(ErrDirectoryUnavailable))
	assert.False(t, IsConfigurationError(nil))
}

func TestUnavailableErrorClass(t *testing.T) {
	err := unavailableError("connect", "ldap://ldap.example.com", errors.New("connection refused"))

	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
	var dirErr *DirectoryError
	assert.ErrorAs(t, err, &dirErr)
	assert.Equal(t, "connect", dirErr.Op)
}
