package ldapauth

import (
	"errors"
	"testing"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserFilter(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, "(&(&(objectClass=person))(uid=alice))", userFilter(cfg, "alice"))

	// A base filter without surrounding parentheses is wrapped.
	cfg.BaseFilter = "objectClass=person"
	assert.Equal(t, "(&(objectClass=person)(uid=alice))", userFilter(cfg, "alice"))

	// Filter metacharacters in the username are escaped.
	cfg.BaseFilter = "(objectClass=person)"
	assert.Equal(t, `(&(objectClass=person)(uid=\2a\29\28uid=\2a))`, userFilter(cfg, "*)(uid=*"))
}

func TestSearchAttributes(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, []string{"displayName"}, searchAttributes(cfg))

	cfg.DisplayAttribute = ""
	assert.Nil(t, searchAttributes(cfg))
}

func TestNewTLSConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ServerURI = "ldaps://directory.example.com:636"

	tlsConfig, err := newTLSConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "directory.example.com", tlsConfig.ServerName)
	assert.False(t, tlsConfig.InsecureSkipVerify)

	cfg.VerifySSL = false
	tlsConfig, err = newTLSConfig(cfg)
	require.NoError(t, err)
	assert.True(t, tlsConfig.InsecureSkipVerify)
}

func TestSearchUserCapsResults(t *testing.T) {
	conn := &mockConn{
		searchResult: &ldap.SearchResult{Entries: []*ldap.Entry{
			ldap.NewEntry("uid=alice,ou=a,dc=example,dc=com", nil),
			ldap.NewEntry("uid=alice,ou=b,dc=example,dc=com", nil),
		}},
	}

	entries, err := searchUser(conn, testConfig(), "alice")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, maxUserMatches, conn.searchRequest.SizeLimit)
}

func TestSearchUserSizeLimitExceeded(t *testing.T) {
	// Servers enforcing the size limit report an error alongside the
	// capped entries; two entries are enough to classify the username as
	// ambiguous, so the error is not a fault.
	conn := &sizeLimitConn{
		entries: []*ldap.Entry{
			ldap.NewEntry("uid=alice,ou=a,dc=example,dc=com", nil),
			ldap.NewEntry("uid=alice,ou=b,dc=example,dc=com", nil),
		},
	}

	entries, err := searchUser(conn, testConfig(), "alice")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

// sizeLimitConn simulates a server that returns entries together with a
// size limit exceeded result code.
type sizeLimitConn struct {
	entries []*ldap.Entry
}

func (c *sizeLimitConn) Bind(string, string) error { return nil }

func (c *sizeLimitConn) Search(*ldap.SearchRequest) (*ldap.SearchResult, error) {
	return &ldap.SearchResult{Entries: c.entries},
		ldap.NewError(ldap.LDAPResultSizeLimitExceeded, errors.New("size limit exceeded"))
}

func (c *sizeLimitConn) Close() error { return nil }

func TestDialUnreachableServerHonorsTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network timeout test in short mode")
	}

	cfg := testConfig()
	// 192.0.2.0/24 is TEST-NET-1, guaranteed unroutable.
	cfg.ServerURI = "ldap://192.0.2.1:389"
	cfg.Timeout = 1 * time.Second

	dialer := &directoryDialer{logger: discardLogger()}
	start := time.Now()
	_, err := dialer.Dial(cfg)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDirectoryUnavailable)
	// The configured timeout bounds the connect; allow scheduling slack.
	assert.Less(t, elapsed, 3*time.Second)
}
