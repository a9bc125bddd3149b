package ldapauth

import (
	"net/url"
	"strings"
	"time"
)

// SectionKey is the top-level configuration key the host application uses
// for this integration, both in configuration.yaml and in the persisted
// config entry store.
const SectionKey = "ldap_auth"

// Defaults applied to optional configuration fields.
const (
	DefaultConfigDir        = "/config"
	DefaultTimeout          = 3 * time.Second
	DefaultSearchAttribute  = "uid"
	DefaultBaseFilter       = "(&(objectClass=person))"
	DefaultDisplayAttribute = "displayName"
)

// Config contains the directory connection parameters for one resolution
// attempt. A Config is built fresh from a Source on every attempt and never
// mutated afterwards.
type Config struct {
	// ServerURI is the directory server URI, scheme ldap:// or ldaps://.
	ServerURI string
	// HelperDN is the service identity used only to search for the
	// candidate user. It is never used to authenticate end users.
	HelperDN string
	// HelperPassword is the helper identity's secret.
	HelperPassword string
	// BaseDN is the search base for user lookups.
	BaseDN string
	// SearchAttribute is matched against the supplied username (e.g. "uid").
	SearchAttribute string
	// BaseFilter constrains eligible entries; it is ANDed with the
	// username match.
	BaseFilter string
	// DisplayAttribute is surfaced as metadata on success. Empty disables
	// metadata output.
	DisplayAttribute string
	// Timeout bounds TCP connect, TLS handshake and each directory
	// operation.
	Timeout time.Duration
	// VerifySSL controls certificate verification for ldaps:// and
	// StartTLS connections.
	VerifySSL bool
	// UseStartTLS upgrades a plaintext ldap:// connection via StartTLS
	// before any bind.
	UseStartTLS bool
}

// rawConfig is the on-disk shape shared by both configuration backends.
// Field names follow the keys the host application's integration writes.
type rawConfig struct {
	Server      string `yaml:"server" json:"server"`
	HelperDN    string `yaml:"helperdn" json:"helperdn"`
	HelperPass  string `yaml:"helperpass" json:"helperpass"`
	BaseDN      string `yaml:"basedn" json:"basedn"`
	Attrs       string `yaml:"attrs" json:"attrs"`
	BaseFilter  string `yaml:"base_filter" json:"base_filter"`
	DisplayAttr string `yaml:"display_attr" json:"display_attr"`
	Timeout     *int   `yaml:"timeout" json:"timeout"`
	VerifySSL   *bool  `yaml:"verify_ssl" json:"verify_ssl"`
	UseStartTLS *bool  `yaml:"use_starttls" json:"use_starttls"`
}

// config converts the raw record to a Config, applying defaults for
// optional fields. Legacy configurations may carry a comma-separated list
// in attrs; the first element is the search attribute.
func (r *rawConfig) config() *Config {
	cfg := &Config{
		ServerURI:        strings.TrimSpace(r.Server),
		HelperDN:         strings.TrimSpace(r.HelperDN),
		HelperPassword:   r.HelperPass,
		BaseDN:           strings.TrimSpace(r.BaseDN),
		SearchAttribute:  firstAttribute(r.Attrs, DefaultSearchAttribute),
		BaseFilter:       strings.TrimSpace(r.BaseFilter),
		DisplayAttribute: strings.TrimSpace(r.DisplayAttr),
		Timeout:          DefaultTimeout,
		VerifySSL:        true,
	}
	if cfg.BaseFilter == "" {
		cfg.BaseFilter = DefaultBaseFilter
	}
	if cfg.DisplayAttribute == "" {
		cfg.DisplayAttribute = DefaultDisplayAttribute
	}
	if r.Timeout != nil && *r.Timeout > 0 {
		cfg.Timeout = time.Duration(*r.Timeout) * time.Second
	}
	if r.VerifySSL != nil {
		cfg.VerifySSL = *r.VerifySSL
	}
	if r.UseStartTLS != nil {
		cfg.UseStartTLS = *r.UseStartTLS
	}
	return cfg
}

// Validate checks the Config invariants. Absence of a valid configuration
// is always a hard failure; the engine never falls back to default
// directory parameters.
func (c *Config) Validate() error {
	if c.ServerURI == "" {
		return configurationError(ErrConfigIncomplete, "server URI cannot be empty", nil)
	}
	u, err := url.Parse(c.ServerURI)
	if err != nil {
		return configurationError(ErrConfigMalformed, "server URI is not parseable", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "ldap", "ldaps":
	default:
		return configurationError(ErrConfigMalformed, "server URI scheme must be ldap or ldaps", nil)
	}
	if u.Host == "" {
		return configurationError(ErrConfigMalformed, "server URI has no host", nil)
	}
	if c.HelperDN == "" {
		return configurationError(ErrConfigIncomplete, "helper bind DN cannot be empty", nil)
	}
	if c.BaseDN == "" {
		return configurationError(ErrConfigIncomplete, "base DN cannot be empty", nil)
	}
	if c.SearchAttribute == "" {
		return configurationError(ErrConfigIncomplete, "search attribute cannot be empty", nil)
	}
	if c.Timeout <= 0 {
		return configurationError(ErrConfigMalformed, "timeout must be positive", nil)
	}
	return nil
}

// IsSecure reports whether the connection will be TLS-protected, either by
// the ldaps scheme or by a StartTLS upgrade.
func (c *Config) IsSecure() bool {
	return strings.HasPrefix(strings.ToLower(c.ServerURI), "ldaps://") || c.UseStartTLS
}

// firstAttribute returns the first element of a possibly comma-separated
// attribute list, or fallback when the list is empty.
func firstAttribute(attrs, fallback string) string {
	for _, a := range strings.Split(attrs, ",") {
		if a = strings.TrimSpace(a); a != "" {
			return a
		}
	}
	return fallback
}
