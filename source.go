package ldapauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables honored when locating the host application's
// configuration directory and files.
const (
	// EnvConfigFile overrides the full path of the YAML configuration file.
	EnvConfigFile = "LDAP_AUTH_CONFIG"
	// EnvConfigDir and its legacy aliases override the base configuration
	// directory (default /config).
	EnvConfigDir = "HASS_CONFIG"
)

var configDirEnvVars = []string{EnvConfigDir, "HASS_CONFIG_DIR", "HOMEASSISTANT_CONFIG"}

// Source resolves directory connection parameters from one backing store.
// Load reads the backing store fresh on every invocation; the engine runs
// once per process so no caching is needed.
type Source interface {
	Load() (*Config, error)
}

// Selector names a configuration backend. Backend choice is always an
// explicit caller decision, never runtime probing of which file happens
// to exist.
type Selector string

const (
	// SelectorYAML reads the ldap_auth section of configuration.yaml.
	SelectorYAML Selector = "yaml"
	// SelectorStorage reads the persisted config entry store.
	SelectorStorage Selector = "storage"
	// SelectorAuto prefers the persisted store and falls back to YAML
	// when no store entry exists, mirroring the host's own precedence.
	SelectorAuto Selector = "auto"
)

// ConfigDir returns the host application's configuration directory,
// honoring the override environment variables.
func ConfigDir() string {
	for _, name := range configDirEnvVars {
		if dir := os.Getenv(name); dir != "" {
			return dir
		}
	}
	return DefaultConfigDir
}

// NewSource builds a Source for the given selector rooted at configDir.
// An empty configDir uses ConfigDir().
func NewSource(selector Selector, configDir string, logger *slog.Logger) (Source, error) {
	if configDir == "" {
		configDir = ConfigDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	switch selector {
	case SelectorYAML:
		return &YAMLSource{Path: yamlConfigPath(configDir), logger: logger}, nil
	case SelectorStorage:
		return &StorageSource{Path: storagePath(configDir), logger: logger}, nil
	case SelectorAuto, "":
		return &fallbackSource{
			primary:  &StorageSource{Path: storagePath(configDir), logger: logger},
			fallback: &YAMLSource{Path: yamlConfigPath(configDir), logger: logger},
		}, nil
	default:
		return nil, configurationError(ErrConfigMalformed, fmt.Sprintf("unknown configuration source %q", selector), nil)
	}
}

func yamlConfigPath(configDir string) string {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path
	}
	return filepath.Join(configDir, "configuration.yaml")
}

func storagePath(configDir string) string {
	return filepath.Join(configDir, ".storage", "core.config_entries")
}

// YAMLSource reads the ldap_auth section from a structured YAML
// configuration file.
type YAMLSource struct {
	// Path is the configuration file location.
	Path string

	logger *slog.Logger
}

// Load implements Source.
func (s *YAMLSource) Load() (*Config, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, configurationError(ErrConfigNotFound, fmt.Sprintf("configuration file %s does not exist", s.Path), nil)
		}
		return nil, configurationError(ErrConfigNotFound, fmt.Sprintf("cannot read configuration file %s", s.Path), err)
	}

	var root map[string]yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, configurationError(ErrConfigMalformed, fmt.Sprintf("cannot parse %s", s.Path), err)
	}

	section, ok := root[SectionKey]
	if !ok {
		return nil, configurationError(ErrConfigNotFound, fmt.Sprintf("missing %q section in %s", SectionKey, s.Path), nil)
	}

	var raw rawConfig
	if err := section.Decode(&raw); err != nil {
		return nil, configurationError(ErrConfigMalformed, fmt.Sprintf("invalid %q section in %s", SectionKey, s.Path), err)
	}

	s.logger.Debug("config_loaded",
		slog.String("source", "yaml"),
		slog.String("path", s.Path))

	return raw.config(), nil
}

// StorageSource reads the persisted config entry record written by the
// host application's configuration flow. The store holds one record per
// configured integration instance; the first enabled ldap_auth entry wins.
type StorageSource struct {
	// Path is the location of the config entry store.
	Path string

	logger *slog.Logger
}

// storageFile mirrors the entry store layout. Only the fields the engine
// needs are decoded; data and options stay raw so the merged record can be
// re-decoded as one rawConfig.
type storageFile struct {
	Data struct {
		Entries []storageEntry `json:"entries"`
	} `json:"data"`
}

type storageEntry struct {
	Domain     string                     `json:"domain"`
	DisabledBy *string                    `json:"disabled_by"`
	Data       map[string]json.RawMessage `json:"data"`
	Options    map[string]json.RawMessage `json:"options"`
}

// Load implements Source.
func (s *StorageSource) Load() (*Config, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, configurationError(ErrConfigNotFound, fmt.Sprintf("config entry store %s does not exist", s.Path), nil)
		}
		return nil, configurationError(ErrConfigNotFound, fmt.Sprintf("cannot read config entry store %s", s.Path), err)
	}

	var store storageFile
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, configurationError(ErrConfigMalformed, fmt.Sprintf("cannot parse config entry store %s", s.Path), err)
	}

	for _, entry := range store.Data.Entries {
		if entry.Domain != SectionKey || entry.DisabledBy != nil {
			continue
		}

		// Options are written by the UI after initial setup and
		// override the original data values.
		merged := make(map[string]json.RawMessage, len(entry.Data)+len(entry.Options))
		for k, v := range entry.Data {
			merged[k] = v
		}
		for k, v := range entry.Options {
			merged[k] = v
		}

		buf, err := json.Marshal(merged)
		if err != nil {
			return nil, configurationError(ErrConfigMalformed, "cannot merge config entry data and options", err)
		}
		var raw rawConfig
		if err := json.Unmarshal(buf, &raw); err != nil {
			return nil, configurationError(ErrConfigMalformed, fmt.Sprintf("invalid %q config entry in %s", SectionKey, s.Path), err)
		}

		s.logger.Debug("config_loaded",
			slog.String("source", "storage"),
			slog.String("path", s.Path))

		return raw.config(), nil
	}

	return nil, configurationError(ErrConfigNotFound, fmt.Sprintf("no enabled %q config entry in %s", SectionKey, s.Path), nil)
}

// fallbackSource tries the primary backend and falls back to the secondary
// only when the primary has no configuration at all. Malformed primary
// configuration stays a hard failure.
type fallbackSource struct {
	primary  Source
	fallback Source
}

// Load implements Source.
func (s *fallbackSource) Load() (*Config, error) {
	cfg, err := s.primary.Load()
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, ErrConfigNotFound) {
		return s.fallback.Load()
	}
	return nil, err
}

// StaticSource serves a fixed Config value. It is mainly useful for tests
// and embedding callers that manage configuration themselves.
type StaticSource struct {
	Config *Config
	Err    error
}

// Load implements Source.
func (s *StaticSource) Load() (*Config, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Config == nil {
		return nil, configurationError(ErrConfigNotFound, "no static configuration set", nil)
	}
	return s.Config, nil
}
