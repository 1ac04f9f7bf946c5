// Package config holds the validated settings the database is constructed
// from: backend selection and sizing for the datastore, API and net
// addresses, and the logging setup with per-logger overrides.
package config

import (
	"errors"
	"net"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	DatastoreTypeMemory = "memory"
	DatastoreTypeBadger = "badger"

	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelError = "error"
	LogLevelFatal = "fatal"

	LogFormatText = "text"
	LogFormatJSON = "json"

	envPrefix = "LOOM"
)

// Config is the root configuration object handed to the database at
// startup. A Config produced by DefaultConfig or Load is always valid.
type Config struct {
	Datastore DatastoreConfig `mapstructure:"datastore"`
	API       APIConfig       `mapstructure:"api"`
	Net       NetConfig       `mapstructure:"net"`
	Log       LoggingConfig   `mapstructure:"log"`
	Rootdir   string          `mapstructure:"-"`
}

// DatastoreConfig selects and sizes the storage backend.
type DatastoreConfig struct {
	Store         string       `mapstructure:"store"`
	Memory        MemoryConfig `mapstructure:"memory"`
	Badger        BadgerConfig `mapstructure:"badger"`
	MaxTxnRetries int          `mapstructure:"maxtxnretries"`
}

// BadgerConfig sizes the on-disk backend.
type BadgerConfig struct {
	Path             string   `mapstructure:"path"`
	ValueLogFileSize ByteSize `mapstructure:"valuelogfilesize"`
}

// MemoryConfig sizes the in-memory backend.
type MemoryConfig struct {
	Size uint64 `mapstructure:"size"`
}

type APIConfig struct {
	Address        string   `mapstructure:"address"`
	TLS            bool     `mapstructure:"tls"`
	AllowedOrigins []string `mapstructure:"allowedorigins"`
	PubKeyPath     string   `mapstructure:"pubkeypath"`
	PrivKeyPath    string   `mapstructure:"privkeypath"`
	Email          string   `mapstructure:"email"`
}

type NetConfig struct {
	P2PAddress    string `mapstructure:"p2paddress"`
	P2PDisabled   bool   `mapstructure:"p2pdisabled"`
	Peers         string `mapstructure:"peers"`
	PubSubEnabled bool   `mapstructure:"pubsubenabled"`
	RelayEnabled  bool   `mapstructure:"relayenabled"`
}

// LoggingConfig describes one logger. Logger carries raw per-logger
// override strings ("name,key=value,..." joined by ';'), which validation
// resolves into NamedOverrides.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Stacktrace bool   `mapstructure:"stacktrace"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Caller     bool   `mapstructure:"caller"`
	NoColor    bool   `mapstructure:"nocolor"`
	Logger     string `mapstructure:"logger"`

	NamedOverrides map[string]*NamedLoggingConfig `mapstructure:"-"`
}

// NamedLoggingConfig is a LoggingConfig bound to one logger name. Overrides
// live in a flat name-keyed map on the parent rather than nesting configs
// inside each other.
type NamedLoggingConfig struct {
	Name string
	LoggingConfig
}

func DefaultConfig() *Config {
	return &Config{
		Datastore: DatastoreConfig{
			Store: DatastoreTypeBadger,
			Memory: MemoryConfig{
				Size: 0,
			},
			Badger: BadgerConfig{
				Path:             "data",
				ValueLogFileSize: 1 * GiB,
			},
			MaxTxnRetries: 5,
		},
		API: APIConfig{
			Address: "localhost:9181",
			Email:   "example@example.com",
		},
		Net: NetConfig{
			P2PAddress:    "0.0.0.0:9171",
			PubSubEnabled: true,
		},
		Log: LoggingConfig{
			Level:          LogLevelInfo,
			Format:         LogFormatText,
			Output:         "stderr",
			NamedOverrides: make(map[string]*NamedLoggingConfig),
		},
	}
}

// Load reads config.yaml from rootdir (if present), applies LOOM_*
// environment variables over it, validates the result and resolves paths.
// A missing config file just keeps the defaults.
func Load(rootdir string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(rootdir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, NewErrReadingConfigFile(err)
		}
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, NewErrLoadingConfig(err)
	}

	cfg.Rootdir = rootdir
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every config key with viper. Environment variables
// only override keys viper knows about, so without this an env override for
// a key absent from the config file would be silently ignored.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("datastore.store", cfg.Datastore.Store)
	v.SetDefault("datastore.maxtxnretries", cfg.Datastore.MaxTxnRetries)
	v.SetDefault("datastore.memory.size", cfg.Datastore.Memory.Size)
	v.SetDefault("datastore.badger.path", cfg.Datastore.Badger.Path)
	v.SetDefault("datastore.badger.valuelogfilesize", cfg.Datastore.Badger.ValueLogFileSize.String())

	v.SetDefault("api.address", cfg.API.Address)
	v.SetDefault("api.tls", cfg.API.TLS)
	v.SetDefault("api.allowedorigins", cfg.API.AllowedOrigins)
	v.SetDefault("api.pubkeypath", cfg.API.PubKeyPath)
	v.SetDefault("api.privkeypath", cfg.API.PrivKeyPath)
	v.SetDefault("api.email", cfg.API.Email)

	v.SetDefault("net.p2paddress", cfg.Net.P2PAddress)
	v.SetDefault("net.p2pdisabled", cfg.Net.P2PDisabled)
	v.SetDefault("net.peers", cfg.Net.Peers)
	v.SetDefault("net.pubsubenabled", cfg.Net.PubSubEnabled)
	v.SetDefault("net.relayenabled", cfg.Net.RelayEnabled)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.stacktrace", cfg.Log.Stacktrace)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.output", cfg.Log.Output)
	v.SetDefault("log.caller", cfg.Log.Caller)
	v.SetDefault("log.nocolor", cfg.Log.NoColor)
	v.SetDefault("log.logger", cfg.Log.Logger)
}

// Validate checks every section and resolves the logger override strings
// into Log.NamedOverrides.
func (c *Config) Validate() error {
	if err := c.Datastore.validate(); err != nil {
		return err
	}
	if err := c.API.validate(); err != nil {
		return err
	}
	if err := c.Log.validate(); err != nil {
		return err
	}
	return c.parseLoggerOverrides()
}

func (c *DatastoreConfig) validate() error {
	switch c.Store {
	case DatastoreTypeMemory, DatastoreTypeBadger:
		return nil
	default:
		return NewErrInvalidDatastoreType(c.Store)
	}
}

func (c *APIConfig) validate() error {
	return validateAddress(c.Address)
}

func (c *LoggingConfig) validate() error {
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelError, LogLevelFatal:
	default:
		return NewErrInvalidLogLevel(c.Level)
	}

	switch c.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return NewErrInvalidLogFormat(c.Format)
	}
	return nil
}

// validateAddress accepts "host:port" with an IP or localhost host, or a
// bare domain name. Domains take no port; everything else requires one.
func validateAddress(address string) error {
	if address == "" {
		return NewErrInvalidRPCAddress(address)
	}
	if isDomainName(address) {
		return nil
	}

	host, port, err := net.SplitHostPort(address)
	if err != nil {
		var addrErr *net.AddrError
		if errors.As(err, &addrErr) && strings.Contains(addrErr.Err, "missing port") {
			return NewErrMissingPortNumber(address)
		}
		return NewErrInvalidRPCAddress(address)
	}
	if isDomainName(host) {
		return NewErrNoPortWithDomain(address)
	}
	if _, err := strconv.Atoi(port); err != nil {
		return NewErrInvalidRPCAddress(address)
	}
	return nil
}

func isLowercaseAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

// isDomainName reports whether s looks like a dotted domain name rather
// than an IP or a plain hostname such as "localhost".
func isDomainName(s string) bool {
	if net.ParseIP(s) != nil {
		return false
	}
	labels := strings.Split(s, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !isLowercaseAlpha(label) {
			return false
		}
	}
	return true
}

// GetOrCreateNamedLogger returns the override config for name, creating it
// from the base logging config on first use.
func (c *Config) GetOrCreateNamedLogger(name string) (*NamedLoggingConfig, error) {
	if !isLowercaseAlpha(name) {
		return nil, NewErrInvalidLoggerName(name)
	}
	if c.Log.NamedOverrides == nil {
		c.Log.NamedOverrides = make(map[string]*NamedLoggingConfig)
	}
	if named, ok := c.Log.NamedOverrides[name]; ok {
		return named, nil
	}

	base := c.Log
	base.Logger = ""
	base.NamedOverrides = nil
	named := &NamedLoggingConfig{Name: name, LoggingConfig: base}
	c.Log.NamedOverrides[name] = named
	return named, nil
}

// parseLoggerOverrides resolves Log.Logger strings of the form
// "name,key=value,..." (multiple loggers separated by ';').
func (c *Config) parseLoggerOverrides() error {
	if c.Log.Logger == "" {
		return nil
	}

	seen := make(map[string]bool)
	for _, override := range strings.Split(c.Log.Logger, ";") {
		parts := strings.Split(override, ",")
		name := strings.TrimSpace(parts[0])
		if seen[name] {
			return NewErrDuplicateLoggerName(name)
		}

		named, err := c.GetOrCreateNamedLogger(name)
		if err != nil {
			return err
		}
		seen[name] = true

		for _, kv := range parts[1:] {
			key, value, err := parseKV(kv)
			if err != nil {
				return err
			}
			if err := named.set(key, value); err != nil {
				return err
			}
		}
		if err := named.LoggingConfig.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *NamedLoggingConfig) set(key, value string) error {
	switch key {
	case "level":
		c.Level = value
	case "format":
		c.Format = value
	case "output":
		c.Output = value
	case "stacktrace":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return NewErrCouldNotParseType(err, key)
		}
		c.Stacktrace = b
	case "caller":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return NewErrCouldNotParseType(err, key)
		}
		c.Caller = b
	case "nocolor":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return NewErrCouldNotParseType(err, key)
		}
		c.NoColor = b
	default:
		return NewErrUnknownLoggerParameter(key)
	}
	return nil
}

func parseKV(kv string) (string, string, error) {
	parts := strings.SplitN(kv, "=", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", NewErrNotProvidedAsKV(kv)
	}
	return parts[0], parts[1], nil
}

// resolvePaths expands the root directory and anchors relative datastore
// paths under it.
func (c *Config) resolvePaths() error {
	rootdir, err := expandHomeDir(c.Rootdir)
	if err != nil {
		return err
	}
	c.Rootdir = rootdir

	path, err := expandHomeDir(c.Datastore.Badger.Path)
	if err != nil {
		return err
	}
	if path != "" && !filepath.IsAbs(path) && c.Rootdir != "" {
		path = filepath.Join(c.Rootdir, path)
	}
	c.Datastore.Badger.Path = path
	return nil
}
