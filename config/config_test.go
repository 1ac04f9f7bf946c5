package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateStoreType(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Datastore.Store = DatastoreTypeMemory
	require.NoError(t, cfg.Validate())

	cfg.Datastore.Store = "leveldb"
	require.ErrorIs(t, cfg.Validate(), ErrInvalidDatastoreType)
}

func TestValidateLogging(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Log.Level = "verbose"
	require.ErrorIs(t, cfg.Validate(), ErrInvalidLogLevel)

	cfg.Log.Level = LogLevelDebug
	cfg.Log.Format = "xml"
	require.ErrorIs(t, cfg.Validate(), ErrInvalidLogFormat)
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		address string
		wantErr error
	}{
		{"localhost:9181", nil},
		{"127.0.0.1:9181", nil},
		{"0.0.0.0:9181", nil},
		{"example.com", nil},
		{"api.example.com", nil},
		{"example.com:8080", ErrNoPortWithDomain},
		{"127.0.0.1", ErrMissingPortNumber},
		{"localhost", ErrMissingPortNumber},
		{"localhost:http", ErrInvalidRPCAddress},
		{"", ErrInvalidRPCAddress},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			err := validateAddress(tt.address)
			if tt.wantErr == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestGetOrCreateNamedLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = LogLevelError

	named, err := cfg.GetOrCreateNamedLogger("store")
	require.NoError(t, err)
	require.Equal(t, "store", named.Name)
	require.Equal(t, LogLevelError, named.Level)

	// created once, returned thereafter
	named.Level = LogLevelDebug
	again, err := cfg.GetOrCreateNamedLogger("store")
	require.NoError(t, err)
	require.Same(t, named, again)

	_, err = cfg.GetOrCreateNamedLogger("Store")
	require.ErrorIs(t, err, ErrInvalidLoggerName)
	_, err = cfg.GetOrCreateNamedLogger("")
	require.ErrorIs(t, err, ErrInvalidLoggerName)
}

func TestLoggerOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Logger = "net,level=debug,format=json;store,level=error,caller=true"
	require.NoError(t, cfg.Validate())

	net := cfg.Log.NamedOverrides["net"]
	require.NotNil(t, net)
	require.Equal(t, LogLevelDebug, net.Level)
	require.Equal(t, LogFormatJSON, net.Format)

	store := cfg.Log.NamedOverrides["store"]
	require.NotNil(t, store)
	require.Equal(t, LogLevelError, store.Level)
	require.True(t, store.Caller)
	// untouched fields inherit the base config
	require.Equal(t, cfg.Log.Format, store.Format)
}

func TestLoggerOverrideErrors(t *testing.T) {
	tests := []struct {
		logger  string
		wantErr error
	}{
		{"net,level=debug;net,level=error", ErrDuplicateLoggerName},
		{"net,level", ErrNotProvidedAsKV},
		{"net,=debug", ErrNotProvidedAsKV},
		{"net,pitch=high", ErrUnknownLoggerParameter},
		{"net,caller=maybe", ErrCouldNotParseType},
		{"Net,level=debug", ErrInvalidLoggerName},
		{"net,level=verbose", ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.logger, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Log.Logger = tt.logger
			require.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestLoadDefaultsWhenNoConfigFile(t *testing.T) {
	rootdir := t.TempDir()

	cfg, err := Load(rootdir)
	require.NoError(t, err)
	require.Equal(t, DatastoreTypeBadger, cfg.Datastore.Store)
	require.Equal(t, 5, cfg.Datastore.MaxTxnRetries)
	require.Equal(t, rootdir, cfg.Rootdir)
	// relative datastore paths are anchored under the root directory
	require.Equal(t, filepath.Join(rootdir, "data"), cfg.Datastore.Badger.Path)
}

func TestLoadReadsConfigFile(t *testing.T) {
	rootdir := t.TempDir()
	content := `datastore:
  store: memory
  maxtxnretries: 9
  badger:
    valuelogfilesize: 64MB
log:
  level: debug
`
	path := filepath.Join(rootdir, DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(rootdir)
	require.NoError(t, err)
	require.Equal(t, DatastoreTypeMemory, cfg.Datastore.Store)
	require.Equal(t, 9, cfg.Datastore.MaxTxnRetries)
	require.Equal(t, 64*MiB, cfg.Datastore.Badger.ValueLogFileSize)
	require.Equal(t, LogLevelDebug, cfg.Log.Level)
	// unset fields keep their defaults
	require.Equal(t, "localhost:9181", cfg.API.Address)
}

func TestLoadEnvOverridesWithoutConfigFile(t *testing.T) {
	t.Setenv("LOOM_DATASTORE_STORE", "memory")
	t.Setenv("LOOM_DATASTORE_MAXTXNRETRIES", "9")
	t.Setenv("LOOM_DATASTORE_BADGER_VALUELOGFILESIZE", "64MB")
	t.Setenv("LOOM_LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, DatastoreTypeMemory, cfg.Datastore.Store)
	require.Equal(t, 9, cfg.Datastore.MaxTxnRetries)
	require.Equal(t, 64*MiB, cfg.Datastore.Badger.ValueLogFileSize)
	require.Equal(t, LogLevelDebug, cfg.Log.Level)
	// untouched keys keep their defaults
	require.Equal(t, "localhost:9181", cfg.API.Address)
}

func TestLoadEnvOverridesConfigFile(t *testing.T) {
	rootdir := t.TempDir()
	content := `datastore:
  store: badger
  maxtxnretries: 3
`
	path := filepath.Join(rootdir, DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("LOOM_DATASTORE_STORE", "memory")

	cfg, err := Load(rootdir)
	require.NoError(t, err)
	// environment wins over the config file
	require.Equal(t, DatastoreTypeMemory, cfg.Datastore.Store)
	// file values without an env override still apply
	require.Equal(t, 3, cfg.Datastore.MaxTxnRetries)
}

func TestLoadRejectsInvalidConfigFile(t *testing.T) {
	rootdir := t.TempDir()
	content := `datastore:
  store: leveldb
`
	path := filepath.Join(rootdir, DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(rootdir)
	require.ErrorIs(t, err, ErrInvalidDatastoreType)
}

func TestLoadRejectsHomeDirAsRoot(t *testing.T) {
	_, err := Load("~")
	require.ErrorIs(t, err, ErrPathCannotBeHomeDir)
}

func TestWriteAndDeleteConfigFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rootdir = t.TempDir()

	require.False(t, cfg.ConfigFileExists())
	require.NoError(t, cfg.WriteConfigFile())
	require.True(t, cfg.ConfigFileExists())

	// the written file loads back to an equivalent config
	loaded, err := Load(cfg.Rootdir)
	require.NoError(t, err)
	require.Equal(t, cfg.Datastore.Store, loaded.Datastore.Store)
	require.Equal(t, cfg.Datastore.MaxTxnRetries, loaded.Datastore.MaxTxnRetries)
	require.Equal(t, cfg.Datastore.Badger.ValueLogFileSize, loaded.Datastore.Badger.ValueLogFileSize)
	require.Equal(t, cfg.Log.Level, loaded.Log.Level)

	require.NoError(t, cfg.DeleteConfigFile())
	require.False(t, cfg.ConfigFileExists())
}

func TestCreateRootDirAndConfigFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rootdir = filepath.Join(t.TempDir(), "nested", "root")

	require.NoError(t, cfg.CreateRootDirAndConfigFile())
	require.True(t, cfg.ConfigFileExists())
}

func TestExpandHomeDir(t *testing.T) {
	_, err := expandHomeDir("~")
	require.ErrorIs(t, err, ErrPathCannotBeHomeDir)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := expandHomeDir("~/data")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "data"), expanded)

	plain, err := expandHomeDir("/var/lib/loom")
	require.NoError(t, err)
	require.Equal(t, "/var/lib/loom", plain)
}
