package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

const (
	DefaultConfigFileName = "config.yaml"
	DefaultRootDirName    = ".loom"

	defaultDirPerm        = 0o700
	defaultConfigFilePerm = 0o644
)

const defaultConfigTemplate = `# Loom configuration (YAML).
# Environment variables with the LOOM_ prefix override these values.

datastore:
  store: {{ .Datastore.Store }}
  maxtxnretries: {{ .Datastore.MaxTxnRetries }}
  memory:
    size: {{ .Datastore.Memory.Size }}
  badger:
    path: {{ .Datastore.Badger.Path }}
    valuelogfilesize: {{ .Datastore.Badger.ValueLogFileSize }}

api:
  address: {{ .API.Address }}
  tls: {{ .API.TLS }}
  email: {{ .API.Email }}

net:
  p2paddress: {{ .Net.P2PAddress }}
  p2pdisabled: {{ .Net.P2PDisabled }}
  pubsubenabled: {{ .Net.PubSubEnabled }}
  relayenabled: {{ .Net.RelayEnabled }}

log:
  level: {{ .Log.Level }}
  format: {{ .Log.Format }}
  output: {{ .Log.Output }}
  stacktrace: {{ .Log.Stacktrace }}
  caller: {{ .Log.Caller }}
  nocolor: {{ .Log.NoColor }}
`

// DefaultRootDir returns ~/.loom.
func DefaultRootDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", NewErrUnableToExpandHomeDir(err)
	}
	return filepath.Join(home, DefaultRootDirName), nil
}

func (c *Config) ConfigFilePath() string {
	return filepath.Join(c.Rootdir, DefaultConfigFileName)
}

func (c *Config) ConfigFileExists() bool {
	info, err := os.Stat(c.ConfigFilePath())
	return err == nil && !info.IsDir()
}

// WriteConfigFile renders the config file template with c's values and
// writes it into the root directory.
func (c *Config) WriteConfigFile() error {
	tmpl, err := template.New(DefaultConfigFileName).Parse(defaultConfigTemplate)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, c); err != nil {
		return err
	}

	path := c.ConfigFilePath()
	if err := os.WriteFile(path, buf.Bytes(), defaultConfigFilePerm); err != nil {
		return NewErrFailedToWriteFile(err, path)
	}
	return nil
}

func (c *Config) DeleteConfigFile() error {
	if err := os.Remove(c.ConfigFilePath()); err != nil {
		return NewErrFailedToRemoveConfigFile(err)
	}
	return nil
}

// CreateRootDirAndConfigFile creates the root directory if needed and
// writes the config file into it.
func (c *Config) CreateRootDirAndConfigFile() error {
	if err := os.MkdirAll(c.Rootdir, defaultDirPerm); err != nil {
		return NewErrFailedToWriteFile(err, c.Rootdir)
	}
	return c.WriteConfigFile()
}

// expandHomeDir replaces a leading "~/" with the user's home directory. A
// bare "~" is rejected: the database never takes over the home directory
// itself.
func expandHomeDir(path string) (string, error) {
	if path == "~" {
		return "", ErrPathCannotBeHomeDir
	}
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", NewErrUnableToExpandHomeDir(err)
	}
	return filepath.Join(home, path[2:]), nil
}
