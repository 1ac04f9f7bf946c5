package config

import (
	"errors"
	"fmt"
)

var ErrInvalidDatastoreType = errors.New("invalid store type")

var ErrInvalidDatastorePath = errors.New("invalid datastore path")

var ErrInvalidLogLevel = errors.New("invalid log level")

var ErrInvalidLogFormat = errors.New("invalid log format")

var ErrInvalidRPCAddress = errors.New("invalid RPC address")

var ErrMissingPortNumber = errors.New("missing port number")

var ErrNoPortWithDomain = errors.New("cannot provide port with domain name")

var ErrInvalidLoggerName = errors.New("invalid logger name")

var ErrDuplicateLoggerName = errors.New("duplicate logger name")

var ErrNotProvidedAsKV = errors.New("logging config parameter was not provided as <key>=<value> pair")

var ErrUnknownLoggerParameter = errors.New("unknown logger parameter")

var ErrCouldNotParseType = errors.New("could not parse type")

var ErrUnableToParseByteSize = errors.New("unable to parse byte size")

var ErrPathCannotBeHomeDir = errors.New("path cannot be just ~ (home directory)")

var ErrUnableToExpandHomeDir = errors.New("unable to expand home directory")

var ErrReadingConfigFile = errors.New("failed to read config")

var ErrLoadingConfig = errors.New("failed to load config")

var ErrFailedToWriteFile = errors.New("failed to write file")

var ErrFailedToRemoveConfigFile = errors.New("failed to remove config file")

func NewErrInvalidDatastoreType(storeType string) error {
	return fmt.Errorf("%w: %s", ErrInvalidDatastoreType, storeType)
}

func NewErrInvalidLogLevel(level string) error {
	return fmt.Errorf("%w: %s", ErrInvalidLogLevel, level)
}

func NewErrInvalidLogFormat(format string) error {
	return fmt.Errorf("%w: %s", ErrInvalidLogFormat, format)
}

func NewErrInvalidRPCAddress(address string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRPCAddress, address)
}

func NewErrMissingPortNumber(address string) error {
	return fmt.Errorf("%w: %s", ErrMissingPortNumber, address)
}

func NewErrNoPortWithDomain(address string) error {
	return fmt.Errorf("%w: %s", ErrNoPortWithDomain, address)
}

func NewErrInvalidLoggerName(name string) error {
	return fmt.Errorf("%w: %s", ErrInvalidLoggerName, name)
}

func NewErrDuplicateLoggerName(name string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateLoggerName, name)
}

func NewErrNotProvidedAsKV(kv string) error {
	return fmt.Errorf("%w: %s", ErrNotProvidedAsKV, kv)
}

func NewErrUnknownLoggerParameter(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownLoggerParameter, name)
}

func NewErrCouldNotParseType(inner error, name string) error {
	return fmt.Errorf("%w: %s: %w", ErrCouldNotParseType, name, inner)
}

func NewErrUnableToParseByteSize(inner error) error {
	return fmt.Errorf("%w: %w", ErrUnableToParseByteSize, inner)
}

func NewErrUnableToExpandHomeDir(inner error) error {
	return fmt.Errorf("%w: %w", ErrUnableToExpandHomeDir, inner)
}

func NewErrReadingConfigFile(inner error) error {
	return fmt.Errorf("%w: %w", ErrReadingConfigFile, inner)
}

func NewErrLoadingConfig(inner error) error {
	return fmt.Errorf("%w: %w", ErrLoadingConfig, inner)
}

func NewErrFailedToWriteFile(inner error, path string) error {
	return fmt.Errorf("%w: %s: %w", ErrFailedToWriteFile, path, inner)
}

func NewErrFailedToRemoveConfigFile(inner error) error {
	return fmt.Errorf("%w: %w", ErrFailedToRemoveConfigFile, inner)
}
