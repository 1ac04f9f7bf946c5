package config

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ByteSize is a size in bytes that parses from human-readable strings such
// as "64MB" or "1GiB". All unit suffixes are power-of-1024 multipliers
// ("MB" and "MiB" both mean 1024*1024); an unrecognized suffix treats the
// numeric part as raw bytes.
type ByteSize uint64

const (
	B   ByteSize = 1
	KiB          = B << 10
	MiB          = KiB << 10
	GiB          = MiB << 10
	TiB          = GiB << 10
	PiB          = TiB << 10
)

// Set parses s into b.
func (b *ByteSize) Set(s string) error {
	var digits, unit strings.Builder
	for _, c := range s {
		if unicode.IsDigit(c) {
			digits.WriteRune(c)
		} else {
			unit.WriteRune(c)
		}
	}

	n, err := strconv.ParseUint(digits.String(), 10, 64)
	if err != nil {
		return NewErrUnableToParseByteSize(err)
	}

	switch strings.ToUpper(strings.TrimSpace(unit.String())) {
	case "B":
		*b = ByteSize(n) * B
	case "KB", "KIB":
		*b = ByteSize(n) * KiB
	case "MB", "MIB":
		*b = ByteSize(n) * MiB
	case "GB", "GIB":
		*b = ByteSize(n) * GiB
	case "TB", "TIB":
		*b = ByteSize(n) * TiB
	case "PB", "PIB":
		*b = ByteSize(n) * PiB
	default:
		*b = ByteSize(n)
	}
	return nil
}

// String renders b with the largest unit that divides it down to a value
// below 1024.
func (b ByteSize) String() string {
	if b < KiB {
		return fmt.Sprintf("%dB", uint64(b))
	}

	div, exp := uint64(KiB), 0
	for n := uint64(b) / 1024; n >= 1024; n /= 1024 {
		div *= 1024
		exp++
	}
	return fmt.Sprintf("%d%ciB", uint64(b)/div, "KMGTP"[exp])
}

func (b *ByteSize) UnmarshalText(text []byte) error {
	return b.Set(string(text))
}

func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
