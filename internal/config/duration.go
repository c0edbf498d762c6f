package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Duration is a time.Duration that also understands a leading day
// component, e.g. "7d" or "1d12h".
type Duration struct {
	time.Duration
}

// ParseDuration parses Go duration syntax extended with a "d" unit.
func ParseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}

	var total time.Duration
	if idx := strings.IndexByte(v, 'd'); idx >= 0 {
		days, err := strconv.Atoi(v[:idx])
		if err != nil || days < 0 {
			return 0, fmt.Errorf("invalid days value %q", v[:idx])
		}
		total = time.Duration(days) * day
		v = v[idx+1:]
		if v == "" {
			return total, nil
		}
	}

	rest, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration: %w", err)
	}
	return total + rest, nil
}

// EnvDecode implements envconfig.Decoder
func (d *Duration) EnvDecode(ctx context.Context, v string) error {
	parsed, err := ParseDuration(v)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	return d.EnvDecode(context.Background(), string(text))
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
