package config

import (
	"github.com/spf13/pflag"
)

// DecodeConfig holds configuration for the decode command.
type DecodeConfig struct {
	In         string
	Out        string
	Errors     string
	IncludeRaw bool
	LogLevel   string
}

// LoadDecode merges config file, environment variables, and flags into DecodeConfig.
func LoadDecode(cfgFile string, flags *pflag.FlagSet) (DecodeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"out":         "./data/typed_events.jsonl",
		"errors":      "./data/decode_errors.jsonl",
		"include-raw": false,
		"log-level":   "info",
	})
	if err != nil {
		return DecodeConfig{}, err
	}

	cfg := DecodeConfig{
		In:         v.GetString("in"),
		Out:        v.GetString("out"),
		Errors:     v.GetString("errors"),
		IncludeRaw: v.GetBool("include-raw"),
		LogLevel:   v.GetString("log-level"),
	}

	return cfg, nil
}
