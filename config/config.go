/*
Package config holds the configuration of xterex. Configuration is read from
a TOML file; every key is optional and falls back to its default.

	[trace]
	level = "Info"

	[console]
	prompt = "trx> "
	history_file = "~/.xterex_history"
	init_file = ""
	color = true

	[wire]
	codec = "json"

	[mcp]
	name = "xterex"

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/npillmayer/schuko/tracing"
)

// Codecs of the wire host.
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Trace configures tracing.
type Trace struct {
	Level string `toml:"level"`
}

// Console configures the interactive terminal host.
type Console struct {
	Prompt      string `toml:"prompt"`
	HistoryFile string `toml:"history_file"`
	InitFile    string `toml:"init_file"`
	Color       bool   `toml:"color"`
}

// Wire configures the stream host.
type Wire struct {
	Codec string `toml:"codec"`
}

// MCP configures the Model Context Protocol host.
type MCP struct {
	Name string `toml:"name"`
}

// Config is the configuration of xterex.
type Config struct {
	Trace   Trace   `toml:"trace"`
	Console Console `toml:"console"`
	Wire    Wire    `toml:"wire"`
	MCP     MCP     `toml:"mcp"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Trace: Trace{Level: "Error"},
		Console: Console{
			Prompt:      "trx> ",
			HistoryFile: "~/.xterex_history",
			Color:       true,
		},
		Wire: Wire{Codec: CodecJSON},
		MCP:  MCP{Name: "xterex"},
	}
}

// Load reads a configuration file. Keys missing from the file keep their
// defaults. A file which does not exist is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return nil, fmt.Errorf("cannot read configuration %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown configuration keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks a configuration for illegal values.
func (c *Config) Validate() error {
	switch c.Wire.Codec {
	case CodecJSON, CodecMsgpack:
	default:
		return fmt.Errorf("unknown wire codec %q", c.Wire.Codec)
	}
	if _, err := c.TraceLevel(); err != nil {
		return err
	}
	return nil
}

// TraceLevel returns the configured trace level.
func (c *Config) TraceLevel() (tracing.TraceLevel, error) {
	switch strings.ToLower(c.Trace.Level) {
	case "debug", "info", "error":
		return tracing.TraceLevelFromString(c.Trace.Level), nil
	}
	return tracing.LevelError, fmt.Errorf("unknown trace level %q", c.Trace.Level)
}

// ExpandPath replaces a leading '~' with the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
