// Package config holds the simulator settings. Values come from built-in
// defaults, then an optional INI file, then command line flags.
//
//	[sim]
//	image = tests/loop.bin
//	memory_size = 0x100000
//	regdump = regdump.res
//	non_interactive = false
//
//	[debug]
//	verbose = false
//	breakpoints = 12, 0x40
//	color = auto
//	stats = false
//	show_pc = false
//
//	[log]
//	level = warning
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"rvsim/internal/common"
	"rvsim/internal/memacc"
	"rvsim/internal/printers"
)

// Config is the complete run configuration.
type Config struct {
	ImagePath      string
	MemorySize     int
	RegDumpPath    string
	NonInteractive bool

	Verbose     bool
	Breakpoints []uint32
	Color       printers.ColorMode
	Stats       bool
	ShowPC      bool

	LogLevel common.Severity
}

// Defaults returns the configuration used when nothing is specified.
func Defaults() Config {
	return Config{
		MemorySize:  memacc.DefaultSize,
		RegDumpPath: printers.DefaultRegDumpFile,
		Color:       printers.ColorAuto,
		LogLevel:    common.SeverityWarning,
	}
}

// Load reads the INI file at path over the defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, common.NewErrorMsg(common.ErrSevError, common.ErrConfigParse, err.Error())
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads INI text from r over the defaults.
func Parse(r io.Reader) (Config, error) {
	cfg := Defaults()
	ini, err := ParseIni(r)
	if err != nil {
		return cfg, err
	}
	if err := cfg.apply(ini); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type setter func(cfg *Config, val string) error

// Sections are applied in this order.
var sections = []string{"sim", "debug", "log"}

var keys = map[string]map[string]setter{
	"sim": {
		"image":           func(c *Config, v string) error { c.ImagePath = v; return nil },
		"memory_size":     func(c *Config, v string) error { return c.SetMemorySize(v) },
		"regdump":         func(c *Config, v string) error { c.RegDumpPath = v; return nil },
		"non_interactive": boolSetter(func(c *Config) *bool { return &c.NonInteractive }),
	},
	"debug": {
		"verbose":     boolSetter(func(c *Config) *bool { return &c.Verbose }),
		"breakpoints": func(c *Config, v string) error { return c.SetBreakpoints(v) },
		"color":       func(c *Config, v string) error { return c.SetColor(v) },
		"stats":       boolSetter(func(c *Config) *bool { return &c.Stats }),
		"show_pc":     boolSetter(func(c *Config) *bool { return &c.ShowPC }),
	},
	"log": {
		"level": func(c *Config, v string) error { return c.SetLogLevel(v) },
	},
}

func boolSetter(field func(*Config) *bool) setter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func (c *Config) apply(ini *IniFile) error {
	for key := range ini.GetSection("") {
		return parseError("key %q outside any section", key)
	}
	for section := range ini.Sections {
		if _, ok := keys[section]; !ok && section != "" {
			return parseError("unknown section [%s]", section)
		}
	}

	for _, section := range sections {
		known := keys[section]
		for key, val := range ini.GetSection(section) {
			set, ok := known[key]
			if !ok {
				return parseError("unknown key %q in [%s]", key, section)
			}
			if err := set(c, val); err != nil {
				return parseError("[%s] %s: %v", section, key, err)
			}
		}
	}
	return nil
}

// SetMemorySize parses a decimal or 0x-prefixed byte count.
func (c *Config) SetMemorySize(v string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 0, 64)
	if err != nil {
		return err
	}
	c.MemorySize = int(n)
	return nil
}

// SetBreakpoints parses a comma separated address list, replacing any
// previous list.
func (c *Config) SetBreakpoints(v string) error {
	c.Breakpoints = nil
	for _, field := range strings.Split(v, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		a, err := strconv.ParseUint(field, 0, 32)
		if err != nil {
			return err
		}
		c.Breakpoints = append(c.Breakpoints, uint32(a))
	}
	return nil
}

func (c *Config) SetColor(v string) error {
	m, err := printers.ParseColorMode(v)
	if err != nil {
		return err
	}
	c.Color = m
	return nil
}

func (c *Config) SetLogLevel(v string) error {
	s, err := common.ParseSeverity(v)
	if err != nil {
		return err
	}
	c.LogLevel = s
	return nil
}

// Validate checks values that cannot be rejected while parsing.
func (c Config) Validate() error {
	if c.MemorySize <= 0 || c.MemorySize%4 != 0 {
		return parseError("memory size %d must be a positive multiple of 4", c.MemorySize)
	}
	if c.MemorySize > memacc.MaxSize {
		return parseError("memory size %d exceeds the %d-byte maximum", c.MemorySize, memacc.MaxSize)
	}
	if c.Color < printers.ColorAuto || c.Color > printers.ColorNever {
		return parseError("unknown colour mode %s", c.Color)
	}
	if c.LogLevel < common.SeverityDebug || c.LogLevel > common.SeverityError {
		return parseError("unknown log level %s", c.LogLevel)
	}
	if c.RegDumpPath == "" {
		return parseError("register dump path is empty")
	}
	for _, bp := range c.Breakpoints {
		if int64(bp)+4 > int64(c.MemorySize) {
			return parseError("breakpoint %d outside %d-byte memory", bp, c.MemorySize)
		}
	}
	return nil
}

func parseError(format string, args ...interface{}) error {
	return common.NewErrorMsg(common.ErrSevError, common.ErrConfigParse, fmt.Sprintf(format, args...))
}
