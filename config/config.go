// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads cache policy from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/luxfi/memo"
)

// FileName is the config file looked up in the standard locations.
const FileName = "memo.yaml"

var ErrNotFound = errors.New("no config file found in standard locations")

// Policy is a partial set of function settings. Nil fields keep the current
// or default value. Expire is in seconds, 0 for never.
type Policy struct {
	Enabled *bool `yaml:"enabled,omitempty"`
	MaxSize *int  `yaml:"maxsize,omitempty"`
	Expire  *int  `yaml:"expire,omitempty"`
}

// Config is the on-disk cache configuration.
type Config struct {
	Source    string            `yaml:"-"`
	Enabled   bool              `yaml:"enabled"`
	Defaults  Policy            `yaml:"defaults"`
	Functions map[string]Policy `yaml:"functions"`
}

// Default is the configuration used when no file exists.
func Default() Config {
	return Config{Enabled: envEnabled()}
}

// Load reads path, or the file found by Path when path is empty.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Source = path
	cfg.Enabled = cfg.Enabled && envEnabled()

	return cfg, cfg.validate()
}

// Path resolves the config file.
// Precedence:
//  1. MEMO_CONFIG, if set and non-empty
//  2. $XDG_CONFIG_HOME/memo.yaml
//  3. $HOME/memo.yaml
func Path() (string, error) {
	if p := os.Getenv("MEMO_CONFIG"); p != "" {
		return p, nil
	}

	for _, dir := range []string{os.Getenv("XDG_CONFIG_HOME"), os.Getenv("HOME")} {
		if dir == "" {
			continue
		}
		file := filepath.Join(dir, FileName)
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			return file, nil
		}
	}
	return "", ErrNotFound
}

// envEnabled is false when MEMO_CACHE explicitly disables caching ("0"/"false").
func envEnabled() bool {
	v := os.Getenv("MEMO_CACHE")
	return v != "0" && v != "false"
}

func (c Config) validate() error {
	check := func(name string, p Policy) error {
		if p.Expire != nil && *p.Expire < 0 {
			return fmt.Errorf("%s: expire must not be negative, got %d", name, *p.Expire)
		}
		return nil
	}
	if err := check("defaults", c.Defaults); err != nil {
		return err
	}
	for name, p := range c.Functions {
		if err := check("functions."+name, p); err != nil {
			return err
		}
	}
	return nil
}

// Policy returns the merged settings for the named function.
func (c Config) Policy(name string) Policy {
	p := c.Defaults
	if fp, ok := c.Functions[name]; ok {
		if fp.Enabled != nil {
			p.Enabled = fp.Enabled
		}
		if fp.MaxSize != nil {
			p.MaxSize = fp.MaxSize
		}
		if fp.Expire != nil {
			p.Expire = fp.Expire
		}
	}
	return p
}

// Options returns wrap options for a function about to be registered.
func (c Config) Options(name string) []memo.Option {
	p := c.Policy(name)

	var opts []memo.Option
	if p.MaxSize != nil {
		opts = append(opts, memo.WithMaxSize(*p.MaxSize))
	}
	if p.Expire != nil {
		opts = append(opts, memo.WithExpire(seconds(*p.Expire)))
	}
	if p.Enabled != nil && !*p.Enabled {
		opts = append(opts, memo.WithDisabled())
	}
	return opts
}

// Apply sets the global switch of m and pushes overrides onto the functions
// already registered with it. Defaults are applied to every function.
func (c Config) Apply(m *memo.Manager) {
	if c.Enabled {
		m.Enable()
	} else {
		m.Disable()
	}

	for name := range c.Functions {
		if _, ok := m.Lookup(name); !ok {
			m.Logger().WithField("func", name).Warn("config names an unknown function")
		}
	}

	for _, f := range m.Funcs() {
		p := c.Policy(f.Name())
		if p.MaxSize != nil {
			f.SetMaxSize(*p.MaxSize)
		}
		if p.Expire != nil {
			f.SetExpire(seconds(*p.Expire))
		}
		if p.Enabled != nil {
			if *p.Enabled {
				f.Enable()
			} else {
				f.Disable()
			}
		}
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
