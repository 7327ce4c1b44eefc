// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package command

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/luxfi/memo"
)

// Step is one line of a replay script. A step either calls the fetcher with
// Args/Kwargs or performs one of the control actions.
type Step struct {
	Args    []any          `yaml:"args"`
	Kwargs  map[string]any `yaml:"kwargs"`
	Sleep   time.Duration  `yaml:"sleep"`
	Clear   bool           `yaml:"clear"`
	Disable bool           `yaml:"disable"`
	Enable  bool           `yaml:"enable"`
}

// Script is a sequence of steps against one memoized fetcher.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

func (s Step) isCall() bool {
	return s.Sleep == 0 && !s.Clear && !s.Disable && !s.Enable
}

func (s Step) args() memo.Args {
	return memo.Args{Positional: s.Args, Keyword: s.Kwargs}
}

// LoadScript reads a replay script from path.
func LoadScript(path string) (Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to read script: %w", err)
	}

	var s Script
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Script{}, fmt.Errorf("failed to parse script %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = "fetch"
	}
	return s, nil
}
