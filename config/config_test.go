// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/memo"
)

func testdata(t *testing.T, name string) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)
	return p
}

func loader(context.Context, memo.Args) (int, error) { return 1, nil }

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		env       string
		wantErr   bool
		checkFunc func(*testing.T, Config)
	}{
		{
			name: "simple",
			file: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Config) {
				assert.True(t, cfg.Enabled)
				assert.Equal(t, 100, *cfg.Defaults.MaxSize)
				assert.Equal(t, 60, *cfg.Defaults.Expire)
				assert.Equal(t, 10, *cfg.Functions["get_project"].MaxSize)
				assert.False(t, *cfg.Functions["all_shots"].Enabled)
				assert.Contains(t, cfg.Source, "simple.yaml")
			},
		},
		{
			name: "env disables",
			file: "simple.yaml",
			env:  "false",
			checkFunc: func(t *testing.T, cfg Config) {
				assert.False(t, cfg.Enabled)
			},
		},
		{
			name:    "negative expire",
			file:    "negative.yaml",
			wantErr: true,
		},
		{
			name:    "broken yaml",
			file:    "broken.yaml",
			wantErr: true,
		},
		{
			name:    "missing file",
			file:    "missing.yaml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MEMO_CACHE", tt.env)
			cfg, err := Load(testdata(t, tt.file))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MEMO_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", dir)

	_, err := Path()
	assert.ErrorIs(t, err, ErrNotFound)

	file := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(file, []byte("enabled: true\n"), 0o600))
	p, err := Path()
	require.NoError(t, err)
	assert.Equal(t, file, p)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)

	t.Setenv("MEMO_CONFIG", "/elsewhere/memo.yaml")
	p, err = Path()
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/memo.yaml", p)
}

func TestDefault(t *testing.T) {
	t.Setenv("MEMO_CACHE", "")
	assert.True(t, Default().Enabled)

	t.Setenv("MEMO_CACHE", "0")
	assert.False(t, Default().Enabled)
}

func TestOptions(t *testing.T) {
	require := require.New(t)
	t.Setenv("MEMO_CACHE", "")

	cfg, err := Load(testdata(t, "simple.yaml"))
	require.NoError(err)

	m := memo.NewManager()
	project := memo.MustWrap(m, "get_project", loader, cfg.Options("get_project")...)
	shots := memo.MustWrap(m, "all_shots", loader, cfg.Options("all_shots")...)
	other := memo.MustWrap(m, "other", loader, cfg.Options("other")...)

	info := project.Info()
	require.Equal(10, info.MaxSize)
	require.Equal(time.Minute, info.Expire)
	require.True(info.Enabled)

	info = shots.Info()
	require.Equal(100, info.MaxSize)
	require.Zero(info.Expire)
	require.False(info.Enabled)

	info = other.Info()
	require.Equal(100, info.MaxSize)
	require.Equal(time.Minute, info.Expire)
}

func TestApply(t *testing.T) {
	require := require.New(t)
	t.Setenv("MEMO_CACHE", "")

	cfg, err := Load(testdata(t, "simple.yaml"))
	require.NoError(err)

	m := memo.NewManager()
	project := memo.MustWrap(m, "get_project", loader)
	shots := memo.MustWrap(m, "all_shots", loader)

	cfg.Apply(m)
	require.True(m.Enabled())

	info := project.Info()
	require.Equal(10, info.MaxSize)
	require.Equal(time.Minute, info.Expire)
	require.True(info.Enabled)

	info = shots.Info()
	require.Equal(100, info.MaxSize)
	require.Zero(info.Expire)
	require.False(info.Enabled)

	Config{}.Apply(m)
	require.False(m.Enabled())
	require.Equal(10, project.Info().MaxSize, "empty config keeps settings")
}

func TestApplyWarnsOnManagerLogger(t *testing.T) {
	require := require.New(t)

	handler := memory.New()
	m := memo.NewManager(memo.WithLogger(&log.Logger{Handler: handler, Level: log.DebugLevel}))
	memo.MustWrap(m, "get_project", loader)

	enabled := true
	cfg := Config{Functions: map[string]Policy{
		"get_project": {Enabled: &enabled},
		"get_shot":    {Enabled: &enabled},
	}}
	cfg.Apply(m)

	var warnings []*log.Entry
	for _, e := range handler.Entries {
		if e.Level == log.WarnLevel {
			warnings = append(warnings, e)
		}
	}
	require.Len(warnings, 1)
	require.Equal("config names an unknown function", warnings[0].Message)
	require.Equal("get_shot", warnings[0].Fields["func"])
}
