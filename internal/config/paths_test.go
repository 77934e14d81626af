// SPDX-FileCopyrightText: 2025 The Karei Authors
// SPDX-License-Identifier: EUPL-1.2

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestXDGHomes(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name    string
		resolve func(string) string
		env     string
		want    string
	}{
		{name: "config override", resolve: GetXDGConfigHomeWithEnv, env: "/custom/config", want: "/custom/config"},
		{name: "config fallback", resolve: GetXDGConfigHomeWithEnv, want: filepath.Join(home, ".config")},
		{name: "state override", resolve: GetXDGStateHomeWithEnv, env: "/custom/state", want: "/custom/state"},
		{name: "state fallback", resolve: GetXDGStateHomeWithEnv, want: filepath.Join(home, ".local", "state")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, tt.resolve(tt.env))
		})
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_STATE_HOME", "/state")

	require.Equal(t, "/cfg/debwiz/config.toml", DefaultConfigPath())
	require.Equal(t, "/state/debwiz/debwiz.log", DefaultLogPath())
}

func TestExpandPathWithEnv(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "expands tilde to home",
			path: "~/test",
			want: filepath.Join(home, "test"),
		},
		{
			name: "handles plain tilde",
			path: "~",
			want: home,
		},
		{
			name: "expands XDG_CONFIG_HOME",
			path: "$XDG_CONFIG_HOME/debwiz/config.toml",
			want: "/cfg/debwiz/config.toml",
		},
		{
			name: "expands XDG_STATE_HOME",
			path: "$XDG_STATE_HOME/debwiz/debwiz.log",
			want: "/state/debwiz/debwiz.log",
		},
		{
			name: "leaves absolute paths unchanged",
			path: "/absolute/path",
			want: "/absolute/path",
		},
		{
			name: "leaves relative paths unchanged",
			path: "relative/path",
			want: "relative/path",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := ExpandPathWithEnv(testCase.path, "/cfg", "/state")
			require.Equal(t, testCase.want, got)
		})
	}
}
