// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/locate"
	"github.com/walteh/patchrc/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// 🧪 TestLoad tests loading and validating YAML definitions
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults_filled",
			config: `
patches:
  - file: main.go
    replace: "x := 2"
    strategies:
      - literal: "x := 1"
`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Patches, 1)
				p := cfg.Patches[0]
				assert.Equal(t, "patch-1", p.Name, "name should default to position")
				assert.Equal(t, "utf-8", p.Encoding, "encoding should default to utf-8")
				assert.Equal(t, "exact", p.Compare, "compare should default to exact")
				assert.Equal(t, "replace", p.Mode, "mode should default to replace")
				assert.False(t, cfg.Async, "async should be false")
			},
		},
		{
			name: "top_level_defaults_inherited",
			config: `
encoding: windows-1252
compare: whitespace
async: true
patches:
  - name: first
    file: a.txt
    replace: "b"
    strategies:
      - literal: "a"
  - name: second
    file: b.txt
    encoding: utf-8
    replace: "d"
    strategies:
      - literal: "c"
`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Patches, 2)
				assert.Equal(t, "windows-1252", cfg.Patches[0].Encoding)
				assert.Equal(t, "whitespace", cfg.Patches[0].Compare)
				assert.Equal(t, "utf-8", cfg.Patches[1].Encoding, "patch level encoding wins")
				assert.True(t, cfg.Async)
			},
		},
		{
			name: "full_strategy_chain",
			config: `
patches:
  - name: bump
    file: "src/**/*.go"
    mode: insert_after
    replace: "\n// patched"
    strategies:
      - literal: "func main() {"
      - regex: "func\\s+main\\(\\)"
        flags: m
      - anchor:
          start: "func main"
          end: "{"
          within: "main"
`,
			check: func(t *testing.T, cfg *Config) {
				p := cfg.Patches[0]
				require.Len(t, p.Strategies, 3)
				specs, err := p.Specs()
				require.NoError(t, err)
				assert.Equal(t, locate.KindLiteral, specs[0].Kind)
				assert.Equal(t, locate.KindRegex, specs[1].Kind)
				assert.Equal(t, "m", specs[1].Flags)
				assert.Equal(t, locate.KindAnchor, specs[2].Kind)
				assert.Equal(t, "main", specs[2].Anchor.Within)
				assert.Equal(t, patch.ModeInsertAfter, p.Template().Mode)
			},
		},
		{
			name: "empty_replace_deletes",
			config: `
patches:
  - file: a.txt
    replace: ""
    strategies:
      - literal: "remove me"
`,
			check: func(t *testing.T, cfg *Config) {
				require.NotNil(t, cfg.Patches[0].Replace)
				assert.Equal(t, "", cfg.Patches[0].Template().Content)
			},
		},
		{
			name:        "no_patches",
			config:      "patches: []\n",
			wantErr:     true,
			errContains: "at least one patch is required",
		},
		{
			name: "missing_replace",
			config: `
patches:
  - file: a.txt
    strategies:
      - literal: "a"
`,
			wantErr:     true,
			errContains: "replace or replace_file is required",
		},
		{
			name: "no_strategies",
			config: `
patches:
  - file: a.txt
    replace: "b"
`,
			wantErr:     true,
			errContains: "at least one strategy is required",
		},
		{
			name: "two_kinds_in_one_strategy",
			config: `
patches:
  - file: a.txt
    replace: "b"
    strategies:
      - literal: "a"
        regex: "a+"
`,
			wantErr:     true,
			errContains: "exactly one of literal, regex or anchor is required",
		},
		{
			name: "flags_without_regex",
			config: `
patches:
  - file: a.txt
    replace: "b"
    strategies:
      - literal: "a"
        flags: i
`,
			wantErr:     true,
			errContains: "flags are only valid with regex",
		},
		{
			name: "unknown_mode",
			config: `
patches:
  - file: a.txt
    mode: append
    replace: "b"
    strategies:
      - literal: "a"
`,
			wantErr:     true,
			errContains: "unknown mode",
		},
		{
			name: "unknown_compare",
			config: `
patches:
  - file: a.txt
    compare: fuzzy
    replace: "b"
    strategies:
      - literal: "a"
`,
			wantErr:     true,
			errContains: "unknown compare",
		},
		{
			name: "unknown_encoding",
			config: `
patches:
  - file: a.txt
    encoding: klingon
    replace: "b"
    strategies:
      - literal: "a"
`,
			wantErr:     true,
			errContains: "unknown encoding",
		},
		{
			name: "duplicate_names",
			config: `
patches:
  - name: same
    file: a.txt
    replace: "b"
    strategies:
      - literal: "a"
  - name: same
    file: b.txt
    replace: "b"
    strategies:
      - literal: "a"
`,
			wantErr:     true,
			errContains: "duplicate name",
		},
		{
			name: "insert_needs_content",
			config: `
patches:
  - file: a.txt
    mode: insert_before
    replace: ""
    strategies:
      - literal: "a"
`,
			wantErr:     true,
			errContains: "needs non-empty content",
		},
		{
			name: "unknown_field",
			config: `
patches:
  - file: a.txt
    replace: "b"
    fuzzy: true
    strategies:
      - literal: "a"
`,
			wantErr:     true,
			errContains: "parsing YAML",
		},
	}

	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "patches.yaml")
			err := os.WriteFile(configPath, []byte(tt.config), 0644)
			require.NoError(t, err, "writing config file should succeed")

			cfg, err := Load(ctx, configPath, nil)
			if tt.wantErr {
				require.Error(t, err, "Load should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "Load should succeed")
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

// 🧪 TestLoadMalformedRegex tests that a bad locator surfaces as a spec error
func TestLoadMalformedRegex(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "patches.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
patches:
  - name: broken
    file: a.txt
    replace: "b"
    strategies:
      - literal: "a"
      - regex: "a("
`), 0644))

	_, err := Load(context.Background(), configPath, nil)
	require.Error(t, err)

	var serr *locate.SpecError
	require.True(t, errors.As(err, &serr), "error should unwrap to a spec error")
	assert.Contains(t, err.Error(), "strategy 1")
	assert.Contains(t, err.Error(), `patch "broken"`)
}

// 🧪 TestLoadReplaceFile tests replace_file resolution relative to the definition
func TestLoadReplaceFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "snippets"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "snippets", "block.txt"), []byte("func patched() {}\n"), 0644))

	t.Run("relative_to_definition", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "patches.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte(`
patches:
  - file: main.go
    replace_file: snippets/block.txt
    strategies:
      - literal: "func original() {}\n"
`), 0644))

		cfg, err := Load(context.Background(), configPath, nil)
		require.NoError(t, err)
		assert.Equal(t, "func patched() {}\n", cfg.Patches[0].Template().Content)
		assert.Equal(t, filepath.Join(tmpDir, "snippets", "block.txt"), cfg.Patches[0].ReplaceFile)
	})

	t.Run("missing_file", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "missing.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte(`
patches:
  - file: main.go
    replace_file: snippets/nope.txt
    strategies:
      - literal: "a"
`), 0644))

		_, err := Load(context.Background(), configPath, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("both_replace_and_replace_file", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "both.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte(`
patches:
  - file: main.go
    replace: "x"
    replace_file: snippets/block.txt
    strategies:
      - literal: "a"
`), 0644))

		_, err := Load(context.Background(), configPath, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})
}

// 🧪 TestValidateInMemory tests Validate on configs built without Load
func TestValidateInMemory(t *testing.T) {
	replace := "new"
	cfg := &Config{
		Patches: []Patch{{
			File:        "a.txt",
			Replace:     &replace,
			ReplaceFile: "b.txt",
			Strategies:  []Strategy{{Literal: "old"}},
		}},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")

	cfg.Patches[0].ReplaceFile = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "1 patches [patch-1]", cfg.String())
}

// 🧪 TestPatchTransaction tests conversion into a transaction patch
func TestPatchTransaction(t *testing.T) {
	replace := "x := 2"
	p := Patch{
		Name:     "bump",
		Encoding: "windows-1252",
		Compare:  "whitespace",
		Mode:     "replace",
		Replace:  &replace,
		Strategies: []Strategy{
			{Literal: "x := 1"},
			{Anchor: &Anchor{Start: "x :=", Length: 6}},
		},
	}

	tp, err := p.Transaction()
	require.NoError(t, err)
	assert.Equal(t, "bump", tp.Name)
	assert.Equal(t, "windows-1252", tp.Encoding)
	assert.Equal(t, patch.Template{Content: "x := 2", Mode: patch.ModeReplace, Compare: patch.CompareWhitespace}, tp.Template)
	require.Len(t, tp.Strategies, 2)
	assert.Equal(t, "anchor(x := .. +6)", tp.Strategies[1].String())

	p.Strategies = append(p.Strategies, Strategy{})
	_, err = p.Transaction()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strategy 2")
}
