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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/charset"
	"github.com/walteh/patchrc/pkg/locate"
	"github.com/walteh/patchrc/pkg/patch"
	"github.com/walteh/patchrc/pkg/transaction"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte, vars Vars) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// Vars are the --var key=value pairs exposed to HCL definitions as var.<key>
type Vars map[string]string

// ⚓ Anchor is the definition form of locate.Anchor
type Anchor struct {
	Start  string `json:"start" yaml:"start" toml:"start"`
	End    string `json:"end,omitempty" yaml:"end,omitempty" toml:"end,omitempty"`
	Length int    `json:"length,omitempty" yaml:"length,omitempty" toml:"length,omitempty"`
	Within string `json:"within,omitempty" yaml:"within,omitempty" toml:"within,omitempty"`
}

// 🔍 Strategy is one locator in a patch's fallback chain.
// Exactly one of Literal, Regex or Anchor must be set.
type Strategy struct {
	Literal string  `json:"literal,omitempty" yaml:"literal,omitempty" toml:"literal,omitempty"`
	Regex   string  `json:"regex,omitempty" yaml:"regex,omitempty" toml:"regex,omitempty"`
	Flags   string  `json:"flags,omitempty" yaml:"flags,omitempty" toml:"flags,omitempty"`
	Anchor  *Anchor `json:"anchor,omitempty" yaml:"anchor,omitempty" toml:"anchor,omitempty"`
}

// Spec converts the strategy into a locator
func (s Strategy) Spec() (locate.Spec, error) {
	kinds := 0
	if s.Literal != "" {
		kinds++
	}
	if s.Regex != "" {
		kinds++
	}
	if s.Anchor != nil {
		kinds++
	}
	if kinds != 1 {
		return locate.Spec{}, errors.New("exactly one of literal, regex or anchor is required")
	}
	if s.Flags != "" && s.Regex == "" {
		return locate.Spec{}, errors.New("flags are only valid with regex")
	}

	var spec locate.Spec
	switch {
	case s.Literal != "":
		spec = locate.Literal(s.Literal)
	case s.Regex != "":
		spec = locate.Regex(s.Regex, s.Flags)
	default:
		spec = locate.Spec{
			Kind: locate.KindAnchor,
			Anchor: locate.Anchor{
				Start:  s.Anchor.Start,
				End:    s.Anchor.End,
				Length: s.Anchor.Length,
				Within: s.Anchor.Within,
			},
		}
	}

	return spec.Compile()
}

// 📦 Patch is one named change against one file or glob
type Patch struct {
	Name        string     `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	File        string     `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"`
	Encoding    string     `json:"encoding,omitempty" yaml:"encoding,omitempty" toml:"encoding,omitempty"`
	Compare     string     `json:"compare,omitempty" yaml:"compare,omitempty" toml:"compare,omitempty"`
	Mode        string     `json:"mode,omitempty" yaml:"mode,omitempty" toml:"mode,omitempty"`
	Replace     *string    `json:"replace,omitempty" yaml:"replace,omitempty" toml:"replace,omitempty"`
	ReplaceFile string     `json:"replace_file,omitempty" yaml:"replace_file,omitempty" toml:"replace_file,omitempty"`
	Strategies  []Strategy `json:"strategies" yaml:"strategies" toml:"strategies"`

	// set once replace_file has been read into Replace
	replaceLoaded bool
}

// Template returns the replacement template for the patch
func (p Patch) Template() patch.Template {
	var content string
	if p.Replace != nil {
		content = *p.Replace
	}
	return patch.Template{
		Content: content,
		Mode:    patch.Mode(p.Mode),
		Compare: patch.Compare(p.Compare),
	}
}

// Specs compiles the strategy chain in order
func (p Patch) Specs() ([]locate.Spec, error) {
	specs := make([]locate.Spec, 0, len(p.Strategies))
	for i, s := range p.Strategies {
		spec, err := s.Spec()
		if err != nil {
			return nil, errors.Errorf("strategy %d: %w", i, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// 🔄 Transaction converts the patch into the form transaction.Run accepts
func (p Patch) Transaction() (transaction.Patch, error) {
	specs, err := p.Specs()
	if err != nil {
		return transaction.Patch{}, errors.Errorf("patch %q: %w", p.Name, err)
	}
	return transaction.Patch{
		Name:       p.Name,
		Strategies: specs,
		Template:   p.Template(),
		Encoding:   p.Encoding,
	}, nil
}

// 📚 Config represents a complete patch definition file
type Config struct {
	Encoding string  `json:"encoding,omitempty" yaml:"encoding,omitempty" toml:"encoding,omitempty"`
	Compare  string  `json:"compare,omitempty" yaml:"compare,omitempty" toml:"compare,omitempty"`
	Async    bool    `json:"async,omitempty" yaml:"async,omitempty" toml:"async,omitempty"`
	Patches  []Patch `json:"patches" yaml:"patches" toml:"patches"`

	location string
}

// Dir returns the directory the definition was loaded from
func (cfg *Config) Dir() string {
	if cfg.location == "" {
		return "."
	}
	return filepath.Dir(cfg.location)
}

// 🎯 Load loads a patch definition from a file
func Load(ctx context.Context, path string, vars Vars) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading patch definition")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := parse(ctx, path, data, vars)
	if err != nil {
		return nil, err
	}
	cfg.location = path

	if err := cfg.loadReplaceFiles(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Str("path", path).Int("patches", len(cfg.Patches)).Msg("patch definition loaded")

	return cfg, nil
}

func parse(ctx context.Context, path string, data []byte, vars Vars) (*Config, error) {
	if p := GetParser(path); p != nil {
		cfg, err := p.Parse(ctx, data, vars)
		if err != nil {
			return nil, errors.Errorf("parsing config: %w", err)
		}
		return cfg, nil
	}

	// .patchrc files may hold either YAML or HCL
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".patchrc" && filepath.Base(path) != ".patchrc" {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, yamlErr := (&YAMLParser{}).Parse(ctx, data, vars)
	if yamlErr == nil {
		return cfg, nil
	}
	cfg, hclErr := (&HCLParser{}).Parse(ctx, data, vars)
	if hclErr == nil {
		return cfg, nil
	}
	return nil, errors.Errorf("failed to parse %s as YAML (%v) or HCL: %w", path, yamlErr, hclErr)
}

func (cfg *Config) loadReplaceFiles() error {
	for i := range cfg.Patches {
		p := &cfg.Patches[i]
		if p.ReplaceFile == "" {
			continue
		}
		if p.Replace != nil {
			return errors.Errorf("patch %d: replace and replace_file are mutually exclusive", i)
		}
		path := p.ReplaceFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Dir(), path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Errorf("patch %d: reading replace_file: %w", i, err)
		}
		content := string(data)
		p.Replace = &content
		p.ReplaceFile = path
		p.replaceLoaded = true
	}
	return nil
}

// 🔍 Validate checks the definition, fills defaults and compiles every strategy
func (cfg *Config) Validate() error {
	if len(cfg.Patches) == 0 {
		return errors.New("at least one patch is required")
	}

	if cfg.Encoding == "" {
		cfg.Encoding = charset.DefaultEncoding
	}
	if cfg.Compare == "" {
		cfg.Compare = string(patch.CompareExact)
	}

	seen := make(map[string]bool, len(cfg.Patches))
	for i := range cfg.Patches {
		p := &cfg.Patches[i]

		if p.Name == "" {
			p.Name = fmt.Sprintf("patch-%d", i+1)
		}
		if seen[p.Name] {
			return errors.Errorf("patch %q: duplicate name", p.Name)
		}
		seen[p.Name] = true

		if p.Encoding == "" {
			p.Encoding = cfg.Encoding
		}
		if _, err := charset.Lookup(p.Encoding); err != nil {
			return errors.Errorf("patch %q: %w", p.Name, err)
		}

		if p.Compare == "" {
			p.Compare = cfg.Compare
		}
		switch patch.Compare(p.Compare) {
		case patch.CompareExact, patch.CompareWhitespace:
		default:
			return errors.Errorf("patch %q: unknown compare %q", p.Name, p.Compare)
		}

		if p.Mode == "" {
			p.Mode = string(patch.ModeReplace)
		}
		switch patch.Mode(p.Mode) {
		case patch.ModeReplace, patch.ModeInsertAfter, patch.ModeInsertBefore:
		default:
			return errors.Errorf("patch %q: unknown mode %q", p.Name, p.Mode)
		}

		if p.Replace != nil && p.ReplaceFile != "" && !p.replaceLoaded {
			return errors.Errorf("patch %q: replace and replace_file are mutually exclusive", p.Name)
		}
		if p.Replace == nil {
			return errors.Errorf("patch %q: replace or replace_file is required", p.Name)
		}
		if p.Mode != string(patch.ModeReplace) && *p.Replace == "" {
			return errors.Errorf("patch %q: %s needs non-empty content", p.Name, p.Mode)
		}

		if len(p.Strategies) == 0 {
			return errors.Errorf("patch %q: at least one strategy is required", p.Name)
		}
		if _, err := p.Specs(); err != nil {
			return errors.Errorf("patch %q: %w", p.Name, err)
		}
	}

	return nil
}

// 📝 String returns a short summary of the definition
func (cfg *Config) String() string {
	names := make([]string, 0, len(cfg.Patches))
	for _, p := range cfg.Patches {
		names = append(names, p.Name)
	}
	return fmt.Sprintf("%d patches [%s]", len(cfg.Patches), strings.Join(names, ", "))
}
