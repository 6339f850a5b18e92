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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

type hclConfig struct {
	Encoding string     `hcl:"encoding,optional"`
	Compare  string     `hcl:"compare,optional"`
	Async    bool       `hcl:"async,optional"`
	Patches  []hclPatch `hcl:"patch,block"`
}

type hclPatch struct {
	Name        string        `hcl:"name,label"`
	File        string        `hcl:"file,optional"`
	Encoding    string        `hcl:"encoding,optional"`
	Compare     string        `hcl:"compare,optional"`
	Mode        string        `hcl:"mode,optional"`
	Replace     *string       `hcl:"replace,optional"`
	ReplaceFile string        `hcl:"replace_file,optional"`
	Strategies  []hclStrategy `hcl:"strategy,block"`
}

type hclStrategy struct {
	Literal string     `hcl:"literal,optional"`
	Regex   string     `hcl:"regex,optional"`
	Flags   string     `hcl:"flags,optional"`
	Anchor  *hclAnchor `hcl:"anchor,block"`
}

type hclAnchor struct {
	Start  string `hcl:"start"`
	End    string `hcl:"end,optional"`
	Length int    `hcl:"length,optional"`
	Within string `hcl:"within,optional"`
}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL. Vars are available as var.<name>.
func (p *HCLParser) Parse(ctx context.Context, data []byte, vars Vars) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "patches.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var": varsObject(vars),
		},
	}

	var raw hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &raw)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := &Config{
		Encoding: raw.Encoding,
		Compare:  raw.Compare,
		Async:    raw.Async,
		Patches:  make([]Patch, 0, len(raw.Patches)),
	}
	for _, rp := range raw.Patches {
		p := Patch{
			Name:        rp.Name,
			File:        rp.File,
			Encoding:    rp.Encoding,
			Compare:     rp.Compare,
			Mode:        rp.Mode,
			Replace:     rp.Replace,
			ReplaceFile: rp.ReplaceFile,
			Strategies:  make([]Strategy, 0, len(rp.Strategies)),
		}
		for _, rs := range rp.Strategies {
			s := Strategy{
				Literal: rs.Literal,
				Regex:   rs.Regex,
				Flags:   rs.Flags,
			}
			if rs.Anchor != nil {
				s.Anchor = &Anchor{
					Start:  rs.Anchor.Start,
					End:    rs.Anchor.End,
					Length: rs.Anchor.Length,
					Within: rs.Anchor.Within,
				}
			}
			p.Strategies = append(p.Strategies, s)
		}
		cfg.Patches = append(cfg.Patches, p)
	}

	return cfg, nil
}

func varsObject(vars Vars) cty.Value {
	if len(vars) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(vars))
	for k, v := range vars {
		attrs[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(attrs)
}
