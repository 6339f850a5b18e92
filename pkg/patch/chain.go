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

package patch

import (
	"github.com/walteh/patchrc/pkg/locate"
	"gitlab.com/tozd/go/errors"
)

// 🔎 Attempt records what one strategy found, for diagnostics
type Attempt struct {
	Index    int
	Strategy string
	Matches  int
	Outcome  OutcomeKind
}

// 🧭 Resolution is the result of running a strategy chain against one text.
// Strategy is the index of the deciding strategy, or -1 when every strategy
// came up empty.
type Resolution struct {
	Outcome  Outcome
	Strategy int
	Attempts []Attempt
}

// Decided returns the description of the deciding strategy, if any
func (r *Resolution) Decided() string {
	if r.Strategy < 0 || r.Strategy >= len(r.Attempts) {
		return ""
	}
	return r.Attempts[r.Strategy].Strategy
}

// Err maps a failed resolution onto the engine's error taxonomy. It returns
// nil for Applicable and AlreadyApplied.
func (r *Resolution) Err() error {
	switch r.Outcome.Kind {
	case NotFound:
		return &NotFoundError{Attempts: r.Attempts}
	case Ambiguous:
		return &AmbiguousError{Count: r.Outcome.Count, Strategy: r.Decided()}
	}
	return nil
}

// 🔗 Resolve tries each strategy in order and stops at the first one that is
// Applicable or AlreadyApplied. Ambiguity stops the chain immediately rather
// than falling through to a looser strategy.
func Resolve(text string, strategies []locate.Spec, tmpl Template) (*Resolution, error) {
	if len(strategies) == 0 {
		return nil, errors.New("no strategies to resolve")
	}

	res := &Resolution{Strategy: -1, Outcome: Outcome{Kind: NotFound}}

	for i, spec := range strategies {
		spans, err := locate.Locate(text, spec)
		if err != nil {
			return nil, errors.Errorf("strategy %d: %w", i, err)
		}

		outcome := Classify(spans, text, tmpl)
		res.Attempts = append(res.Attempts, Attempt{
			Index:    i,
			Strategy: spec.String(),
			Matches:  len(spans),
			Outcome:  outcome.Kind,
		})

		if outcome.Kind == NotFound {
			continue
		}

		res.Outcome = outcome
		res.Strategy = i
		return res, nil
	}

	return res, nil
}
