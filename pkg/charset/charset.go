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

// Package charset reads and writes file content with one declared encoding.
// The same Codec value must be used for both directions of a transaction.
package charset

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is used when a patch does not declare one
const DefaultEncoding = "utf-8"

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// MismatchError reports bytes that do not round-trip through the declared encoding
type MismatchError struct {
	Encoding string
	Offset   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("content is not valid %s (first bad byte at offset %d)", e.Encoding, e.Offset)
}

// UnrepresentableError reports text the declared encoding cannot store
type UnrepresentableError struct {
	Encoding string
	Err      error
}

func (e *UnrepresentableError) Error() string {
	return fmt.Sprintf("text cannot be encoded as %s: %v", e.Encoding, e.Err)
}

func (e *UnrepresentableError) Unwrap() error {
	return e.Err
}

// 🔤 Codec decodes and encodes with one encoding and remembers the byte order
// mark it saw so that Encode restores it
type Codec struct {
	name string
	enc  encoding.Encoding
	utf8 bool
	bom  []byte
}

// Lookup returns a codec for an encoding name such as utf-8, windows-1252 or utf-16le
func Lookup(name string) (*Codec, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultEncoding
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Errorf("unknown encoding %q: %w", name, err)
	}

	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(name)
	}

	return &Codec{
		name: canonical,
		enc:  enc,
		utf8: canonical == DefaultEncoding,
	}, nil
}

// Name returns the canonical encoding name
func (c *Codec) Name() string {
	return c.name
}

// Decode converts raw file bytes to text. It fails with *MismatchError when
// the bytes are not a faithful rendition of the declared encoding.
func (c *Codec) Decode(raw []byte) (string, error) {
	c.bom = nil
	body := raw
	for _, bom := range [][]byte{bomUTF8, bomUTF16LE, bomUTF16BE} {
		if c.acceptsBOM(bom) && bytes.HasPrefix(raw, bom) {
			c.bom = bom
			body = raw[len(bom):]
			break
		}
	}

	if c.utf8 {
		if !utf8.Valid(body) {
			return "", &MismatchError{Encoding: c.name, Offset: len(c.bom) + firstInvalidUTF8(body)}
		}
		return string(body), nil
	}

	decoded, err := c.enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", &MismatchError{Encoding: c.name, Offset: len(c.bom)}
	}

	// decoders substitute U+FFFD for bad input, so verify the round trip
	back, err := c.enc.NewEncoder().Bytes(decoded)
	if err != nil || !bytes.Equal(back, body) {
		return "", &MismatchError{Encoding: c.name, Offset: len(c.bom) + firstDifference(back, body)}
	}

	return string(decoded), nil
}

// Encode converts text back to bytes, restoring any byte order mark seen by Decode
func (c *Codec) Encode(text string) ([]byte, error) {
	var body []byte
	if c.utf8 {
		if !utf8.ValidString(text) {
			return nil, &UnrepresentableError{Encoding: c.name, Err: errors.New("invalid utf-8 sequence")}
		}
		body = []byte(text)
	} else {
		var err error
		body, err = c.enc.NewEncoder().Bytes([]byte(text))
		if err != nil {
			return nil, &UnrepresentableError{Encoding: c.name, Err: err}
		}
	}

	if len(c.bom) == 0 {
		return body, nil
	}
	out := make([]byte, 0, len(c.bom)+len(body))
	out = append(out, c.bom...)
	return append(out, body...), nil
}

func (c *Codec) acceptsBOM(bom []byte) bool {
	switch {
	case bytes.Equal(bom, bomUTF8):
		return c.utf8
	case bytes.Equal(bom, bomUTF16LE):
		return c.name == "utf-16le"
	case bytes.Equal(bom, bomUTF16BE):
		return c.name == "utf-16be"
	}
	return false
}

func firstInvalidUTF8(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(b)
}

func firstDifference(a, b []byte) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
