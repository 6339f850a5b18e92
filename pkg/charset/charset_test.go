package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantError string
	}{
		{name: "default", input: "", want: "utf-8"},
		{name: "utf8_alias", input: "UTF8", want: "utf-8"},
		{name: "windows_1252", input: "windows-1252", want: "windows-1252"},
		{name: "latin1_maps_to_windows_1252", input: "latin1", want: "windows-1252"},
		{name: "unknown", input: "klingon", wantError: "unknown encoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Lookup(tt.input)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}
}

func TestCodecRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		raw      []byte
		want     string
	}{
		{name: "utf8_plain", encoding: "utf-8", raw: []byte("olá mundo"), want: "olá mundo"},
		{name: "utf8_bom_stripped", encoding: "utf-8", raw: append([]byte{0xEF, 0xBB, 0xBF}, "x := 1"...), want: "x := 1"},
		{name: "windows_1252", encoding: "windows-1252", raw: []byte("conclus\xf5es"), want: "conclusões"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Lookup(tt.encoding)
			require.NoError(t, err)

			got, err := c.Decode(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			back, err := c.Encode(got)
			require.NoError(t, err)
			assert.Equal(t, tt.raw, back, "encoding the decoded text must give back the original bytes")
		})
	}
}

func TestCodecMismatch(t *testing.T) {
	c, err := Lookup("utf-8")
	require.NoError(t, err)

	// latin-1 bytes read as utf-8 are the classic source of mangled accents
	_, err = c.Decode([]byte("conclus\xf5es"))
	require.Error(t, err)

	var merr *MismatchError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "utf-8", merr.Encoding)
	assert.Equal(t, 7, merr.Offset)
}

func TestCodecUnrepresentable(t *testing.T) {
	c, err := Lookup("windows-1252")
	require.NoError(t, err)

	_, err = c.Encode("日本語")
	require.Error(t, err)

	var uerr *UnrepresentableError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "windows-1252", uerr.Encoding)
}
