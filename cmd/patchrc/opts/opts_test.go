package opts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/patchrc/pkg/config"
)

func TestParseVars(t *testing.T) {
	tests := []struct {
		name        string
		vars        []string
		want        config.Vars
		errContains string
	}{
		{name: "empty", want: config.Vars{}},
		{name: "pairs", vars: []string{"timeout=60", "name=svc"}, want: config.Vars{"timeout": "60", "name": "svc"}},
		{name: "value_with_equals", vars: []string{"expr=a=b"}, want: config.Vars{"expr": "a=b"}},
		{name: "empty_value", vars: []string{"flag="}, want: config.Vars{"flag": ""}},
		{name: "missing_equals", vars: []string{"timeout"}, errContains: "expected key=value"},
		{name: "missing_key", vars: []string{"=60"}, errContains: "expected key=value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &RootOpts{Vars: tt.vars}
			got, err := o.ParseVars()
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
