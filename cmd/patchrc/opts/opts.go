package opts

import (
	"strings"

	"github.com/walteh/patchrc/pkg/config"
	"github.com/walteh/patchrc/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile  string
	Debug       bool
	Vars        []string
	DryRun      bool
	KeepGoing   bool
	Async       bool
	DiffContext int

	Console    *log.Logger
	UserLogger *log.UserLogger
}

// ParseVars turns repeated --var key=value flags into config vars
func (o *RootOpts) ParseVars() (config.Vars, error) {
	vars := make(config.Vars, len(o.Vars))
	for _, kv := range o.Vars {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Errorf("invalid --var %q, expected key=value", kv)
		}
		vars[key] = value
	}
	return vars, nil
}
