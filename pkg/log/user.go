package log

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/transaction"
)

// 📢 UserLogger provides user-friendly feedback about patch runs
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 📝 LogResult logs one transaction result with a matching prefix
func (u *UserLogger) LogResult(res *transaction.Result) {
	relPath := filepath.Base(res.Path)

	var action string
	var printer *pterm.PrefixPrinter
	switch res.Kind {
	case transaction.KindApplied:
		action = "Patched"
		printer = pterm.Success.WithPrefix(pterm.Prefix{Text: "✨"})
		switch {
		case res.Discarded:
			action = "Discarded patch to"
			printer = pterm.Warning.WithPrefix(pterm.Prefix{Text: "↩️"})
		case !res.Written:
			action = "Would patch"
		}
	case transaction.KindAlreadyApplied:
		action = "Already patched"
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: "⏭️"})
	case transaction.KindNotFound:
		action = "Block not found in"
		printer = pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"})
	case transaction.KindAmbiguous:
		action = fmt.Sprintf("Ambiguous (%d matches) in", res.Matches)
		printer = pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"})
	default:
		action = string(res.Kind)
		printer = pterm.Debug.WithPrefix(pterm.Prefix{Text: "•"})
	}

	msg := fmt.Sprintf("%s %s (%s)", action, relPath, res.Patch)

	if err := res.Err(); err != nil {
		printer.Println(msg)
		u.log.Error().Err(err).Str("path", res.Path).Msg(msg)
		return
	}
	printer.Println(msg)
	u.log.Info().Str("path", res.Path).Msg(msg)
}

// 📊 LogStateChange logs a change to the overall run
func (u *UserLogger) LogStateChange(description string) {
	printer := pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"})
	printer.Println(description)
	u.log.Info().Msg(description)
}

// 🔍 LogValidation logs validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(description)
		u.log.Info().Msg(description)
		return
	}
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(description)
		pterm.Error.Println(err)
		u.log.Error().Err(err).Msg(description)
		return
	}
	pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(description)
	u.log.Warn().Msg(description)
}
