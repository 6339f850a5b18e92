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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/patchrc/pkg/text"
	"github.com/walteh/patchrc/pkg/transaction"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	patchWidth  = 20 // Width for patch name
	statusWidth = 16 // Width for status text
	diffIndent  = 6  // spaces to indent diff lines
)

// 🎯 PatchOperation represents one patch transaction for logging
type PatchOperation struct {
	Path      string           // File path
	Patch     string           // Patch name
	Kind      transaction.Kind // Outcome of the transaction
	Strategy  string           // Locator that decided the outcome
	Matches   int              // Number of matches when ambiguous
	DryRun    bool             // Whether the write was skipped
	Discarded bool             // Whether the change was dropped after another patch failed
}

// 📦 DefinitionOperation represents a loaded patch definition for logging
type DefinitionOperation struct {
	Path    string // Definition file
	Patches int    // Number of patches in the definition
	DryRun  bool   // Whether this is a check run
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentDef *DefinitionOperation
	operations []PatchOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatPatchOperation formats a patch operation for display
func (l *Logger) formatPatchOperation(op PatchOperation) string {
	var symbol rune
	var symbolColor color.Attribute
	status := string(op.Kind)
	switch op.Kind {
	case transaction.KindApplied:
		switch {
		case op.Discarded:
			symbol = '-'
			symbolColor = color.FgYellow
			status = "discarded"
		case op.DryRun:
			symbol = '~'
			symbolColor = color.FgBlue
			status = "would apply"
		default:
			symbol = '✓'
			symbolColor = color.FgGreen
		}
	case transaction.KindAlreadyApplied:
		symbol = '•'
		symbolColor = color.FgCyan
	case transaction.KindNotFound:
		symbol = '✗'
		symbolColor = color.FgRed
	case transaction.KindAmbiguous:
		symbol = '!'
		symbolColor = color.FgYellow
		status = fmt.Sprintf("ambiguous (%d)", op.Matches)
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, op.Path),
		color.New(color.FgMagenta).Sprint(fmt.Sprintf("%-*s", patchWidth, op.Patch)),
		fmt.Sprintf("%-*s", statusWidth, status))

	if op.Strategy != "" {
		line += color.New(color.Faint).Sprint(op.Strategy)
	}
	return line
}

// 📝 LogPatchOperation logs a patch operation
func (l *Logger) LogPatchOperation(ctx context.Context, op PatchOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.operations = append(l.operations, op)

	fmt.Fprintln(l.console, l.formatPatchOperation(op))

	l.zlog.Info().
		Str("file", op.Path).
		Str("patch", op.Patch).
		Str("kind", string(op.Kind)).
		Str("strategy", op.Strategy).
		Int("matches", op.Matches).
		Bool("dry_run", op.DryRun).
		Bool("discarded", op.Discarded).
		Msg("patch operation")
}

// 📝 LogDiff prints a colored diff preview under the last patch operation
func (l *Logger) LogDiff(lines []text.DiffLine) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, line := range lines {
		var c *color.Color
		switch line.Kind {
		case text.LineAdded:
			c = color.New(color.FgGreen)
		case text.LineRemoved:
			c = color.New(color.FgRed)
		default:
			c = color.New(color.Faint)
		}
		fmt.Fprintf(l.console, "%*s%s\n", diffIndent, "", c.Sprint(string(line.Kind)+line.Text))
	}
}

// 📝 StartDefinition starts logging a patch definition run
func (l *Logger) StartDefinition(ctx context.Context, op DefinitionOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentDef = &op
	l.operations = nil

	verb := "patching"
	if op.DryRun {
		verb = "checking"
	}
	fmt.Fprintf(l.console, "[%s %s]\n", verb, color.New(color.FgCyan).Sprint(op.Path))

	l.zlog.Info().
		Str("definition", op.Path).
		Int("patches", op.Patches).
		Bool("dry_run", op.DryRun).
		Msg("starting patch definition")
}

// 📝 EndDefinition ends the current definition run
func (l *Logger) EndDefinition(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentDef == nil {
		return
	}

	l.zlog.Info().
		Str("definition", l.currentDef.Path).
		Int("files", len(l.operations)).
		Msg("patch definition complete")

	l.currentDef = nil
	l.operations = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	patchrcText := color.New(color.Bold, color.FgCyan).Sprint("patchrc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", patchrcText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
