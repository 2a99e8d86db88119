// Package builderr implements the three-tier error model of spec §7:
// accumulated build errors (abort the build unless ignored), accumulated
// warnings (never abort), and fatal errors (always abort, never
// suppressible — permalink conflicts, site-asset collisions, unresolved
// custom-metadata references).
package builderr

import (
	"fmt"
	"strings"
)

// Entry is one accumulated error or warning, optionally anchored to a
// source file and line.
type Entry struct {
	File    string
	Line    int
	Message string
}

func (e Entry) String() string {
	if e.File == "" {
		return e.Message
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Accumulator collects build errors and warnings during catalog reading and
// asset processing. It never panics or aborts on its own — the caller
// decides, at the end of catalog read, whether accumulated errors are fatal
// (see Err).
type Accumulator struct {
	errors   []Entry
	warnings []Entry
}

// AddError records a build error (§7: malformed manifest syntax, unknown
// keys, bad values, unresolvable references, decode/transcode failures).
func (a *Accumulator) AddError(file string, line int, format string, args ...any) {
	a.errors = append(a.errors, Entry{File: file, Line: line, Message: fmt.Sprintf(format, args...)})
}

// AddWarning records a warning (§7: missing image descriptions, lossless
// offered over lossy, auto-generated permalinks, deprecated keys).
func (a *Accumulator) AddWarning(file string, line int, format string, args ...any) {
	a.warnings = append(a.warnings, Entry{File: file, Line: line, Message: fmt.Sprintf(format, args...)})
}

// Errors returns all accumulated build errors in the order they were added.
func (a *Accumulator) Errors() []Entry { return a.errors }

// Warnings returns all accumulated warnings in the order they were added.
func (a *Accumulator) Warnings() []Entry { return a.warnings }

// HasErrors reports whether any build error was recorded.
func (a *Accumulator) HasErrors() bool { return len(a.errors) > 0 }

// Err returns a combined error for all accumulated build errors unless
// ignoreErrors is set, in which case it always returns nil — "errors
// encountered during catalog read are fatal unless explicitly overridden"
// (§6).
func (a *Accumulator) Err(ignoreErrors bool) error {
	if !a.HasErrors() || ignoreErrors {
		return nil
	}
	lines := make([]string, len(a.errors))
	for i, e := range a.errors {
		lines[i] = e.String()
	}
	return fmt.Errorf("build failed with %d error(s):\n%s", len(a.errors), strings.Join(lines, "\n"))
}

// Fatal represents an error category that can never be suppressed by
// ignore-errors: permalink slug conflicts, filename collisions between
// user site-assets and generated files, and unresolved references inside
// custom site metadata (§7).
type Fatal struct {
	Message string
}

func (f *Fatal) Error() string { return f.Message }

// NewFatal constructs a Fatal error.
func NewFatal(format string, args ...any) *Fatal {
	return &Fatal{Message: fmt.Sprintf(format, args...)}
}
