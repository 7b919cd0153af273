/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package console provides the stderr logger the CLI commands hand to the
// build pipeline.
package console

import (
	"fmt"
	"io"
	"os"
)

// Logger writes build progress to a stream, one line per message.
type Logger struct {
	Out     io.Writer
	Verbose bool
}

// New creates a Logger writing to stderr.
func New(verbose bool) *Logger {
	return &Logger{Out: os.Stderr, Verbose: verbose}
}

// Info reports build progress.
func (l *Logger) Info(format string, args ...any) {
	fmt.Fprintf(l.Out, format+"\n", args...)
}

// Warning reports a non-fatal problem.
func (l *Logger) Warning(format string, args ...any) {
	fmt.Fprintf(l.Out, "warning: "+format+"\n", args...)
}

// Debug reports detail shown only in verbose mode.
func (l *Logger) Debug(format string, args ...any) {
	if l.Verbose {
		fmt.Fprintf(l.Out, "debug: "+format+"\n", args...)
	}
}
