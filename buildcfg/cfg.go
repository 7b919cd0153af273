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

// Package buildcfg evaluates per-package build-configuration scripts and
// normalizes their output into CFGResult values the native build consumes.
package buildcfg

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"bennypowers.dev/yaje/target"
)

// Build-configuration script names, searched in order.
var ScriptNames = []string{"yaje.build.js", "yaje.build.mjs"}

var (
	// ErrSeedIncomplete is returned when a config object would be
	// constructed without a target or package directory.
	ErrSeedIncomplete = errors.New("build configuration seed is incomplete")

	// ErrNoDefaultExport is returned when a script finishes without
	// publishing a default export.
	ErrNoDefaultExport = errors.New("build script has no default export")

	// ErrNotConfigObject is returned when the default export is not a
	// configuration object.
	ErrNotConfigObject = errors.New("build script default export is not a configuration object")

	// ErrNotADirectory is returned when a path argument does not point to
	// an existing directory.
	ErrNotADirectory = errors.New("path is not an existing directory")

	// ErrBadMacroValue is returned for macro values that are neither
	// string, number, nor the literal true.
	ErrBadMacroValue = errors.New("macro value must be a string, a number, or true")

	// ErrBadLoadingFunction is returned for loading-function names that
	// are not valid C identifiers.
	ErrBadLoadingFunction = errors.New("loading function is not a valid C identifier")
)

// MacroKind discriminates the serialized form of a preprocessor define.
type MacroKind int

const (
	// MacroFlag is a name-only define: -D NAME
	MacroFlag MacroKind = iota
	// MacroString is a quoted define: -D NAME="value"
	MacroString
	// MacroNumber is a numeric define: -D NAME=42
	MacroNumber
)

// Macro is one preprocessor define in enumeration order.
type Macro struct {
	Name string
	Kind MacroKind
	Str  string
	Num  float64
}

// Define serializes the macro for a -D argument.
func (m Macro) Define() string {
	switch m.Kind {
	case MacroString:
		return m.Name + `="` + m.Str + `"`
	case MacroNumber:
		return m.Name + "=" + strconv.FormatFloat(m.Num, 'f', -1, 64)
	default:
		return m.Name
	}
}

// CFGResult is the frozen native-build description of one module. Every
// path is absolute and existed when the configuration script ran; ordered
// fields keep their script-call order.
type CFGResult struct {
	Name             string
	Sources          []string
	IncludeDirs      []string
	DefineMacros     []Macro
	LibraryLookup    []string
	LinkLibraries    []string
	LoadingFunctions []string
	CFlags           []string
	LFlags           []string
}

// Seed carries the context a configuration script runs against. The
// original design read this from process-wide state; here it is threaded
// explicitly into the evaluator.
type Seed struct {
	// ProjectDir is the absolute project root.
	ProjectDir string
	// PackageDir is the absolute folder of the package being configured;
	// relative path arguments in the script resolve against it.
	PackageDir string
	// ModuleName names the package, and so the CFGResult.
	ModuleName string
	// Target is the triple the build is producing code for.
	Target target.Triple
}

func (s Seed) validate() error {
	if s.ProjectDir == "" || s.PackageDir == "" || s.ModuleName == "" {
		return fmt.Errorf("%w: project, package and module name are required", ErrSeedIncomplete)
	}
	if s.Target == (target.Triple{}) {
		return fmt.Errorf("%w: target is unset", ErrSeedIncomplete)
	}
	return nil
}

var cIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidCIdentifier reports whether name can appear as a C symbol or macro
// name.
func ValidCIdentifier(name string) bool {
	return cIdentifier.MatchString(name)
}
