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
package native

import (
	"bennypowers.dev/yaje/buildcfg"
	"bennypowers.dev/yaje/target"
)

// BaseCFlags returns the fixed compile flags for a target. The -Wno set
// quiets warnings the QuickJS-style macro-heavy C in module packages trips
// constantly.
func BaseCFlags(tgt target.Triple) []string {
	return []string{
		"-std=gnu11",
		"-Wall",
		"-Wextra",
		"-Wformat=2",
		"-fwrapv",
		"-funsigned-char",
		"-Wno-implicit-fallthrough",
		"-Wno-sign-compare",
		"-Wno-unused-parameter",
		"-Wno-unused-variable",
		"-Wno-format-nonliteral",
		"-g",
		"-target", tgt.String(),
		"-c",
	}
}

// BaseLFlags returns the fixed link flags.
func BaseLFlags() []string {
	return []string{"-g"}
}

// Args produces the compile argument vector for module against its native
// dependency set deps:
//
//  1. include dirs and defines of the module, then of every dependency, in
//     their enumeration order;
//  2. library lookup dirs of the module only;
//  3. the module's extra cFlags;
//  4. baseFlags.
func Args(module *buildcfg.CFGResult, deps []*buildcfg.CFGResult, baseFlags []string) []string {
	var args []string

	for _, cfg := range append([]*buildcfg.CFGResult{module}, deps...) {
		for _, dir := range cfg.IncludeDirs {
			args = append(args, "-I", dir)
		}
		for _, macro := range cfg.DefineMacros {
			args = append(args, "-D", macro.Define())
		}
	}

	for _, dir := range module.LibraryLookup {
		args = append(args, "-L", dir)
	}

	args = append(args, module.CFlags...)
	args = append(args, baseFlags...)
	return args
}

// ScanArgs filters an argument vector down to the -I, -D and -target
// arguments a dependency-only compiler invocation needs.
func ScanArgs(args []string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-I", "-D", "-target":
			if i+1 < len(args) {
				out = append(out, args[i], args[i+1])
				i++
			}
		}
	}
	return out
}
