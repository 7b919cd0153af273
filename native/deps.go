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
	"context"
	"path/filepath"
	"strings"

	"bennypowers.dev/yaje/toolchain"
)

// HeaderDependencies asks the compiler for the transitively included
// headers of source using a dependency-only invocation (-MM) and parses the
// make-style output.
//
// A failed scan yields an empty list: the hash then under-approximates the
// dependency set, so header edits go unnoticed while scans keep failing
// (source and argument changes still invalidate). The first successful scan
// adds the headers to the hash and so triggers a recompile.
func HeaderDependencies(ctx context.Context, runner toolchain.Runner, log Logger, args []string, source string) []string {
	scanArgs := append(ScanArgs(args), "-MM", source)
	out, err := runner.Run(ctx, toolchain.Invocation{Tool: toolchain.Clang, Args: scanArgs})
	if err != nil {
		if log != nil {
			log.Debug("header scan of %s failed, treating as having no dependencies: %v", source, err)
		}
		return nil
	}
	return parseMakeDeps(string(out), filepath.Dir(source))
}

// parseMakeDeps joins make-style continuation lines, drops the object
// prefix, and resolves each remaining token against the source directory.
func parseMakeDeps(output, sourceDir string) []string {
	joined := strings.ReplaceAll(output, "\\\r\n", " ")
	joined = strings.ReplaceAll(joined, "\\\n", " ")

	_, rest, found := strings.Cut(joined, ":")
	if !found {
		return nil
	}

	var deps []string
	for _, token := range strings.Fields(rest) {
		if !filepath.IsAbs(token) {
			token = filepath.Join(sourceDir, token)
		}
		deps = append(deps, token)
	}
	return deps
}
