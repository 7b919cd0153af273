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
package imports

import (
	"path/filepath"

	"bennypowers.dev/yaje/discover"
	"bennypowers.dev/yaje/fs"
)

// Diagnostic flags one import of a package that discovery never tracked.
// The bundler remains the authority; these are warnings, not failures.
type Diagnostic struct {
	File      string
	Line      int
	Specifier string
	Package   string
}

// Preflight walks the relative-import closure of the entry module and
// reports bare specifiers that no discovered package supplies. Files that
// fail to read or parse are skipped: the bundler will produce the real
// error with better context.
func Preflight(fsys fs.ReadFS, entry string, collection *discover.PackageCollection) []Diagnostic {
	var diagnostics []Diagnostic
	visited := map[string]bool{}

	var visit func(path string)
	visit = func(path string) {
		if visited[path] {
			return
		}
		visited[path] = true

		content, err := fsys.ReadFile(path)
		if err != nil {
			return
		}
		found, err := ExtractImports(content)
		if err != nil {
			return
		}

		for _, imp := range found {
			if !IsBare(imp.Specifier) {
				if target := resolveRelative(fsys, path, imp.Specifier); target != "" {
					visit(target)
				}
				continue
			}
			pkg := PackageName(imp.Specifier)
			if !collection.Has(pkg) {
				diagnostics = append(diagnostics, Diagnostic{
					File:      path,
					Line:      imp.Line,
					Specifier: imp.Specifier,
					Package:   pkg,
				})
			}
		}
	}

	visit(entry)
	return diagnostics
}

// resolveRelative resolves a relative specifier against the importing
// file, trying the literal path, then with a .js extension, then as a
// directory index.
func resolveRelative(fsys fs.ReadFS, from, specifier string) string {
	if filepath.IsAbs(specifier) {
		return ""
	}
	base := filepath.Join(filepath.Dir(from), filepath.FromSlash(specifier))
	for _, candidate := range []string{base, base + ".js", filepath.Join(base, "index.js")} {
		if info, err := fsys.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}
