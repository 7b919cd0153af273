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

// Package imports extracts module specifiers from JavaScript sources so
// the build can diagnose unresolvable imports before the bundler runs.
package imports

import (
	"fmt"
	"strings"
	"sync"

	ts "github.com/tree-sitter/go-tree-sitter"
	tsTypescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// ModuleImport is one import site in a source file.
type ModuleImport struct {
	// Specifier is the literal module specifier.
	Specifier string
	// IsDynamic marks import() call sites.
	IsDynamic bool
	// Line is 1-indexed.
	Line int
}

// importQuery captures static imports, re-exports and dynamic import()
// call sites. The typescript grammar parses plain JavaScript too.
const importQuery = `
(import_statement source: (string (string_fragment) @import.spec))
(export_statement source: (string (string_fragment) @reexport.spec))
(call_expression
  function: (import)
  arguments: (arguments (string (string_fragment) @dynamicImport.spec)))
`

var language = ts.NewLanguage(tsTypescript.LanguageTypescript())

var parserPool = sync.Pool{
	New: func() any {
		parser := ts.NewParser()
		if err := parser.SetLanguage(language); err != nil {
			panic("failed to set typescript language: " + err.Error())
		}
		return parser
	},
}

var (
	queryOnce sync.Once
	query     *ts.Query
	queryErr  error
)

func getQuery() (*ts.Query, error) {
	queryOnce.Do(func() {
		query, queryErr = ts.NewQuery(language, importQuery)
	})
	return query, queryErr
}

// ExtractImports parses JavaScript/TypeScript content and extracts all
// import specifiers.
func ExtractImports(content []byte) ([]ModuleImport, error) {
	q, err := getQuery()
	if err != nil {
		return nil, err
	}

	parser := parserPool.Get().(*ts.Parser)
	defer func() {
		parser.Reset()
		parserPool.Put(parser)
	}()

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse content")
	}
	defer tree.Close()

	cursor := ts.NewQueryCursor()
	defer cursor.Close()

	var imports []ModuleImport
	matches := cursor.Matches(q, tree.RootNode(), content)
	captureNames := q.CaptureNames()

	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, capture := range match.Captures {
			name := captureNames[capture.Index]
			imports = append(imports, ModuleImport{
				Specifier: capture.Node.Utf8Text(content),
				IsDynamic: name == "dynamicImport.spec",
				Line:      int(capture.Node.StartPosition().Row) + 1,
			})
		}
	}

	return imports, nil
}

// IsBare reports whether a specifier names a package rather than a
// relative or absolute path, a node:-prefixed builtin or a data: URL.
// Builtins written without the node: prefix ("fs") count as bare.
func IsBare(specifier string) bool {
	switch {
	case strings.HasPrefix(specifier, "./"),
		strings.HasPrefix(specifier, "../"),
		strings.HasPrefix(specifier, "/"),
		strings.HasPrefix(specifier, "node:"),
		strings.HasPrefix(specifier, "data:"):
		return false
	}
	return true
}

// PackageName extracts the package half of a bare specifier:
// "@yaje/core/fs" → "@yaje/core", "lit/html.js" → "lit".
func PackageName(specifier string) string {
	parts := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}
