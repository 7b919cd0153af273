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

// Package scaffold writes the starter files for a new yaje project.
package scaffold

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"bennypowers.dev/yaje/fs"
)

// ErrAlreadyProject is returned when the target directory already has a
// package.json.
var ErrAlreadyProject = errors.New("directory already contains a package.json")

// Options configures project generation.
type Options struct {
	// Name is the package name; defaults to the directory base name.
	Name string
	// Native also scaffolds a build-configuration script and a C module
	// skeleton wired to the entry point.
	Native bool
}

const manifestTemplate = `{
	"name": %q,
	"version": "0.1.0",
	"main": "./src/index.js",
	"dependencies": {
		"@yaje/core": "^1",
		"@yaje/esbuild": "^1"
	}
}
`

const indexTemplate = `const { print } = Native.getModule("core:std");

print("hello from %s\n");
`

const gitignoreTemplate = `.yaje/
node_modules/
`

const buildScriptTemplate = `const cfg = config();

cfg.addSource("src/native");
cfg.addIncludeDir("src/native");
cfg.setLoadingFunctions(%q);

export default cfg;
`

const nativeModuleTemplate = `#include <yaje_core.h>

void %s(JSRuntime *rt, JSContext *ctx) {
	(void)rt;
	(void)ctx;
}
`

// Project writes a minimal buildable project into dir.
func Project(fsys fs.FileSystem, dir string, opts Options) error {
	manifestPath := filepath.Join(dir, "package.json")
	if fsys.Exists(manifestPath) {
		return fmt.Errorf("%w: %s", ErrAlreadyProject, dir)
	}

	name := opts.Name
	if name == "" {
		name = filepath.Base(dir)
	}

	files := map[string]string{
		manifestPath:                          fmt.Sprintf(manifestTemplate, name),
		filepath.Join(dir, "src", "index.js"): fmt.Sprintf(indexTemplate, name),
		filepath.Join(dir, ".gitignore"):      gitignoreTemplate,
	}

	if opts.Native {
		loader := loadingFunctionName(name)
		files[filepath.Join(dir, "yaje.build.js")] = fmt.Sprintf(buildScriptTemplate, loader)
		files[filepath.Join(dir, "src", "native", "module.c")] = fmt.Sprintf(nativeModuleTemplate, loader)
	}

	for path, content := range files {
		if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := fsys.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

var nonIdentifier = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// loadingFunctionName derives a valid C identifier from a package name:
// "@me/my-app" → "yaje_me_my_app_load".
func loadingFunctionName(name string) string {
	cleaned := nonIdentifier.ReplaceAllString(strings.TrimPrefix(name, "@"), "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		cleaned = "module"
	}
	return "yaje_" + cleaned + "_load"
}
