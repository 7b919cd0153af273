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

// Package bundler turns the root package's entry point into a single
// ES-module bundle through a pluggable gateway.
package bundler

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/yaje/fs"
	"bennypowers.dev/yaje/toolchain"
)

// BundleFileName is the single artifact every gateway must produce inside
// the gen folder.
const BundleFileName = "bundle.js"

var (
	// ErrBadArtifacts is returned when a bundler run produced anything
	// other than exactly one .js file at the expected location.
	ErrBadArtifacts = errors.New("bundler must produce exactly one .js artifact")

	// ErrUnknownBundler is returned when no gateway backend serves a
	// bundler package.
	ErrUnknownBundler = errors.New("no gateway backend for bundler package")
)

// Gateway is the capability a bundler backend fulfills. Every backend
// bundles as format ES module with dynamic imports inlined into a single
// chunk, minification off and sourcemaps off.
type Gateway interface {
	// Init prepares the backend (driver generation, tool probing).
	Init(ctx context.Context) error
	// Bundle produces the bundle for entry and returns the artifact path.
	Bundle(ctx context.Context, entry string) (string, error)
}

// Options is the output context handed to gateway backends.
type Options struct {
	Fsys   fs.FileSystem
	Runner toolchain.Runner
	// GenFolder receives the bundle artifact and any generated drivers.
	GenFolder string
	// ProjectDir is the root package folder, used as the working
	// directory for subprocess-backed bundlers.
	ProjectDir string
}

// OutFile returns the expected artifact path.
func (o Options) OutFile() string {
	return filepath.Join(o.GenFolder, BundleFileName)
}

// checkArtifacts verifies the exactly-one-.js contract over the gen folder
// and returns the artifact path.
func checkArtifacts(fsys fs.FileSystem, genFolder string) (string, error) {
	entries, err := fsys.ReadDir(genFolder)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadArtifacts, err)
	}

	var js []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".js") {
			js = append(js, entry.Name())
		}
	}
	if len(js) != 1 || js[0] != BundleFileName {
		return "", fmt.Errorf("%w: found %v in %s", ErrBadArtifacts, js, genFolder)
	}
	return filepath.Join(genFolder, BundleFileName), nil
}
