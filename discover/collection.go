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
package discover

import (
	"errors"
	"fmt"

	"bennypowers.dev/yaje/buildcfg"
	"bennypowers.dev/yaje/packagejson"
)

// CorePackageName is the script-engine support package every native build
// links against.
const CorePackageName = "@yaje/core"

var (
	// ErrCoreNotFound is returned when the collection holds no native
	// @yaje/core package.
	ErrCoreNotFound = errors.New("no native " + CorePackageName + " package in dependency tree")

	// ErrNoBundler is returned when no discovered package advertises
	// itself as a bundler.
	ErrNoBundler = errors.New("no bundler package in dependency tree")
)

// TrackedPackage records one discovered package.
type TrackedPackage struct {
	// Manifest is the parsed package.json.
	Manifest *packagejson.PackageJSON
	// PackageFolder is the absolute on-disk folder of the package.
	PackageFolder string
	// IsNative is true iff a build-configuration script produced
	// Instructions and the package participates in native compilation.
	IsNative bool
	// IsBundler comes from the manifest's bundler flag.
	IsBundler bool
	// Instructions is the normalized native-build description; nil unless
	// IsNative.
	Instructions *buildcfg.CFGResult
}

// PackageCollection maps package names to tracked packages and iterates in
// insertion (discovery) order.
type PackageCollection struct {
	order    []string
	packages map[string]*TrackedPackage
}

// NewPackageCollection creates an empty collection.
func NewPackageCollection() *PackageCollection {
	return &PackageCollection{packages: make(map[string]*TrackedPackage)}
}

// Get returns the tracked package for name.
func (c *PackageCollection) Get(name string) (*TrackedPackage, bool) {
	pkg, ok := c.packages[name]
	return pkg, ok
}

// Has reports whether name is tracked.
func (c *PackageCollection) Has(name string) bool {
	_, ok := c.packages[name]
	return ok
}

// Set inserts or replaces a tracked package. First insertion fixes the
// package's position in iteration order.
func (c *PackageCollection) Set(name string, pkg *TrackedPackage) {
	if _, ok := c.packages[name]; !ok {
		c.order = append(c.order, name)
	}
	c.packages[name] = pkg
}

// Len returns the number of tracked packages.
func (c *PackageCollection) Len() int {
	return len(c.order)
}

// Names returns the package names in discovery order.
func (c *PackageCollection) Names() []string {
	return append([]string(nil), c.order...)
}

// Packages returns the tracked packages in discovery order.
func (c *PackageCollection) Packages() []*TrackedPackage {
	out := make([]*TrackedPackage, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.packages[name])
	}
	return out
}

// NativePackages returns the native packages in discovery order.
func (c *PackageCollection) NativePackages() []*TrackedPackage {
	var out []*TrackedPackage
	for _, pkg := range c.Packages() {
		if pkg.IsNative {
			out = append(out, pkg)
		}
	}
	return out
}

// Core returns the @yaje/core package, which must be native.
func (c *PackageCollection) Core() (*TrackedPackage, error) {
	pkg, ok := c.packages[CorePackageName]
	if !ok || !pkg.IsNative {
		return nil, ErrCoreNotFound
	}
	return pkg, nil
}

// Bundler returns the first package, in discovery order, whose manifest
// marks it as a bundler.
func (c *PackageCollection) Bundler() (*TrackedPackage, error) {
	for _, pkg := range c.Packages() {
		if pkg.IsBundler {
			return pkg, nil
		}
	}
	return nil, ErrNoBundler
}

// NativeDependencies returns the native packages module reaches through
// its manifest dependencies, in discovery order, excluding module itself.
// This is the dependency set D of the compiler-arguments assembler.
func (c *PackageCollection) NativeDependencies(module *TrackedPackage) []*buildcfg.CFGResult {
	reachable := map[string]bool{}

	var walk func(pkg *TrackedPackage)
	walk = func(pkg *TrackedPackage) {
		for _, dep := range pkg.Manifest.DependencyNames() {
			if reachable[dep] {
				continue
			}
			reachable[dep] = true
			if next, ok := c.Get(dep); ok {
				walk(next)
			}
		}
	}
	walk(module)

	var deps []*buildcfg.CFGResult
	for _, pkg := range c.NativePackages() {
		if pkg.Manifest.Name == module.Manifest.Name {
			continue
		}
		if reachable[pkg.Manifest.Name] {
			deps = append(deps, pkg.Instructions)
		}
	}
	return deps
}

// Equal reports ordering-sensitive equality of two collections by package
// name, folder and native/bundler flags; used to assert discovery
// idempotence.
func (c *PackageCollection) Equal(other *PackageCollection) bool {
	if c.Len() != other.Len() {
		return false
	}
	for i, name := range c.order {
		if other.order[i] != name {
			return false
		}
		a, b := c.packages[name], other.packages[name]
		if a.PackageFolder != b.PackageFolder || a.IsNative != b.IsNative || a.IsBundler != b.IsBundler {
			return false
		}
	}
	return true
}

func (c *PackageCollection) String() string {
	return fmt.Sprintf("PackageCollection(%d packages)", c.Len())
}
