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

// Package discover walks a project's declared dependencies through
// node_modules resolution and collects every package, evaluating native
// build configurations along the way.
package discover

import (
	"errors"
	"fmt"
	"path/filepath"

	"bennypowers.dev/yaje/buildcfg"
	"bennypowers.dev/yaje/fs"
	"bennypowers.dev/yaje/packagejson"
	"bennypowers.dev/yaje/target"
)

var (
	// ErrMissingManifest is returned when a package folder has no
	// package.json.
	ErrMissingManifest = errors.New("missing package.json")

	// ErrDependencyNotFound is returned when no enclosing node_modules
	// folder supplies a declared dependency.
	ErrDependencyNotFound = errors.New("dependency not found in any enclosing node_modules")
)

// Logger receives diagnostics during discovery.
type Logger interface {
	Warning(format string, args ...any)
	Debug(format string, args ...any)
}

// Discoverer walks dependency trees. A single Discoverer may run several
// discoveries sharing one manifest cache.
type Discoverer struct {
	fsys      fs.ReadFS
	log       Logger
	manifests *packagejson.Cache
}

// NewDiscoverer creates a Discoverer. log may be nil.
func NewDiscoverer(fsys fs.ReadFS, log Logger) *Discoverer {
	return &Discoverer{
		fsys:      fsys,
		log:       log,
		manifests: packagejson.NewCache(),
	}
}

// Discover walks the dependency tree rooted at projectDir for the given
// target. It returns the root package's name and the populated collection.
//
// Each package is processed at most once; dependency cycles fall out as
// back-edges onto already-tracked names and are tolerated.
func (d *Discoverer) Discover(projectDir string, tgt target.Triple) (string, *PackageCollection, error) {
	root, err := filepath.Abs(projectDir)
	if err != nil {
		return "", nil, err
	}

	collection := NewPackageCollection()
	rootName, err := d.discoverDir(collection, root, root, tgt)
	if err != nil {
		return "", nil, err
	}

	pruneNativeParticipation(collection)
	return rootName, collection, nil
}

// discoverDir registers the package at dir and recurses into its
// dependencies. Returns the package name.
func (d *Discoverer) discoverDir(collection *PackageCollection, projectDir, dir string, tgt target.Triple) (string, error) {
	manifestPath := filepath.Join(dir, "package.json")
	manifest, err := d.manifests.Load(manifestPath, func() (*packagejson.PackageJSON, error) {
		if !d.fsys.Exists(manifestPath) {
			return nil, fmt.Errorf("%w: %s", ErrMissingManifest, dir)
		}
		return packagejson.ParseFile(d.fsys, manifestPath)
	})
	if err != nil {
		return "", err
	}

	if collection.Has(manifest.Name) {
		d.debugf("back-edge onto already-tracked package %s", manifest.Name)
		return manifest.Name, nil
	}

	// Register before evaluating or recursing so self- and mutual cycles
	// terminate on the Has check above.
	tracked := &TrackedPackage{
		Manifest:      manifest,
		PackageFolder: dir,
		IsBundler:     manifest.Bundler,
	}
	collection.Set(manifest.Name, tracked)

	if script := buildcfg.FindScript(d.fsys, dir); script != "" {
		d.debugf("evaluating build configuration %s", script)
		instructions, err := buildcfg.Evaluate(d.fsys, script, buildcfg.Seed{
			ProjectDir: projectDir,
			PackageDir: dir,
			ModuleName: manifest.Name,
			Target:     tgt,
		})
		if err != nil {
			return "", fmt.Errorf("configuring %s: %w", manifest.Name, err)
		}
		tracked.IsNative = true
		tracked.Instructions = instructions
	}

	for _, dep := range manifest.DependencyNames() {
		if collection.Has(dep) {
			d.debugf("back-edge from %s onto already-tracked package %s", manifest.Name, dep)
			continue
		}
		depDir, err := d.resolvePackageDir(dir, dep)
		if err != nil {
			return "", fmt.Errorf("resolving dependency %s of %s: %w", dep, manifest.Name, err)
		}
		if _, err := d.discoverDir(collection, projectDir, depDir, tgt); err != nil {
			return "", err
		}
	}

	return manifest.Name, nil
}

// resolvePackageDir finds node_modules/<name> by walking parent directories
// starting at fromDir, the way node's resolver does.
func (d *Discoverer) resolvePackageDir(fromDir, name string) (string, error) {
	dir := fromDir
	for {
		candidate := filepath.Join(dir, "node_modules", name)
		if info, err := d.fsys.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: %s (searched from %s)", ErrDependencyNotFound, name, fromDir)
		}
		dir = parent
	}
}

func (d *Discoverer) debugf(format string, args ...any) {
	if d.log != nil {
		d.log.Debug(format, args...)
	}
}

// pruneNativeParticipation demotes native packages that do not transitively
// depend on @yaje/core: without the core runtime their loading functions
// could never be called.
func pruneNativeParticipation(collection *PackageCollection) {
	reaches := make(map[string]bool)

	var reach func(name string) bool
	reach = func(name string) bool {
		if name == CorePackageName {
			return true
		}
		if done, ok := reaches[name]; ok {
			return done
		}
		reaches[name] = false // break cycles conservatively
		pkg, ok := collection.Get(name)
		if !ok {
			return false
		}
		for _, dep := range pkg.Manifest.DependencyNames() {
			if reach(dep) {
				reaches[name] = true
				return true
			}
		}
		return false
	}

	for _, name := range collection.Names() {
		pkg, _ := collection.Get(name)
		if pkg.IsNative && !reach(name) {
			pkg.IsNative = false
			pkg.Instructions = nil
		}
	}
}
