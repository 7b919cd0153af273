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

// Package builder sequences the build phases: discovery, managed bundling,
// native compilation, bundle embedding, entry-point generation and the
// final link.
package builder

import (
	"context"
	"fmt"
	"path/filepath"

	"bennypowers.dev/yaje/bundler"
	"bennypowers.dev/yaje/discover"
	"bennypowers.dev/yaje/fs"
	"bennypowers.dev/yaje/imports"
	"bennypowers.dev/yaje/native"
	"bennypowers.dev/yaje/target"
	"bennypowers.dev/yaje/toolchain"
)

// Logger receives build progress and diagnostics.
type Logger interface {
	Info(format string, args ...any)
	Warning(format string, args ...any)
	Debug(format string, args ...any)
}

// Options configures one build.
type Options struct {
	Fsys       fs.FileSystem
	Runner     toolchain.Runner
	Log        Logger
	ProjectDir string
	Target     target.Triple
}

// Result reports what a successful build produced.
type Result struct {
	// Executable is the linked output path.
	Executable string
	// RootPackage is the name of the project's own package.
	RootPackage string
	// Collection is the discovered package set, in discovery order.
	Collection *discover.PackageCollection
}

// Build runs the whole pipeline. Every failure is fatal; there is no
// per-module recovery.
func Build(ctx context.Context, opts Options) (*Result, error) {
	projectDir, err := filepath.Abs(opts.ProjectDir)
	if err != nil {
		return nil, err
	}
	log := opts.Log

	// Phase: package discovery.
	discoverer := discover.NewDiscoverer(opts.Fsys, discoverLogger{log})
	rootName, collection, err := discoverer.Discover(projectDir, opts.Target)
	if err != nil {
		return nil, fmt.Errorf("discovering packages: %w", err)
	}
	infof(log, "discovered %d packages from %s", collection.Len(), rootName)

	out := native.NewOutputInformation(projectDir, opts.Target)
	if err := out.EnsureDirs(opts.Fsys); err != nil {
		return nil, fmt.Errorf("preparing output folders: %w", err)
	}

	rootPkg, ok := collection.Get(rootName)
	if !ok || rootPkg.Manifest.Main == "" {
		return nil, fmt.Errorf("root package %s has no main entry", rootName)
	}
	entry := filepath.Join(rootPkg.PackageFolder, filepath.FromSlash(rootPkg.Manifest.Main))

	for _, d := range imports.Preflight(opts.Fsys, entry, collection) {
		warnf(log, "%s:%d imports %q but package %s is not a dependency",
			d.File, d.Line, d.Specifier, d.Package)
	}

	// Phase: managed bundling.
	bundlerPkg, err := collection.Bundler()
	if err != nil {
		return nil, err
	}
	gateway, err := bundler.ForPackage(bundlerPkg, bundler.Options{
		Fsys:       opts.Fsys,
		Runner:     opts.Runner,
		GenFolder:  out.GenFolder,
		ProjectDir: projectDir,
	})
	if err != nil {
		return nil, err
	}
	if err := gateway.Init(ctx); err != nil {
		return nil, fmt.Errorf("initializing bundler %s: %w", bundlerPkg.Manifest.Name, err)
	}
	infof(log, "bundling %s with %s", entry, bundlerPkg.Manifest.Name)
	artifact, err := gateway.Bundle(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("bundling: %w", err)
	}
	bundleBytes, err := opts.Fsys.ReadFile(artifact)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}

	// Phase: native build.
	core, err := collection.Core()
	if err != nil {
		return nil, err
	}
	for _, tool := range []string{toolchain.Clang, toolchain.Ar} {
		if err := toolchain.Probe(ctx, opts.Runner, tool); err != nil {
			return nil, err
		}
	}

	compiler := native.NewCompiler(opts.Fsys, opts.Runner, nativeLogger{log})
	natives := collection.NativePackages()

	var archives []string
	var loadingFunctions []string
	for _, pkg := range natives {
		deps := collection.NativeDependencies(pkg)
		infof(log, "compiling native module %s", pkg.Manifest.Name)
		archive, err := compiler.CompileModule(ctx, pkg.Instructions, deps, out, opts.Target)
		if err != nil {
			return nil, err
		}
		archives = append(archives, archive)
		loadingFunctions = append(loadingFunctions, pkg.Instructions.LoadingFunctions...)
	}

	bundleObject, err := compiler.EmbedBundle(ctx, bundleBytes, native.BundleSymbolPrefix, opts.Target, nil, out)
	if err != nil {
		return nil, err
	}

	entryObject, err := compiler.BuildEntry(ctx, loadingFunctions, core.Instructions.IncludeDirs, opts.Target, out)
	if err != nil {
		return nil, err
	}

	linkInputs := native.LinkInputs{
		Archives:     archives,
		BundleObject: bundleObject,
		EntryObject:  entryObject,
	}
	for _, pkg := range natives {
		linkInputs.Modules = append(linkInputs.Modules, pkg.Instructions)
	}

	executable, err := compiler.Link(ctx, linkInputs, opts.Target, out)
	if err != nil {
		return nil, err
	}
	infof(log, "linked %s", executable)

	return &Result{
		Executable:  executable,
		RootPackage: rootName,
		Collection:  collection,
	}, nil
}

func infof(log Logger, format string, args ...any) {
	if log != nil {
		log.Info(format, args...)
	}
}

func warnf(log Logger, format string, args ...any) {
	if log != nil {
		log.Warning(format, args...)
	}
}

// discoverLogger adapts the build Logger to discovery's interface while
// tolerating a nil logger.
type discoverLogger struct{ log Logger }

func (l discoverLogger) Warning(format string, args ...any) { warnf(l.log, format, args...) }
func (l discoverLogger) Debug(format string, args ...any) {
	if l.log != nil {
		l.log.Debug(format, args...)
	}
}

// nativeLogger adapts the build Logger for the native compiler.
type nativeLogger struct{ log Logger }

func (l nativeLogger) Warning(format string, args ...any) { warnf(l.log, format, args...) }
func (l nativeLogger) Debug(format string, args ...any) {
	if l.log != nil {
		l.log.Debug(format, args...)
	}
}
