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
package discover_test

import (
	"errors"
	"slices"
	"testing"

	"bennypowers.dev/yaje/discover"
	"bennypowers.dev/yaje/internal/mapfs"
	"bennypowers.dev/yaje/target"
)

var linuxX64 = target.Triple{Arch: "x86_64", Vendor: "unknown", Platform: "linux", ABI: "gnu"}

// projectFixture builds an app depending on @yaje/core (native), @yaje/vite
// (bundler) and left-pad (plain managed code).
func projectFixture() *mapfs.MapFileSystem {
	mfs := mapfs.New()
	mfs.AddFile("/proj/package.json", `{
		"name": "app",
		"main": "./src/index.js",
		"dependencies": {"@yaje/core": "^1", "@yaje/vite": "^1", "left-pad": "~1.3.0"}
	}`, 0644)
	mfs.AddFile("/proj/src/index.js", "export {};", 0644)

	mfs.AddFile("/proj/node_modules/@yaje/core/package.json", `{
		"name": "@yaje/core", "main": "./lib/index.js"
	}`, 0644)
	mfs.AddFile("/proj/node_modules/@yaje/core/yaje.build.js", `
		const cfg = config();
		cfg.addSource("src");
		cfg.addIncludeDir("include");
		cfg.setLoadingFunctions("yaje_core_load_std");
		export default cfg;
	`, 0644)
	mfs.AddFile("/proj/node_modules/@yaje/core/src/runtime.c", "int r;", 0644)
	mfs.AddFile("/proj/node_modules/@yaje/core/include/yaje.h", "#pragma once", 0644)

	mfs.AddFile("/proj/node_modules/@yaje/vite/package.json", `{
		"name": "@yaje/vite", "main": "./index.js", "bundler": true
	}`, 0644)

	mfs.AddFile("/proj/node_modules/left-pad/package.json", `{
		"name": "left-pad", "main": "./index.js"
	}`, 0644)

	return mfs
}

func TestDiscover(t *testing.T) {
	mfs := projectFixture()
	d := discover.NewDiscoverer(mfs, nil)

	rootName, collection, err := d.Discover("/proj", linuxX64)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if rootName != "app" {
		t.Errorf("root name = %q", rootName)
	}

	want := []string{"app", "@yaje/core", "@yaje/vite", "left-pad"}
	if got := collection.Names(); !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	core, err := collection.Core()
	if err != nil {
		t.Fatalf("Core() failed: %v", err)
	}
	if !core.IsNative || core.Instructions == nil {
		t.Error("core should be native with instructions")
	}
	if got := core.Instructions.LoadingFunctions; !slices.Equal(got, []string{"yaje_core_load_std"}) {
		t.Errorf("core loading functions = %v", got)
	}

	bundler, err := collection.Bundler()
	if err != nil {
		t.Fatalf("Bundler() failed: %v", err)
	}
	if bundler.Manifest.Name != "@yaje/vite" {
		t.Errorf("bundler = %q", bundler.Manifest.Name)
	}

	pad, _ := collection.Get("left-pad")
	if pad.IsNative || pad.IsBundler {
		t.Error("left-pad should be neither native nor a bundler")
	}
}

func TestDiscoverIdempotence(t *testing.T) {
	mfs := projectFixture()
	d := discover.NewDiscoverer(mfs, nil)

	_, first, err := d.Discover("/proj", linuxX64)
	if err != nil {
		t.Fatalf("first Discover failed: %v", err)
	}
	_, second, err := d.Discover("/proj", linuxX64)
	if err != nil {
		t.Fatalf("second Discover failed: %v", err)
	}
	if !first.Equal(second) {
		t.Error("two discoveries of the same tree differ")
	}
}

func TestDiscoverNestedNodeModules(t *testing.T) {
	mfs := projectFixture()
	// left-pad depends on right-pad, which is only installed at the root.
	mfs.AddFile("/proj/node_modules/left-pad/package.json", `{
		"name": "left-pad", "main": "./index.js", "dependencies": {"right-pad": "^1"}
	}`, 0644)
	mfs.AddFile("/proj/node_modules/right-pad/package.json", `{
		"name": "right-pad", "main": "./index.js"
	}`, 0644)

	d := discover.NewDiscoverer(mfs, nil)
	_, collection, err := d.Discover("/proj", linuxX64)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if !collection.Has("right-pad") {
		t.Error("right-pad should be resolved through the parent node_modules")
	}
}

func TestDiscoverCycleTolerance(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/proj/package.json", `{"name": "a", "dependencies": {"b": "^1"}}`, 0644)
	mfs.AddFile("/proj/node_modules/b/package.json", `{"name": "b", "dependencies": {"a": "^1"}}`, 0644)
	mfs.AddFile("/proj/node_modules/a/package.json", `{"name": "a"}`, 0644)

	d := discover.NewDiscoverer(mfs, nil)
	_, collection, err := d.Discover("/proj", linuxX64)
	if err != nil {
		t.Fatalf("Discover failed on cycle: %v", err)
	}
	if got := collection.Names(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestDiscoverUnresolvableDependency(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/proj/package.json", `{"name": "app", "dependencies": {"ghost": "^1"}}`, 0644)

	d := discover.NewDiscoverer(mfs, nil)
	_, _, err := d.Discover("/proj", linuxX64)
	if !errors.Is(err, discover.ErrDependencyNotFound) {
		t.Errorf("expected ErrDependencyNotFound, got %v", err)
	}
}

func TestDiscoverMissingManifest(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddDir("/proj", 0755)

	d := discover.NewDiscoverer(mfs, nil)
	_, _, err := d.Discover("/proj", linuxX64)
	if !errors.Is(err, discover.ErrMissingManifest) {
		t.Errorf("expected ErrMissingManifest, got %v", err)
	}
}

func TestNativePruningWithoutCoreDependency(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/proj/package.json", `{"name": "app", "dependencies": {"rogue": "^1"}}`, 0644)
	// rogue ships a build script but never depends on @yaje/core.
	mfs.AddFile("/proj/node_modules/rogue/package.json", `{"name": "rogue"}`, 0644)
	mfs.AddFile("/proj/node_modules/rogue/yaje.build.js", `
		const cfg = config();
		cfg.addSource("src");
		export default cfg;
	`, 0644)
	mfs.AddFile("/proj/node_modules/rogue/src/rogue.c", "int q;", 0644)

	d := discover.NewDiscoverer(mfs, nil)
	_, collection, err := d.Discover("/proj", linuxX64)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	rogue, _ := collection.Get("rogue")
	if rogue.IsNative {
		t.Error("rogue should be pruned from native compilation without a core dependency")
	}
	if _, err := collection.Core(); !errors.Is(err, discover.ErrCoreNotFound) {
		t.Errorf("expected ErrCoreNotFound, got %v", err)
	}
}

func TestNativeDependencies(t *testing.T) {
	mfs := projectFixture()
	mfs.AddFile("/proj/package.json", `{
		"name": "app",
		"main": "./src/index.js",
		"dependencies": {"@yaje/core": "^1", "sqlite": "^1"}
	}`, 0644)
	mfs.AddFile("/proj/node_modules/sqlite/package.json", `{
		"name": "sqlite", "dependencies": {"@yaje/core": "^1"}
	}`, 0644)
	mfs.AddFile("/proj/node_modules/sqlite/yaje.build.js", `
		const cfg = config();
		cfg.addSource("src");
		export default cfg;
	`, 0644)
	mfs.AddFile("/proj/node_modules/sqlite/src/vfs.c", "int v;", 0644)

	d := discover.NewDiscoverer(mfs, nil)
	_, collection, err := d.Discover("/proj", linuxX64)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	sqlite, _ := collection.Get("sqlite")
	deps := collection.NativeDependencies(sqlite)
	if len(deps) != 1 || deps[0].Name != "@yaje/core" {
		t.Errorf("sqlite deps = %v", deps)
	}

	core, _ := collection.Get("@yaje/core")
	if got := collection.NativeDependencies(core); len(got) != 0 {
		t.Errorf("core deps = %v, want none", got)
	}
}

func TestNativePruningKeepsTransitiveCoreDependents(t *testing.T) {
	mfs := projectFixture()
	// sqlite depends on core only transitively, through glue.
	mfs.AddFile("/proj/package.json", `{
		"name": "app",
		"main": "./src/index.js",
		"dependencies": {"@yaje/core": "^1", "sqlite": "^1"}
	}`, 0644)
	mfs.AddFile("/proj/node_modules/sqlite/package.json", `{
		"name": "sqlite", "dependencies": {"glue": "^1"}
	}`, 0644)
	mfs.AddFile("/proj/node_modules/sqlite/yaje.build.js", `
		const cfg = config();
		cfg.addSource("src");
		cfg.setLoadingFunctions("yaje_sqlite_load");
		export default cfg;
	`, 0644)
	mfs.AddFile("/proj/node_modules/sqlite/src/vfs.c", "int v;", 0644)
	mfs.AddFile("/proj/node_modules/glue/package.json", `{
		"name": "glue", "dependencies": {"@yaje/core": "^1"}
	}`, 0644)

	d := discover.NewDiscoverer(mfs, nil)
	_, collection, err := d.Discover("/proj", linuxX64)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	sqlite, _ := collection.Get("sqlite")
	if !sqlite.IsNative {
		t.Error("sqlite reaches core through glue and should stay native")
	}
}
