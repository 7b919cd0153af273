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
package native_test

import (
	"context"
	"slices"
	"strings"
	"testing"

	"bennypowers.dev/yaje/buildcfg"
	"bennypowers.dev/yaje/internal/mapfs"
	"bennypowers.dev/yaje/native"
	"bennypowers.dev/yaje/toolchain"
)

// fakeRunner scripts tool invocations against the in-memory filesystem and
// records every spawn so tests can assert cache behavior.
type fakeRunner struct {
	fsys        *mapfs.MapFileSystem
	invocations []toolchain.Invocation
	// deps maps a source path to its scripted -MM output.
	deps map[string]string
}

func newFakeRunner(fsys *mapfs.MapFileSystem) *fakeRunner {
	return &fakeRunner{fsys: fsys, deps: make(map[string]string)}
}

func (r *fakeRunner) Run(_ context.Context, inv toolchain.Invocation) ([]byte, error) {
	r.invocations = append(r.invocations, inv)

	switch inv.Tool {
	case toolchain.Clang:
		if slices.Contains(inv.Args, "-MM") {
			source := inv.Args[len(inv.Args)-1]
			out, ok := r.deps[source]
			if !ok {
				return nil, &toolchain.ExitError{Invocation: inv, Stderr: "fatal error: scan refused"}
			}
			return []byte(out), nil
		}
		// Compile, embed or link: materialize whatever -o names.
		if i := slices.Index(inv.Args, "-o"); i >= 0 && i+1 < len(inv.Args) {
			if err := r.fsys.WriteFile(inv.Args[i+1], []byte("ELF"), 0755); err != nil {
				return nil, err
			}
		}
		return nil, nil
	case toolchain.Ar:
		if err := r.fsys.WriteFile(inv.Args[1], []byte("!<arch>"), 0644); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return nil, nil
}

// compiles returns the object-producing clang invocations (not scans, not
// the stdin embed, not links).
func (r *fakeRunner) compiles() []toolchain.Invocation {
	var out []toolchain.Invocation
	for _, inv := range r.invocations {
		if inv.Tool != toolchain.Clang || inv.Stdin != nil {
			continue
		}
		if slices.Contains(inv.Args, "-MM") || !slices.Contains(inv.Args, "-c") {
			continue
		}
		out = append(out, inv)
	}
	return out
}

func moduleFixture() (*mapfs.MapFileSystem, *fakeRunner, *buildcfg.CFGResult, native.OutputInformation) {
	mfs := mapfs.New()
	mfs.AddFile("/proj/node_modules/db/src/db.c", "#include \"db.h\"\nint open1;\n", 0644)
	mfs.AddFile("/proj/node_modules/db/src/util/db.c", "int open2;\n", 0644)
	mfs.AddFile("/proj/node_modules/db/include/db.h", "#pragma once\n", 0644)

	runner := newFakeRunner(mfs)
	runner.deps["/proj/node_modules/db/src/db.c"] = "db.o: db.c ../include/db.h\n"
	runner.deps["/proj/node_modules/db/src/util/db.c"] = "db.o: db.c\n"

	module := &buildcfg.CFGResult{
		Name: "db",
		Sources: []string{
			"/proj/node_modules/db/src/db.c",
			"/proj/node_modules/db/src/util/db.c",
		},
		IncludeDirs: []string{"/proj/node_modules/db/include"},
	}

	out := native.NewOutputInformation("/proj", linuxX64)
	return mfs, runner, module, out
}

func TestCompileModule(t *testing.T) {
	mfs, runner, module, out := moduleFixture()
	if err := out.EnsureDirs(mfs); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	compiler := native.NewCompiler(mfs, runner, nil)
	archive, err := compiler.CompileModule(t.Context(), module, nil, out, linuxX64)
	if err != nil {
		t.Fatalf("CompileModule failed: %v", err)
	}

	if got := len(runner.compiles()); got != 2 {
		t.Errorf("compile invocations = %d, want 2", got)
	}
	if !mfs.Exists(archive) {
		t.Errorf("archive %s was not created", archive)
	}
	if !strings.HasPrefix(archive, "/proj/.yaje/x86_64-unknown-linux-gnu/modules/lib_") || !strings.HasSuffix(archive, ".a") {
		t.Errorf("unexpected archive path %s", archive)
	}

	// Duplicate basenames land in distinct objects.
	objDir := "/proj/.yaje/x86_64-unknown-linux-gnu/obj/db"
	if !mfs.Exists(objDir+"/db.o") || !mfs.Exists(objDir+"/db1.o") {
		t.Errorf("expected db.o and db1.o in %s", objDir)
	}

	cacheDir := "/proj/.yaje/x86_64-unknown-linux-gnu/cache/db"
	if !mfs.Exists(cacheDir+"/db.hash") || !mfs.Exists(cacheDir+"/db1.hash") {
		t.Errorf("expected hash sidecars in %s", cacheDir)
	}
}

func TestCompileModuleCacheHit(t *testing.T) {
	mfs, runner, module, out := moduleFixture()
	if err := out.EnsureDirs(mfs); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	compiler := native.NewCompiler(mfs, runner, nil)
	if _, err := compiler.CompileModule(t.Context(), module, nil, out, linuxX64); err != nil {
		t.Fatalf("first CompileModule failed: %v", err)
	}
	first := len(runner.compiles())

	if _, err := compiler.CompileModule(t.Context(), module, nil, out, linuxX64); err != nil {
		t.Fatalf("second CompileModule failed: %v", err)
	}

	if got := len(runner.compiles()); got != first {
		t.Errorf("second run compiled %d units, want 0", got-first)
	}
}

func TestCompileModuleHeaderInvalidation(t *testing.T) {
	mfs, runner, module, out := moduleFixture()
	if err := out.EnsureDirs(mfs); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	compiler := native.NewCompiler(mfs, runner, nil)
	if _, err := compiler.CompileModule(t.Context(), module, nil, out, linuxX64); err != nil {
		t.Fatalf("first CompileModule failed: %v", err)
	}
	first := len(runner.compiles())

	// Only src/db.c includes db.h; a header edit must recompile exactly it.
	mfs.AddFile("/proj/node_modules/db/include/db.h", "#pragma once\n#define DB_V2\n", 0644)

	if _, err := compiler.CompileModule(t.Context(), module, nil, out, linuxX64); err != nil {
		t.Fatalf("second CompileModule failed: %v", err)
	}

	recompiled := runner.compiles()[first:]
	if len(recompiled) != 1 {
		t.Fatalf("recompiled %d units, want 1", len(recompiled))
	}
	if args := recompiled[0].Args; !slices.Contains(args, "/proj/node_modules/db/src/db.c") {
		t.Errorf("recompiled wrong unit: %v", args)
	}
}

func TestCompileModuleArgsInvalidation(t *testing.T) {
	mfs, runner, module, out := moduleFixture()
	if err := out.EnsureDirs(mfs); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	compiler := native.NewCompiler(mfs, runner, nil)
	if _, err := compiler.CompileModule(t.Context(), module, nil, out, linuxX64); err != nil {
		t.Fatalf("first CompileModule failed: %v", err)
	}
	first := len(runner.compiles())

	// A new macro changes the argument vector for the whole module.
	module.DefineMacros = append(module.DefineMacros, buildcfg.Macro{Name: "DEBUG", Kind: buildcfg.MacroFlag})

	if _, err := compiler.CompileModule(t.Context(), module, nil, out, linuxX64); err != nil {
		t.Fatalf("second CompileModule failed: %v", err)
	}
	if recompiled := len(runner.compiles()) - first; recompiled != 2 {
		t.Errorf("recompiled %d units after args change, want 2", recompiled)
	}
}

func TestCompileModuleEmptySources(t *testing.T) {
	mfs := mapfs.New()
	runner := newFakeRunner(mfs)
	out := native.NewOutputInformation("/proj", linuxX64)
	if err := out.EnsureDirs(mfs); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	compiler := native.NewCompiler(mfs, runner, nil)
	archive, err := compiler.CompileModule(t.Context(), &buildcfg.CFGResult{Name: "empty"}, nil, out, linuxX64)
	if err != nil {
		t.Fatalf("CompileModule failed: %v", err)
	}
	if len(runner.compiles()) != 0 {
		t.Error("empty module should compile nothing")
	}
	if !mfs.Exists(archive) {
		t.Error("empty module should still produce an archive")
	}
}

func TestCompileModuleFailureSurfacesStderr(t *testing.T) {
	mfs, _, module, out := moduleFixture()
	if err := out.EnsureDirs(mfs); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	failing := toolchain.RunnerFunc(func(_ context.Context, inv toolchain.Invocation) ([]byte, error) {
		if slices.Contains(inv.Args, "-MM") {
			return []byte("db.o: db.c\n"), nil
		}
		return nil, &toolchain.ExitError{Invocation: inv, Stderr: "db.c:1:1: error: expected identifier"}
	})

	compiler := native.NewCompiler(mfs, failing, nil)
	_, err := compiler.CompileModule(t.Context(), module, nil, out, linuxX64)
	if err == nil || !strings.Contains(err.Error(), "expected identifier") {
		t.Errorf("expected stderr in error, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "command: clang") {
		t.Errorf("expected reconstructed command line in error, got %v", err)
	}
}

func TestArchiveName(t *testing.T) {
	a := native.ArchiveName("/proj/.yaje/t/obj/db")
	b := native.ArchiveName("/proj/.yaje/t/obj/cache")

	if a == b {
		t.Error("different object dirs must produce different archive names")
	}
	if a != native.ArchiveName("/proj/.yaje/t/obj/db") {
		t.Error("archive name must be stable across runs")
	}
	if !strings.HasPrefix(a, "lib_") || !strings.HasSuffix(a, ".a") {
		t.Errorf("archive name shape: %s", a)
	}
	if digest := strings.TrimSuffix(strings.TrimPrefix(a, "lib_"), ".a"); len(digest) != 12 {
		t.Errorf("digest length = %d, want 12", len(digest))
	}
}
