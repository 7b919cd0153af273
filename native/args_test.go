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
	"slices"
	"testing"

	"bennypowers.dev/yaje/buildcfg"
	"bennypowers.dev/yaje/native"
	"bennypowers.dev/yaje/target"
)

var linuxX64 = target.Triple{Arch: "x86_64", Vendor: "unknown", Platform: "linux", ABI: "gnu"}

func TestArgsOrdering(t *testing.T) {
	module := &buildcfg.CFGResult{
		Name:        "sqlite",
		IncludeDirs: []string{"/m/include", "/m/vendor"},
		DefineMacros: []buildcfg.Macro{
			{Name: "SQLITE_OMIT_LOAD_EXTENSION", Kind: buildcfg.MacroFlag},
			{Name: "SQLITE_TEMP_STORE", Kind: buildcfg.MacroNumber, Num: 3},
		},
		LibraryLookup: []string{"/m/lib"},
		CFlags:        []string{"-fno-strict-aliasing"},
	}
	dep := &buildcfg.CFGResult{
		Name:        "@yaje/core",
		IncludeDirs: []string{"/core/include"},
		DefineMacros: []buildcfg.Macro{
			{Name: "YAJE_VERSION", Kind: buildcfg.MacroString, Str: "1.0"},
		},
		// A dependency's lookup dirs must not leak into the module args.
		LibraryLookup: []string{"/core/lib"},
	}

	base := []string{"-g", "-c"}
	got := native.Args(module, []*buildcfg.CFGResult{dep}, base)

	want := []string{
		"-I", "/m/include",
		"-I", "/m/vendor",
		"-D", "SQLITE_OMIT_LOAD_EXTENSION",
		"-D", "SQLITE_TEMP_STORE=3",
		"-I", "/core/include",
		"-D", `YAJE_VERSION="1.0"`,
		"-L", "/m/lib",
		"-fno-strict-aliasing",
		"-g", "-c",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Args =\n%v\nwant\n%v", got, want)
	}
}

func TestBaseCFlags(t *testing.T) {
	flags := native.BaseCFlags(linuxX64)

	for _, required := range []string{"-std=gnu11", "-Wall", "-Wextra", "-Wformat=2", "-fwrapv", "-funsigned-char", "-g", "-c"} {
		if !slices.Contains(flags, required) {
			t.Errorf("BaseCFlags missing %s", required)
		}
	}

	i := slices.Index(flags, "-target")
	if i < 0 || i+1 >= len(flags) || flags[i+1] != "x86_64-unknown-linux-gnu" {
		t.Errorf("BaseCFlags target = %v", flags)
	}
}

func TestScanArgs(t *testing.T) {
	args := []string{
		"-I", "/inc",
		"-D", "NDEBUG",
		"-L", "/lib",
		"-fwrapv",
		"-target", "x86_64-unknown-linux-gnu",
		"-c",
	}
	want := []string{"-I", "/inc", "-D", "NDEBUG", "-target", "x86_64-unknown-linux-gnu"}
	if got := native.ScanArgs(args); !slices.Equal(got, want) {
		t.Errorf("ScanArgs = %v, want %v", got, want)
	}
}
