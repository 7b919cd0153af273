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
package bundler

import (
	"context"
	"fmt"
	"path/filepath"

	"bennypowers.dev/yaje/toolchain"
)

// NodeDriver bundles through a generated node driver script that calls the
// bundler package's own programmatic API. Vite, Rollup and Webpack share
// this shape; only the driver source differs.
type NodeDriver struct {
	opts Options
	// kind selects the driver template: "vite", "rollup" or "webpack".
	kind string
	// mainModule is the absolute path of the bundler package's main
	// module; the driver imports the tool from there.
	mainModule string
}

// NewNodeDriver creates a node-backed gateway for a bundler package.
func NewNodeDriver(kind, mainModule string, opts Options) *NodeDriver {
	return &NodeDriver{opts: opts, kind: kind, mainModule: mainModule}
}

// driverPath is where Init materializes the driver script. The .mjs
// extension keeps node in ES-module mode regardless of the project's own
// package type.
func (d *NodeDriver) driverPath() string {
	return filepath.Join(d.opts.GenFolder, "bundler-driver.mjs")
}

// Init implements Gateway: probes node and writes the driver script.
func (d *NodeDriver) Init(ctx context.Context) error {
	if err := toolchain.Probe(ctx, d.opts.Runner, toolchain.Node); err != nil {
		return err
	}

	source, err := d.driverSource()
	if err != nil {
		return err
	}
	if err := d.opts.Fsys.WriteFile(d.driverPath(), []byte(source), 0644); err != nil {
		return fmt.Errorf("writing bundler driver: %w", err)
	}
	return nil
}

// Bundle implements Gateway.
func (d *NodeDriver) Bundle(ctx context.Context, entry string) (string, error) {
	inv := toolchain.Invocation{
		Tool: toolchain.Node,
		Args: []string{d.driverPath(), entry, d.opts.OutFile()},
		Dir:  d.opts.ProjectDir,
	}
	if _, err := d.opts.Runner.Run(ctx, inv); err != nil {
		return "", fmt.Errorf("bundling with %s: %w", d.kind, err)
	}
	return checkArtifacts(d.opts.Fsys, d.opts.GenFolder)
}

// driverSource renders the per-tool driver. Every driver receives
// (entry, outFile) on argv and must bundle as a single minification-free
// ES module with dynamic imports inlined and sourcemaps off.
func (d *NodeDriver) driverSource() (string, error) {
	pkgURL := "file://" + filepath.ToSlash(d.mainModule)

	switch d.kind {
	case "vite":
		return fmt.Sprintf(`import { build } from %q;

const [entry, outFile] = process.argv.slice(2);
const { dirname, basename } = await import("node:path");

await build({
	logLevel: "silent",
	configFile: false,
	build: {
		outDir: dirname(outFile),
		emptyOutDir: false,
		minify: false,
		sourcemap: false,
		lib: {
			entry,
			formats: ["es"],
			fileName: () => basename(outFile),
		},
		rollupOptions: {
			output: { inlineDynamicImports: true },
		},
	},
});
`, pkgURL), nil

	case "rollup":
		return fmt.Sprintf(`import { rollup } from %q;

const [entry, outFile] = process.argv.slice(2);

const bundle = await rollup({ input: entry });
await bundle.write({
	file: outFile,
	format: "es",
	inlineDynamicImports: true,
	sourcemap: false,
});
await bundle.close();
`, pkgURL), nil

	case "webpack":
		return fmt.Sprintf(`import webpack from %q;

const [entry, outFile] = process.argv.slice(2);
const { dirname, basename } = await import("node:path");

await new Promise((resolve, reject) => {
	webpack({
		mode: "none",
		entry,
		devtool: false,
		plugins: [new webpack.optimize.LimitChunkCountPlugin({ maxChunks: 1 })],
		experiments: { outputModule: true },
		output: {
			path: dirname(outFile),
			filename: basename(outFile),
			module: true,
			library: { type: "module" },
		},
	}, (err, stats) => {
		if (err || stats.hasErrors()) {
			reject(err ?? new Error(stats.toString()));
		} else {
			resolve();
		}
	});
});
`, pkgURL), nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownBundler, d.kind)
}
