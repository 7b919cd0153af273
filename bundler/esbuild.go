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
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// ESBuild bundles in-process through esbuild's Go API. It is the backend
// behind @yaje/esbuild and needs no external tools.
type ESBuild struct {
	opts Options
}

// NewESBuild creates the esbuild-backed gateway.
func NewESBuild(opts Options) *ESBuild {
	return &ESBuild{opts: opts}
}

// Init implements Gateway. esbuild has nothing to prepare.
func (b *ESBuild) Init(ctx context.Context) error {
	return nil
}

// Bundle implements Gateway.
func (b *ESBuild) Bundle(ctx context.Context, entry string) (string, error) {
	result := api.Build(api.BuildOptions{
		EntryPoints:   []string{entry},
		AbsWorkingDir: b.opts.ProjectDir,
		Bundle:        true,
		Format:        api.FormatESModule,
		Platform:      api.PlatformNeutral,
		// No Splitting: dynamic imports inline into the single chunk.
		Sourcemap:         api.SourceMapNone,
		MinifyWhitespace:  false,
		MinifyIdentifiers: false,
		MinifySyntax:      false,
		Outfile:           b.opts.OutFile(),
		Write:             false,
	})

	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, msg := range result.Errors {
			msgs[i] = msg.Text
		}
		return "", fmt.Errorf("esbuild: %s", strings.Join(msgs, "; "))
	}

	// Write through the build's filesystem rather than letting esbuild
	// touch disk directly.
	for _, file := range result.OutputFiles {
		if err := b.opts.Fsys.WriteFile(file.Path, file.Contents, 0644); err != nil {
			return "", fmt.Errorf("writing bundle: %w", err)
		}
	}

	return checkArtifacts(b.opts.Fsys, b.opts.GenFolder)
}
