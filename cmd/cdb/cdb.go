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

// Package cdb provides the compilation-database command for yaje.
package cdb

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/yaje/cdb"
	"bennypowers.dev/yaje/fs"
	"bennypowers.dev/yaje/internal/console"
	"bennypowers.dev/yaje/target"
)

// Cmd is the cdb cobra command that writes compile_commands.json.
var Cmd = &cobra.Command{
	Use:   "cdb",
	Short: "Write a clang compilation database for native modules",
	RunE:  run,
}

func init() {
	Cmd.Flags().StringP("target", "t", "", "Target triple (default: host)")
	Cmd.Flags().StringP("output", "o", "compile_commands.json", "Output file")

	_ = viper.BindPFlag("cdb.target", Cmd.Flags().Lookup("target"))
	_ = viper.BindPFlag("cdb.output", Cmd.Flags().Lookup("output"))
}

func run(cmd *cobra.Command, args []string) error {
	tgt := target.Host()
	if spec := viper.GetString("cdb.target"); spec != "" {
		parsed, err := target.Parse(spec)
		if err != nil {
			return err
		}
		tgt = parsed
	}

	osfs := fs.NewOSFileSystem()
	projectDir := viper.GetString("project")

	entries, err := cdb.Generate(osfs, console.New(viper.GetBool("verbose")), projectDir, tgt)
	if err != nil {
		return err
	}

	output := viper.GetString("cdb.output")
	if !filepath.IsAbs(output) {
		output = filepath.Join(projectDir, output)
	}
	return cdb.Write(osfs, entries, output)
}
