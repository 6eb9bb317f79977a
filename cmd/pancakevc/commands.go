// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/ajroetker/pancakevc/pancake"
	"github.com/ajroetker/pancakevc/translate"
)

func newTranslateCmd(flags *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "translate FILE...",
		Short: "Translate Pancake files into Viper",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.config(cmd.Flags())
			if err != nil {
				return err
			}
			g := &Generator{
				Inputs: args,
				Config: cfg,
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			}
			return g.Run(cmd.Context())
		},
	}
}

func newAccessorsCmd(flags *flagValues) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "accessors FILE",
		Short: "List the shared memory accessors a program needs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.config(cmd.Flags())
			if err != nil {
				return err
			}
			prog, err := pancake.ParseFile(args[0])
			if err != nil {
				return err
			}
			d := &translate.Driver{Options: cfg.Options}
			out, err := d.Translate(prog)
			if err != nil {
				return err
			}
			names := out.Accessors
			if all {
				names = lo.Uniq(append(out.Registry.AccessorNames(), names...))
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Also list accessors of regions the program never uses")
	return cmd
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE",
		Short: "Print the parsed program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := pancake.ParseFile(args[0])
			if err != nil {
				return err
			}
			cfg := spew.ConfigState{
				Indent:                  "  ",
				DisablePointerAddresses: true,
				DisableCapacities:       true,
				SortKeys:                true,
			}
			cfg.Fdump(cmd.OutOrStdout(), prog)
			return nil
		},
	}
}
