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

// Command pancakevc translates Pancake programs into Viper for verification.
//
// Usage:
//
//	pancakevc translate -o out prog.pnk             # writes out/prog.vpr
//	pancakevc translate --allow-undefined-shared -o - prog.pnk
//	pancakevc accessors prog.pnk                    # accessors the program needs
//	pancakevc dump prog.pnk                         # parsed AST
//
// Options are read from pancakevc.yaml in the working directory when present,
// or from the file named by --config. Flags override the file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &flagValues{}
	root := &cobra.Command{
		Use:           "pancakevc",
		Short:         "Translate Pancake programs into Viper",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags.register(root.PersistentFlags())
	root.AddCommand(
		newTranslateCmd(flags),
		newAccessorsCmd(flags),
		newDumpCmd(),
	)
	return root
}
