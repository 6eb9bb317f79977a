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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/pancakevc/internal/workerpool"
	"github.com/ajroetker/pancakevc/pancake"
	"github.com/ajroetker/pancakevc/shared"
	"github.com/ajroetker/pancakevc/translate"
	"github.com/ajroetker/pancakevc/viper"
)

// Generator translates a set of input files.
type Generator struct {
	Inputs []string // Pancake source files
	Config *Config
	Stdout io.Writer // Receives the translation when Config.Output is "-"
	Stderr io.Writer // Receives warnings and progress
}

// Run translates every input concurrently and stops at the first file that
// fails.
func (g *Generator) Run(ctx context.Context) error {
	pool := workerpool.New(g.Config.Workers)
	defer pool.Close()
	warner := &shared.WriterWarner{W: g.Stderr}

	var stdoutMu sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)
	for _, input := range g.Inputs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, failed, err := g.translateFile(input, pool, warner)
			if err != nil {
				return errors.Wrap(err, input)
			}
			if g.Config.Output == "-" {
				stdoutMu.Lock()
				_, err = io.WriteString(g.Stdout, text)
				stdoutMu.Unlock()
			} else {
				err = g.writeOutput(input, text)
			}
			if err != nil {
				return err
			}
			if failed > 0 {
				return errors.Errorf("%s: %d function(s) failed to translate", input, failed)
			}
			return nil
		})
	}
	return eg.Wait()
}

// translateFile returns the Viper text of one input and the number of
// functions that failed under keep_going.
func (g *Generator) translateFile(input string, pool *workerpool.Pool, warner shared.Warner) (string, int, error) {
	prog, err := pancake.ParseFile(input)
	if err != nil {
		return "", 0, err
	}
	if g.Config.Verbose {
		for _, s := range prog.Shared {
			fmt.Fprintf(g.Stderr, "Registering shared memory functions (%s) for `%s`\n", s.Perm, s.Name)
		}
	}
	d := &translate.Driver{
		Options:   g.Config.Options,
		Pool:      pool,
		Warner:    warner,
		KeepGoing: g.Config.KeepGoing,
	}
	out, err := d.Translate(prog)
	if err != nil {
		return "", 0, err
	}
	for _, fe := range out.Errors {
		warner.Warnf("%v", fe)
	}
	if g.Config.Verbose {
		fmt.Fprintf(g.Stderr, "%s: translated %d of %d functions, %d accessors\n",
			input, len(out.Methods), len(prog.Funcs), len(out.Accessors))
	}
	return Render(out), len(out.Errors), nil
}

// Render produces the complete Viper program: prelude, then methods.
func Render(out *translate.Output) string {
	var sb strings.Builder
	sb.WriteString(translate.Prelude(out.Registry, out.Accessors))
	if len(out.Methods) > 0 {
		sb.WriteString("\n")
		sb.WriteString(viper.NewPrinter().Program(out.Program()))
	}
	return sb.String()
}

func (g *Generator) writeOutput(input, text string) error {
	if err := os.MkdirAll(g.Config.Output, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	name := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + ".vpr"
	path := filepath.Join(g.Config.Output, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if g.Config.Verbose {
		fmt.Fprintf(g.Stderr, "Wrote %s\n", path)
	}
	return nil
}
