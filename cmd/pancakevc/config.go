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
	"bytes"
	"io"
	"io/fs"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ajroetker/pancakevc/translate"
)

const defaultConfigFile = "pancakevc.yaml"

// Config is the configuration of one run: translation options plus the
// settings of the command line driver.
type Config struct {
	translate.Options `yaml:",inline"`

	// Workers is the number of functions translated in parallel; 0 uses
	// GOMAXPROCS.
	Workers int `yaml:"workers"`

	// KeepGoing translates the remaining functions after a failure.
	KeepGoing bool `yaml:"keep_going"`

	// Output is the output directory, or "-" for standard output.
	Output string `yaml:"output"`

	// Verbose prints progress to standard error.
	Verbose bool `yaml:"verbose"`
}

// LoadConfig reads the YAML configuration at path. A missing file is only
// an error when required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := &Config{Output: "."}
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, errors.Wrap(err, "reading config")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// flagValues holds the command line flags shared by all commands.
type flagValues struct {
	configPath     string
	ignoreWarnings bool
	allowUndefined bool
	noMangle       bool
	assertAligned  bool
	workers        int
	keepGoing      bool
	output         string
	verbose        bool
}

func (f *flagValues) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.configPath, "config", defaultConfigFile, "YAML configuration file")
	flags.BoolVar(&f.ignoreWarnings, "ignore-warnings", false, "Suppress duplicate shared address warnings")
	flags.BoolVar(&f.allowUndefined, "allow-undefined-shared", false, "Dispatch accesses outside declared shared regions to generic accessors")
	flags.BoolVar(&f.noMangle, "no-mangle", false, "Keep source variable names (debugging only)")
	flags.BoolVar(&f.assertAligned, "assert-aligned-accesses", false, "Assert alignment before memory accesses")
	flags.IntVarP(&f.workers, "workers", "j", 0, "Functions translated in parallel (default GOMAXPROCS)")
	flags.BoolVarP(&f.keepGoing, "keep-going", "k", false, "Continue with other functions after a failure")
	flags.StringVarP(&f.output, "output", "o", ".", `Output directory, or "-" for standard output`)
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Print progress")
}

// config loads the configuration file and applies the flags set on the
// command line over it.
func (f *flagValues) config(flags *pflag.FlagSet) (*Config, error) {
	cfg, err := LoadConfig(f.configPath, flags.Changed("config"))
	if err != nil {
		return nil, err
	}
	f.apply(flags, cfg)
	return cfg, nil
}

func (f *flagValues) apply(flags *pflag.FlagSet, cfg *Config) {
	set := func(name string, dst *bool, v bool) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	set("ignore-warnings", &cfg.IgnoreWarnings, f.ignoreWarnings)
	set("allow-undefined-shared", &cfg.AllowUndefinedShared, f.allowUndefined)
	set("no-mangle", &cfg.NoMangle, f.noMangle)
	set("assert-aligned-accesses", &cfg.AssertAlignedAccesses, f.assertAligned)
	set("keep-going", &cfg.KeepGoing, f.keepGoing)
	set("verbose", &cfg.Verbose, f.verbose)
	if flags.Changed("workers") {
		cfg.Workers = f.workers
	}
	if flags.Changed("output") {
		cfg.Output = f.output
	}
}
