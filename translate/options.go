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

package translate

// Options configures translation. They are read-only once translation starts.
type Options struct {
	// IgnoreWarnings suppresses duplicate shared-address diagnostics.
	IgnoreWarnings bool `yaml:"ignore_warnings"`

	// AllowUndefinedShared dispatches shared accesses outside every declared
	// region to the generic width-tagged accessor instead of failing.
	AllowUndefinedShared bool `yaml:"allow_undefined_shared"`

	// NoMangle keeps source variable names unchanged. Debug aid only: nested
	// declarations of the same name then collide.
	NoMangle bool `yaml:"no_mangle"`

	// AssertAlignedAccesses emits an alignment assertion before every word
	// and shared memory access.
	AssertAlignedAccesses bool `yaml:"assert_aligned_accesses"`
}

// Option configures Options.
type Option func(*Options)

// WithIgnoreWarnings sets Options.IgnoreWarnings.
func WithIgnoreWarnings(v bool) Option {
	return func(o *Options) {
		o.IgnoreWarnings = v
	}
}

// WithAllowUndefinedShared sets Options.AllowUndefinedShared.
func WithAllowUndefinedShared(v bool) Option {
	return func(o *Options) {
		o.AllowUndefinedShared = v
	}
}

// WithNoMangle sets Options.NoMangle.
func WithNoMangle(v bool) Option {
	return func(o *Options) {
		o.NoMangle = v
	}
}

// WithAssertAlignedAccesses sets Options.AssertAlignedAccesses.
func WithAssertAlignedAccesses(v bool) Option {
	return func(o *Options) {
		o.AssertAlignedAccesses = v
	}
}

// NewOptions applies opts to the zero Options.
func NewOptions(opts ...Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
