// Copyright 2025 qbee.io
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
//
// SPDX-License-Identifier: Apache-2.0

package flags

// Options represent a mapping of Option.Name to Option.Value for options selected by a user.
type Options map[string]string

// IsSet returns true when the option was provided (or has a default).
func (opts Options) IsSet(name string) bool {
	_, ok := opts[name]
	return ok
}

// Enabled returns true when a Flag-style option was provided.
func (opts Options) Enabled(name string) bool {
	return opts[name] != ""
}

// Option represents a command line option.
type Option struct {
	// Name of the option argument. When set to "option", "--option <val>" arguments will be expected.
	Name string

	// Short option name. When set to "o", "-o <val>" arguments will be expected.
	Short string

	// Help message displayed to the user.
	Help string

	// Flag if set to non-empty string, will be used as value when command line option is provided.
	// It won't consume value argument.
	Flag string

	// Required option. If no value is set, help message will be displayed.
	Required bool

	// Default value used if options is not set.
	Default string
}
