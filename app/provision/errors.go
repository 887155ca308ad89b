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

package provision

import "fmt"

// ValidationError reports invalid user input (bad key format, empty
// required value). It is recovered locally and never aborts unrelated
// steps.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

// NewValidationError returns a formatted ValidationError.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// PrivilegeError means the process lacks the rights to mutate system
// state. Raised before any mutation is attempted.
type PrivilegeError struct{}

func (e *PrivilegeError) Error() string {
	return "administrative privileges required, re-run as root"
}

// SyntaxValidationError means a generated sudoers file failed visudo
// validation. The offending file is deleted before this error is returned;
// the run is aborted.
type SyntaxValidationError struct {
	Path string
	Err  error
}

func (e *SyntaxValidationError) Error() string {
	return fmt.Sprintf("sudoers file %s failed validation: %v", e.Path, e.Err)
}

func (e *SyntaxValidationError) Unwrap() error {
	return e.Err
}
