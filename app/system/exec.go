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

package system

import (
	"context"

	"go.qbee.io/doorkeep/app/utils"
)

// Executor runs OS commands on behalf of the engines.
type Executor interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// Exec is the Executor used outside of tests.
type Exec struct{}

// Run executes the command and returns its output.
func (Exec) Run(ctx context.Context, cmd Command) ([]byte, error) {
	return utils.RunCommand(ctx, cmd.CommandLine())
}
