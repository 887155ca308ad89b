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

package cmd

import (
	"context"
	"fmt"

	"go.qbee.io/doorkeep/app/log"
	"go.qbee.io/doorkeep/app/provision"
	"go.qbee.io/doorkeep/app/system"
	"go.qbee.io/doorkeep/app/utils/flags"
)

var removeCommand = flags.Command{
	Description: "Remove a managed account.",
	Options: []flags.Option{
		{
			Name:  optionUsername,
			Short: "u",
			Help:  "Name of the account to remove. Prompted for when omitted.",
		},
		{
			Name: optionRemoveHome,
			Help: "Delete the home directory along with the account.",
			Flag: "true",
		},
		{
			Name: optionRemoveNopasswd,
			Help: "Delete the administrative group's passwordless sudoers drop-in.",
			Flag: "true",
		},
		{
			Name:  optionYes,
			Short: "y",
			Help:  "Remove without asking for confirmation.",
			Flag:  "true",
		},
		{
			Name:  optionDryRun,
			Short: "d",
			Help:  "Describe every action instead of performing it.",
			Flag:  "true",
		},
	},
	Target: func(opts flags.Options) error {
		cfg, binding, err := initRuntime(opts)
		if err != nil {
			return err
		}

		username, err := resolveUsername(opts)
		if err != nil {
			return err
		}

		dryRun := opts.Enabled(optionDryRun)

		if !dryRun && system.EffectiveUID() != 0 {
			return new(provision.PrivilegeError)
		}

		if !dryRun && !opts.Enabled(optionYes) {
			if !promptConfirm(fmt.Sprintf("Remove account '%s'?", username)) {
				fmt.Println("Aborted.")
				return nil
			}
		}

		intent := provision.CleanupIntent{
			Username:       username,
			RemoveHome:     opts.Enabled(optionRemoveHome),
			RemoveNopasswd: opts.Enabled(optionRemoveNopasswd),
			DryRun:         dryRun,
		}

		reporter := provision.NewReporter(true)
		ctx := reporter.Context(context.Background())

		log.Debugf("run ID: %s", reporter.RunID())

		engine := provision.NewEngine(cfg, binding, system.Exec{})

		_, err = engine.Cleanup(ctx, intent)

		return err
	},
}
