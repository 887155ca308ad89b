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
	"os"

	"go.qbee.io/doorkeep/app/audit"
	"go.qbee.io/doorkeep/app/log"
	"go.qbee.io/doorkeep/app/provision"
	"go.qbee.io/doorkeep/app/system"
	"go.qbee.io/doorkeep/app/utils/flags"
)

var createCommand = flags.Command{
	Description: "Create or update an SSH-key-only account.",
	Options: []flags.Option{
		{
			Name:  optionUsername,
			Short: "u",
			Help:  "Name of the managed account. Prompted for when omitted.",
		},
		{
			Name:  optionPubKey,
			Short: "k",
			Help:  "SSH public key to install. Prompted for when omitted.",
		},
		{
			Name:  optionShell,
			Short: "s",
			Help:  "Login shell for a newly created account.",
		},
		{
			Name: optionReplaceKey,
			Help: "Replace authorized_keys with the supplied key (after a backup).",
			Flag: "true",
		},
		{
			Name:  optionAdmin,
			Short: "a",
			Help:  "Add the account to the administrative group.",
			Flag:  "true",
		},
		{
			Name:  optionNopasswd,
			Short: "n",
			Help:  "Install the administrative group's passwordless sudoers drop-in.",
			Flag:  "true",
		},
		{
			Name:  optionYes,
			Short: "y",
			Help:  "Apply without asking for confirmation.",
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

		pubKey, err := resolvePublicKey(opts)
		if err != nil {
			return err
		}

		dryRun := opts.Enabled(optionDryRun)

		if !dryRun && system.EffectiveUID() != 0 {
			return new(provision.PrivilegeError)
		}

		auditReport, err := audit.NewEngine(binding).Audit(username)
		if err != nil {
			return err
		}

		auditReport.Render(os.Stdout)

		if !dryRun && !opts.Enabled(optionYes) {
			if !promptConfirm(fmt.Sprintf("Apply changes to account '%s'?", username)) {
				fmt.Println("Aborted.")
				return nil
			}
		}

		intent := provision.Intent{
			Username:       username,
			PublicKey:      pubKey,
			ReplaceKey:     opts.Enabled(optionReplaceKey),
			GrantAdmin:     opts.Enabled(optionAdmin),
			GrantNopasswd:  opts.Enabled(optionNopasswd),
			RequestedShell: opts[optionShell],
			DryRun:         dryRun,
		}

		reporter := provision.NewReporter(true)
		ctx := reporter.Context(context.Background())

		log.Debugf("run ID: %s", reporter.RunID())

		engine := provision.NewEngine(cfg, binding, system.Exec{})

		_, err = engine.Apply(ctx, intent)

		return err
	},
}
