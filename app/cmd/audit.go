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
	"os"

	"go.qbee.io/doorkeep/app/audit"
	"go.qbee.io/doorkeep/app/log"
	"go.qbee.io/doorkeep/app/system"
	"go.qbee.io/doorkeep/app/utils/flags"
)

var auditCommand = flags.Command{
	Description: "Audit an account against the policy table (read-only).",
	Options: []flags.Option{
		{
			Name:  optionUsername,
			Short: "u",
			Help:  "Name of the account to audit. Prompted for when omitted.",
		},
	},
	Target: func(opts flags.Options) error {
		_, binding, err := initRuntime(opts)
		if err != nil {
			return err
		}

		username, err := resolveUsername(opts)
		if err != nil {
			return err
		}

		if system.EffectiveUID() != 0 {
			log.Warnf("not running as root, password lock state and sudoers findings may be incomplete")
		}

		report, err := audit.NewEngine(binding).Audit(username)
		if err != nil {
			return err
		}

		report.Render(os.Stdout)

		return nil
	},
}
