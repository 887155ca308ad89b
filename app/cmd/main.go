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

// Package cmd wires the command tree: it resolves interactive input into
// intents and hands them to the audit and provisioning engines, which never
// prompt themselves.
package cmd

import (
	"go.qbee.io/doorkeep/app/config"
	"go.qbee.io/doorkeep/app/log"
	"go.qbee.io/doorkeep/app/policy"
	"go.qbee.io/doorkeep/app/utils"
	"go.qbee.io/doorkeep/app/utils/flags"
)

const (
	mainConfigDirOption = "config-dir"
	mainLogLevel        = "log-level"
)

// Option names shared between sub-commands.
const (
	optionUsername       = "username"
	optionPubKey         = "pubkey"
	optionShell          = "shell"
	optionReplaceKey     = "replace-key"
	optionAdmin          = "admin"
	optionNopasswd       = "nopasswd"
	optionYes            = "yes"
	optionDryRun         = "dry-run"
	optionRemoveHome     = "remove-home"
	optionRemoveNopasswd = "remove-nopasswd"
)

// Main is the root of the command tree.
var Main = flags.Command{
	Description: "Doorkeep - SSH public-key account provisioning tool",
	Options: []flags.Option{
		{
			Name:    mainConfigDirOption,
			Short:   "c",
			Help:    "Configuration directory.",
			Default: config.DefaultConfigDir,
		},
		{
			Name:    mainLogLevel,
			Short:   "l",
			Help:    "Logging level: DEBUG, INFO, WARNING or ERROR.",
			Default: "INFO",
		},
	},
	SubCommands: map[string]flags.Command{
		"create":  createCommand,
		"audit":   auditCommand,
		"remove":  removeCommand,
		"version": versionCommand,
	},
}

// initRuntime loads the configuration, opens the operation log and detects
// the administrative group for this host.
func initRuntime(opts flags.Options) (*config.Config, policy.AdminGroupBinding, error) {
	switch opts[mainLogLevel] {
	case "DEBUG":
		log.SetLevel(log.DEBUG)
	case "INFO":
		log.SetLevel(log.INFO)
	case "WARNING":
		log.SetLevel(log.WARNING)
	case "ERROR":
		log.SetLevel(log.ERROR)
	}

	cfg, err := config.Load(opts[mainConfigDirOption])
	if err != nil {
		return nil, policy.AdminGroupBinding{}, err
	}

	if err = log.OpenOperationLog(cfg.OperationLog); err != nil {
		log.Warnf("cannot open operation log: %v", err)
	}

	if !utils.DirExists(cfg.SkeletonDir) {
		log.Debugf("skeleton directory %s not present, rc files will be created empty", cfg.SkeletonDir)
	}

	binding := policy.DetectAdminGroup(cfg.AdminGroup, cfg.SudoersDir)

	log.Debugf("administrative group: %s", binding.GroupName)

	return cfg, binding, nil
}
