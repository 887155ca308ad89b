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

import (
	"context"
	"fmt"
	"os"

	"go.qbee.io/doorkeep/app/system"
	"go.qbee.io/doorkeep/app/utils"
)

// Cleanup reverses apply: group membership first, then the account, then
// (on request) the sudoers drop-in. Safe to run against a partially
// provisioned or already removed account.
func (e *Engine) Cleanup(ctx context.Context, intent CleanupIntent) (*CleanupResult, error) {
	result := new(CleanupResult)

	user, err := system.LookupUser(e.PasswdFilePath, e.ShadowFilePath, intent.Username)
	if err != nil {
		return nil, err
	}

	if user == nil {
		ReportInfo(ctx, nil, "user '%s' does not exist, skipping account removal", intent.Username)
	} else {
		if err = e.removeAccount(ctx, user, intent, result); err != nil {
			return nil, err
		}
	}

	if intent.RemoveNopasswd {
		e.removeNopasswdDropIn(ctx, intent.DryRun, result)
	}

	return result, nil
}

func (e *Engine) removeAccount(ctx context.Context, user *system.User, intent CleanupIntent, result *CleanupResult) error {
	if user.Name == "root" || user.UID == 0 {
		ReportError(ctx, nil, "cannot remove administrative user '%s'", user.Name)
		return fmt.Errorf("cannot delete root user")
	}

	e.revokeAdminGroup(ctx, user.Name, intent.DryRun, result)

	delCmd := system.UserDel(user.Name, intent.RemoveHome)

	if intent.DryRun {
		ReportInfo(ctx, nil, "(dry-run) would run: %s", delCmd)
		return nil
	}

	output, err := e.Exec.Run(ctx, delCmd)
	if err != nil {
		ReportError(ctx, output, "unable to remove account '%s'", user.Name)
		return err
	}

	if intent.RemoveHome {
		ReportInfo(ctx, output, "removed account '%s' and its home directory", user.Name)
	} else {
		ReportInfo(ctx, output, "removed account '%s', home directory kept", user.Name)
	}

	result.AccountRemoved = true

	return nil
}

// revokeAdminGroup removes the account from the administrative group. A
// failure here never fails the overall cleanup.
func (e *Engine) revokeAdminGroup(ctx context.Context, username string, dryRun bool, result *CleanupResult) {
	member, err := system.IsGroupMember(e.GroupFilePath, e.Binding.GroupName, username)
	if err != nil {
		ReportWarning(ctx, err, "cannot inspect group '%s', continuing", e.Binding.GroupName)
		return
	}

	if !member {
		return
	}

	cmd := system.RemoveFromGroup(username, e.Binding.GroupName)

	if dryRun {
		ReportInfo(ctx, nil, "(dry-run) would run: %s", cmd)
		return
	}

	output, err := e.Exec.Run(ctx, cmd)
	if err != nil {
		ReportWarning(ctx, err, "unable to remove '%s' from group '%s', continuing", username, e.Binding.GroupName)
		return
	}

	ReportInfo(ctx, output, "removed '%s' from group '%s'", username, e.Binding.GroupName)

	result.AdminRevoked = true
}

func (e *Engine) removeNopasswdDropIn(ctx context.Context, dryRun bool, result *CleanupResult) {
	dropIn := e.Binding.DropIn()

	if !utils.FileExists(dropIn.Path) {
		ReportInfo(ctx, nil, "sudoers drop-in %s not present", dropIn.Path)
		return
	}

	if dryRun {
		ReportInfo(ctx, nil, "(dry-run) would remove %s", dropIn.Path)
		return
	}

	if err := os.Remove(dropIn.Path); err != nil {
		ReportWarning(ctx, err, "unable to remove sudoers drop-in %s", dropIn.Path)
		return
	}

	ReportInfo(ctx, nil, "removed sudoers drop-in %s", dropIn.Path)

	result.NopasswdRemoved = true
}
