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

// Package provision contains the idempotent apply and cleanup engines which
// reconcile an account toward the policy table, and the reporter used to
// record every action they take or would take.
package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.qbee.io/doorkeep/app/config"
	"go.qbee.io/doorkeep/app/policy"
	"go.qbee.io/doorkeep/app/system"
	"go.qbee.io/doorkeep/app/utils"
)

// Engine reconciles accounts toward the policy table. Safe to re-run with
// the same intent; compliant state produces no further mutations.
type Engine struct {
	// Exec runs privileged OS commands.
	Exec system.Executor

	// Config of the tool.
	Config *config.Config

	// Binding is the administrative group detected at startup.
	Binding policy.AdminGroupBinding

	// System database paths, overridable in tests.
	PasswdFilePath string
	ShadowFilePath string
	GroupFilePath  string

	// Chown applies ownership; overridable in tests which run unprivileged.
	Chown func(path string, uid, gid int) error

	// Now provides backup timestamps.
	Now func() time.Time
}

// NewEngine returns an Engine operating on the real system databases.
func NewEngine(cfg *config.Config, binding policy.AdminGroupBinding, exec system.Executor) *Engine {
	return &Engine{
		Exec:           exec,
		Config:         cfg,
		Binding:        binding,
		PasswdFilePath: system.PasswdFilePath,
		ShadowFilePath: system.ShadowFilePath,
		GroupFilePath:  system.GroupFilePath,
		Chown:          os.Chown,
		Now:            time.Now,
	}
}

// Apply reconciles the account described by the intent. Each step is
// idempotent. Invalid keys fail only the key step unless key installation
// was the sole requested action; a sudoers validation failure is fatal.
func (e *Engine) Apply(ctx context.Context, intent Intent) (*Result, error) {
	result := new(Result)

	user, err := system.LookupUser(e.PasswdFilePath, e.ShadowFilePath, intent.Username)
	if err != nil {
		return nil, err
	}

	// Validate the key up front, so a bad key with no other requested
	// action fails the run before any mutation.
	var key *PublicKey
	if intent.PublicKey != "" {
		if key, err = ParsePublicKey(intent.PublicKey); err != nil {
			ReportError(ctx, nil, "invalid public key: %v", err)

			keyWasSoleAction := user != nil && !intent.GrantAdmin && !intent.GrantNopasswd
			if keyWasSoleAction {
				return nil, err
			}
		}
	}

	if user, err = e.ensureAccount(ctx, user, intent, result); err != nil {
		return nil, err
	}

	shell := policy.ShellFromPath(user.Shell)

	for _, artifact := range policy.ForUser(user.HomeDirectory, shell) {
		if err = e.ensureArtifact(ctx, user, artifact, intent.DryRun); err != nil {
			ReportWarning(ctx, err, "skipping %s", artifact.Path)
		}
	}

	if key != nil {
		if err = e.installKey(ctx, user, key, intent, result); err != nil {
			return nil, err
		}
	}

	e.restoreContext(ctx, user.HomeDirectory, intent.DryRun)

	if intent.GrantAdmin {
		e.grantAdminGroup(ctx, intent.Username, intent.DryRun, result)
	}

	if intent.GrantNopasswd {
		if err = e.ensureNopasswdDropIn(ctx, intent.DryRun, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ensureAccount creates and locks the account when absent. Existing
// accounts are never re-created; an unlocked password is re-locked.
func (e *Engine) ensureAccount(ctx context.Context, user *system.User, intent Intent, result *Result) (*system.User, error) {
	if user == nil {
		shell := policy.ResolveLoginShell(intent.RequestedShell)
		addCmd := system.UserAdd(intent.Username, shell)
		lockCmd := system.LockPassword(intent.Username)

		if intent.DryRun {
			ReportInfo(ctx, nil, "(dry-run) would run: %s", addCmd)
			ReportInfo(ctx, nil, "(dry-run) would run: %s", lockCmd)

			// planned account, used to resolve paths for the remaining steps
			return &system.User{
				Name:          intent.Username,
				UID:           -1,
				GID:           -1,
				HomeDirectory: filepath.Join("/home", intent.Username),
				Shell:         shell,
				PasswordLock:  system.LockStateLocked,
			}, nil
		}

		output, err := e.Exec.Run(ctx, addCmd)
		if err != nil {
			ReportError(ctx, err, "unable to create account '%s'", intent.Username)
			return nil, err
		}

		if _, err = e.Exec.Run(ctx, lockCmd); err != nil {
			ReportError(ctx, err, "unable to lock password of account '%s'", intent.Username)
			return nil, err
		}

		ReportInfo(ctx, output, "created account '%s' with shell %s and locked password", intent.Username, shell)

		if user, err = system.LookupUser(e.PasswdFilePath, e.ShadowFilePath, intent.Username); err != nil {
			return nil, err
		}

		if user == nil {
			return nil, fmt.Errorf("account '%s' not found after creation", intent.Username)
		}

		result.AccountCreated = true

		return user, nil
	}

	ReportInfo(ctx, nil, "account '%s' already exists, skipping creation", user.Name)

	if intent.RequestedShell != "" && intent.RequestedShell != user.Shell {
		ReportWarning(ctx, nil, "account '%s' keeps its shell %s, not changing to %s",
			user.Name, user.Shell, intent.RequestedShell)
	}

	if user.PasswordLock == system.LockStateUnlocked {
		lockCmd := system.LockPassword(user.Name)

		if intent.DryRun {
			ReportInfo(ctx, nil, "(dry-run) would run: %s", lockCmd)
			return user, nil
		}

		if _, err := e.Exec.Run(ctx, lockCmd); err != nil {
			ReportError(ctx, err, "unable to lock password of account '%s'", user.Name)
			return nil, err
		}

		ReportInfo(ctx, nil, "locked password of account '%s'", user.Name)
	}

	return user, nil
}

// ensureArtifact brings a single filesystem artifact to policy: present,
// owned by the user and with the mandated mode. Existing file content is
// never overwritten here.
func (e *Engine) ensureArtifact(ctx context.Context, user *system.User, artifact policy.Artifact, dryRun bool) error {
	info, err := os.Lstat(artifact.Path)

	if os.IsNotExist(err) {
		return e.createArtifact(ctx, user, artifact, dryRun)
	}

	if err != nil {
		return err
	}

	if !artifact.ModeOK(info.Mode()) {
		if dryRun {
			ReportInfo(ctx, nil, "(dry-run) would chmod %s to %04o", artifact.Path, artifact.Mode)
		} else {
			if err = os.Chmod(artifact.Path, artifact.Mode); err != nil {
				return err
			}

			ReportInfo(ctx, nil, "corrected mode of %s from %04o to %04o",
				artifact.Path, info.Mode().Perm(), artifact.Mode)
		}
	}

	return e.ensureOwner(ctx, user, artifact, dryRun)
}

func (e *Engine) createArtifact(ctx context.Context, user *system.User, artifact policy.Artifact, dryRun bool) error {
	if dryRun {
		ReportInfo(ctx, nil, "(dry-run) would create %s with mode %04o, owner %s",
			artifact.Path, artifact.Mode, user.Name)
		return nil
	}

	switch {
	case artifact.Dir:
		if err := os.MkdirAll(artifact.Path, artifact.Mode); err != nil {
			return err
		}
	case artifact.Kind == policy.KindRCFile:
		if err := e.createRCFile(user, artifact); err != nil {
			return err
		}
	default:
		if err := utils.WriteFileSync(artifact.Path, nil, artifact.Mode); err != nil {
			return err
		}
	}

	// umask-independent mode
	if err := os.Chmod(artifact.Path, artifact.Mode); err != nil {
		return err
	}

	ReportInfo(ctx, nil, "created %s with mode %04o", artifact.Path, artifact.Mode)

	return e.ensureOwner(ctx, user, artifact, dryRun)
}

// createRCFile seeds an rc file from the system skeleton when available,
// or creates it empty. Existing rc files are never touched.
func (e *Engine) createRCFile(user *system.User, artifact policy.Artifact) error {
	relPath, err := filepath.Rel(user.HomeDirectory, artifact.Path)
	if err != nil {
		return err
	}

	skeletonPath := filepath.Join(e.Config.SkeletonDir, relPath)

	if utils.FileExists(skeletonPath) {
		return utils.CopyFile(skeletonPath, artifact.Path, artifact.Mode)
	}

	return utils.WriteFileSync(artifact.Path, nil, artifact.Mode)
}

func (e *Engine) ensureOwner(ctx context.Context, user *system.User, artifact policy.Artifact, dryRun bool) error {
	if !artifact.UserOwned || user.UID < 0 {
		return nil
	}

	uid, gid, err := system.FileOwner(artifact.Path)
	if err == nil && uid == user.UID && gid == user.GID {
		return nil
	}

	if dryRun {
		ReportInfo(ctx, nil, "(dry-run) would chown %s to %d:%d", artifact.Path, user.UID, user.GID)
		return nil
	}

	if err = e.Chown(artifact.Path, user.UID, user.GID); err != nil {
		return err
	}

	return nil
}

// installKey places the validated key in authorized_keys. Membership is an
// exact-line test: a key differing only in whitespace or comment counts as
// a distinct entry.
func (e *Engine) installKey(ctx context.Context, user *system.User, key *PublicKey, intent Intent, result *Result) error {
	authorizedKeysPath := filepath.Join(user.HomeDirectory, ".ssh", "authorized_keys")
	authorizedKeys := policy.Artifact{
		Kind:      policy.KindAuthorizedKeys,
		Path:      authorizedKeysPath,
		Mode:      policy.ModeAuthorizedKeys,
		UserOwned: true,
	}

	content, err := os.ReadFile(authorizedKeysPath)
	if err != nil && !os.IsNotExist(err) {
		ReportWarning(ctx, err, "cannot read %s, skipping key installation", authorizedKeysPath)
		return nil
	}

	empty := len(strings.TrimSpace(string(content))) == 0

	switch {
	case empty:
		if intent.DryRun {
			ReportInfo(ctx, nil, "(dry-run) would write %s key as the sole entry of %s",
				key.AlgorithmPrefix, authorizedKeysPath)
			return nil
		}

		if err = utils.WriteFileSync(authorizedKeysPath, []byte(key.Raw+"\n"), authorizedKeys.Mode); err != nil {
			return err
		}

		ReportInfo(ctx, nil, "installed %s key as the sole entry of %s", key.AlgorithmPrefix, authorizedKeysPath)

	case intent.ReplaceKey:
		backupPath := e.backupPath(user.Name)

		if intent.DryRun {
			ReportInfo(ctx, nil, "(dry-run) would back up %s to %s and replace it with the %s key",
				authorizedKeysPath, backupPath, key.AlgorithmPrefix)
			return nil
		}

		if err = e.writeBackup(backupPath, content); err != nil {
			ReportError(ctx, err, "cannot back up %s, key not replaced", authorizedKeysPath)
			return nil
		}

		ReportInfo(ctx, nil, "backed up %s to %s", authorizedKeysPath, backupPath)
		result.KeyBackupPath = backupPath

		if err = utils.WriteFileSync(authorizedKeysPath, []byte(key.Raw+"\n"), authorizedKeys.Mode); err != nil {
			return err
		}

		ReportInfo(ctx, nil, "replaced %s with the %s key", authorizedKeysPath, key.AlgorithmPrefix)

	default:
		// membership only short-circuits the append path; replace always
		// truncates to the supplied key, backup first
		for _, line := range strings.Split(string(content), "\n") {
			if line == key.Raw {
				ReportInfo(ctx, nil, "key %s already present in %s", key.Fingerprint(), authorizedKeysPath)
				return nil
			}
		}

		if intent.DryRun {
			ReportInfo(ctx, nil, "(dry-run) would append %s key to %s", key.AlgorithmPrefix, authorizedKeysPath)
			return nil
		}

		appended := string(content)
		if appended != "" && !strings.HasSuffix(appended, "\n") {
			appended += "\n"
		}
		appended += key.Raw + "\n"

		if err = utils.WriteFileSync(authorizedKeysPath, []byte(appended), authorizedKeys.Mode); err != nil {
			return err
		}

		ReportInfo(ctx, nil, "appended %s key to %s", key.AlgorithmPrefix, authorizedKeysPath)
	}

	// re-assert mode and ownership after the write
	if err = os.Chmod(authorizedKeysPath, authorizedKeys.Mode); err != nil {
		return err
	}

	if err = e.ensureOwner(ctx, user, authorizedKeys, intent.DryRun); err != nil {
		return err
	}

	result.KeyInstalled = true

	return nil
}

func (e *Engine) backupPath(username string) string {
	fileName := fmt.Sprintf("%s-authorized_keys-%d", username, e.Now().Unix())
	return filepath.Join(e.Config.BackupDir, fileName)
}

// writeBackup stores the pre-replace authorized_keys content outside the
// user's home, readable by root only.
func (e *Engine) writeBackup(backupPath string, content []byte) error {
	if err := os.MkdirAll(e.Config.BackupDir, 0700); err != nil {
		return err
	}

	return utils.WriteFileSync(backupPath, content, 0600)
}

// restoreContext invokes SELinux context repair when the platform has it.
// Never fatal.
func (e *Engine) restoreContext(ctx context.Context, home string, dryRun bool) {
	if system.RestoreconPath() == "" {
		ReportInfo(ctx, nil, "no SELinux context-repair tooling found, skipping")
		return
	}

	cmd := system.Restorecon(home)

	if dryRun {
		ReportInfo(ctx, nil, "(dry-run) would run: %s", cmd)
		return
	}

	if output, err := e.Exec.Run(ctx, cmd); err != nil {
		ReportWarning(ctx, err, "context repair failed for %s, continuing", home)
	} else {
		ReportInfo(ctx, output, "repaired SELinux context under %s", home)
	}
}

// grantAdminGroup adds the user to the administrative group unless already
// a member. Failures are reported, not fatal.
func (e *Engine) grantAdminGroup(ctx context.Context, username string, dryRun bool, result *Result) {
	member, err := system.IsGroupMember(e.GroupFilePath, e.Binding.GroupName, username)
	if err != nil {
		ReportWarning(ctx, err, "cannot inspect group '%s', skipping admin grant", e.Binding.GroupName)
		return
	}

	if member {
		ReportInfo(ctx, nil, "'%s' is already a member of '%s'", username, e.Binding.GroupName)
		return
	}

	cmd := system.AddToGroup(username, e.Binding.GroupName)

	if dryRun {
		ReportInfo(ctx, nil, "(dry-run) would run: %s", cmd)
		return
	}

	output, err := e.Exec.Run(ctx, cmd)
	if err != nil {
		ReportError(ctx, err, "unable to add '%s' to group '%s'", username, e.Binding.GroupName)
		return
	}

	ReportInfo(ctx, output, "added '%s' to group '%s'", username, e.Binding.GroupName)

	result.AdminGranted = true
}

// ensureNopasswdDropIn writes and validates the group sudoers drop-in. A
// drop-in that fails validation is deleted before the error is returned; an
// invalid sudoers file must never remain on disk.
func (e *Engine) ensureNopasswdDropIn(ctx context.Context, dryRun bool, result *Result) error {
	dropIn := e.Binding.DropIn()

	if utils.FileExists(dropIn.Path) {
		ReportInfo(ctx, nil, "sudoers drop-in %s already present", dropIn.Path)

		if info, err := os.Stat(dropIn.Path); err == nil && info.Mode().Perm() != dropIn.Mode {
			if dryRun {
				ReportInfo(ctx, nil, "(dry-run) would chmod %s to %04o", dropIn.Path, dropIn.Mode)
				return nil
			}

			if err = os.Chmod(dropIn.Path, dropIn.Mode); err != nil {
				return err
			}

			ReportInfo(ctx, nil, "corrected mode of %s to %04o", dropIn.Path, dropIn.Mode)
		}

		return nil
	}

	checkCmd := system.VisudoCheck(dropIn.Path)

	if dryRun {
		ReportInfo(ctx, nil, "(dry-run) would write %s granting NOPASSWD to group '%s' and validate with: %s",
			dropIn.Path, e.Binding.GroupName, checkCmd)
		return nil
	}

	if err := utils.WriteFileSync(dropIn.Path, e.Binding.DropInContent(), dropIn.Mode); err != nil {
		ReportError(ctx, err, "unable to write sudoers drop-in %s", dropIn.Path)
		return err
	}

	if output, err := e.Exec.Run(ctx, checkCmd); err != nil {
		_ = os.Remove(dropIn.Path)

		validationErr := &SyntaxValidationError{Path: dropIn.Path, Err: err}
		ReportError(ctx, output, "removed invalid sudoers drop-in %s", dropIn.Path)

		return validationErr
	}

	if err := os.Chmod(dropIn.Path, dropIn.Mode); err != nil {
		return err
	}

	ReportInfo(ctx, nil, "installed sudoers drop-in %s for group '%s' with mode %04o",
		dropIn.Path, e.Binding.GroupName, dropIn.Mode)

	result.NopasswdWritten = true

	return nil
}
