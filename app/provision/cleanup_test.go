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

package provision_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.qbee.io/doorkeep/app/provision"
	"go.qbee.io/doorkeep/app/system"
	"go.qbee.io/doorkeep/app/utils/assert"
)

func cleanupIntent(t *testing.T, env *testEnv, exec *fakeExec, intent provision.CleanupIntent) (*provision.CleanupResult, *provision.Reporter, error) {
	t.Helper()

	reporter := provision.NewReporter(false)
	ctx := reporter.Context(context.Background())

	result, err := env.engine(exec).Cleanup(ctx, intent)

	return result, reporter, err
}

func Test_Cleanup_NonexistentUserIsNoOp(t *testing.T) {
	env := newTestEnv(t)

	exec := &fakeExec{env: env}
	result, reporter, err := cleanupIntent(t, env, exec, provision.CleanupIntent{Username: "ghost"})

	assert.NoError(t, err)
	assert.False(t, result.AccountRemoved)
	assert.Length(t, exec.commands, 0)
	assert.True(t, hasReport(reporter, "does not exist"))
}

func Test_Cleanup_RemovesAccountKeepingHome(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("bob", true)

	exec := &fakeExec{env: env}
	result, reporter, err := cleanupIntent(t, env, exec, provision.CleanupIntent{Username: "bob"})

	assert.NoError(t, err)
	assert.True(t, result.AccountRemoved)
	assert.True(t, env.lookup("bob") == nil)
	assert.True(t, hasReport(reporter, "home directory kept"))

	// home stays on disk
	_, statErr := os.Stat(env.home("bob"))
	assert.NoError(t, statErr)

	userdel := exec.commandsFor("userdel")
	assert.Length(t, userdel, 1)
	assert.Equal(t, userdel[0].String(), "/usr/sbin/userdel bob")
}

func Test_Cleanup_RemoveHome(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("bob", true)

	exec := &fakeExec{env: env}
	result, _, err := cleanupIntent(t, env, exec, provision.CleanupIntent{
		Username:   "bob",
		RemoveHome: true,
	})

	assert.NoError(t, err)
	assert.True(t, result.AccountRemoved)

	_, statErr := os.Stat(env.home("bob"))
	assert.True(t, os.IsNotExist(statErr))

	userdel := exec.commandsFor("userdel")
	assert.Length(t, userdel, 1)
	assert.Equal(t, userdel[0].String(), "/usr/sbin/userdel --remove bob")
}

func Test_Cleanup_RevokesGroupBeforeUserDel(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("bob", true)
	env.writeFile(env.groupPath, "wheel:x:10:bob\n")

	exec := &fakeExec{env: env}
	result, _, err := cleanupIntent(t, env, exec, provision.CleanupIntent{Username: "bob"})

	assert.NoError(t, err)
	assert.True(t, result.AdminRevoked)
	assert.Length(t, exec.commands, 2)
	assert.Equal(t, filepath.Base(exec.commands[0].Program), "gpasswd")
	assert.Equal(t, filepath.Base(exec.commands[1].Program), "userdel")

	members, _, groupErr := system.GroupMembers(env.groupPath, "wheel")
	assert.NoError(t, groupErr)
	assert.Length(t, members, 0)
}

func Test_Cleanup_GroupRevocationFailureContinues(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("bob", true)
	env.writeFile(env.groupPath, "wheel:x:10:bob\n")

	exec := &fakeExec{env: env, fail: func(cmd system.Command) error {
		if filepath.Base(cmd.Program) == "gpasswd" {
			return errors.New("gpasswd: permission denied")
		}
		return nil
	}}

	result, reporter, err := cleanupIntent(t, env, exec, provision.CleanupIntent{Username: "bob"})

	assert.NoError(t, err)
	assert.True(t, result.AccountRemoved)
	assert.False(t, result.AdminRevoked)
	assert.True(t, hasReport(reporter, "continuing"))
	assert.True(t, env.lookup("bob") == nil)
}

func Test_Cleanup_RefusesRoot(t *testing.T) {
	env := newTestEnv(t)

	exec := &fakeExec{env: env}
	_, _, err := cleanupIntent(t, env, exec, provision.CleanupIntent{Username: "root"})

	assert.ErrorContains(t, err, "cannot delete root user")
	assert.Length(t, exec.commands, 0)
	assert.True(t, env.lookup("root") != nil)
}

func Test_Cleanup_RemovesNopasswdDropIn(t *testing.T) {
	env := newTestEnv(t)

	dropInPath := filepath.Join(env.cfg.SudoersDir, "99-wheel-nopasswd")
	env.writeFile(dropInPath, "%wheel ALL=(ALL) NOPASSWD: ALL\n")

	result, _, err := cleanupIntent(t, env, &fakeExec{env: env}, provision.CleanupIntent{
		Username:       "ghost",
		RemoveNopasswd: true,
	})

	assert.NoError(t, err)
	assert.True(t, result.NopasswdRemoved)

	_, statErr := os.Stat(dropInPath)
	assert.True(t, os.IsNotExist(statErr))
}

func Test_Cleanup_AbsentDropInReported(t *testing.T) {
	env := newTestEnv(t)

	result, reporter, err := cleanupIntent(t, env, &fakeExec{env: env}, provision.CleanupIntent{
		Username:       "ghost",
		RemoveNopasswd: true,
	})

	assert.NoError(t, err)
	assert.False(t, result.NopasswdRemoved)
	assert.True(t, hasReport(reporter, "not present"))
}

func Test_Cleanup_DryRunMutatesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser("bob", true)
	env.writeFile(env.groupPath, "wheel:x:10:bob\n")

	dropInPath := filepath.Join(env.cfg.SudoersDir, "99-wheel-nopasswd")
	env.writeFile(dropInPath, "%wheel ALL=(ALL) NOPASSWD: ALL\n")

	exec := &fakeExec{env: env}
	result, reporter, err := cleanupIntent(t, env, exec, provision.CleanupIntent{
		Username:       "bob",
		RemoveHome:     true,
		RemoveNopasswd: true,
		DryRun:         true,
	})

	assert.NoError(t, err)
	assert.False(t, result.AccountRemoved)
	assert.Length(t, exec.commands, 0)

	assert.True(t, env.lookup("bob") != nil)

	_, statErr := os.Stat(dropInPath)
	assert.NoError(t, statErr)

	assert.True(t, hasReport(reporter, "would run: /usr/sbin/userdel --remove bob"))
	assert.True(t, hasReport(reporter, "would run: /usr/bin/gpasswd --delete bob wheel"))
	assert.True(t, hasReport(reporter, "would remove"))
}
