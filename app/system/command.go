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
	"fmt"
	"os"
	"strings"
)

// Privileged commands used to manage accounts, invoked by absolute path.
const (
	userAddCmd    = "/usr/sbin/useradd"
	userModCmd    = "/usr/sbin/usermod"
	userDeleteCmd = "/usr/sbin/userdel"
	gpasswdCmd    = "/usr/bin/gpasswd"
	visudoCmd     = "/usr/sbin/visudo"
)

// restoreconPaths where the SELinux context-repair tool may be installed.
var restoreconPaths = []string{"/sbin/restorecon", "/usr/sbin/restorecon"}

// Command is a single OS command invocation: either executed through an
// Executor or rendered verbatim for dry-run output, so what a dry run
// prints is exactly what a real run executes.
type Command struct {
	Program string
	Args    []string
}

// CommandLine returns the full argument vector.
func (c Command) CommandLine() []string {
	return append([]string{c.Program}, c.Args...)
}

// String renders the command the way a shell invocation would look.
func (c Command) String() string {
	return strings.Join(c.CommandLine(), " ")
}

// UserAdd creates a locked-down account with a home directory.
func UserAdd(username, shell string) Command {
	return Command{
		Program: userAddCmd,
		Args: []string{
			"--comment", fmt.Sprintf("%s,,,,User added by doorkeep", username),
			"--create-home",
			"--shell", shell,
			username,
		},
	}
}

// LockPassword disables password-based login for the account.
func LockPassword(username string) Command {
	return Command{
		Program: userModCmd,
		Args:    []string{"--lock", username},
	}
}

// UserDel removes the account, optionally with its home directory and mail
// spool.
func UserDel(username string, removeHome bool) Command {
	args := []string{}
	if removeHome {
		args = append(args, "--remove")
	}

	return Command{
		Program: userDeleteCmd,
		Args:    append(args, username),
	}
}

// AddToGroup adds the user to a supplementary group.
func AddToGroup(username, groupName string) Command {
	return Command{
		Program: gpasswdCmd,
		Args:    []string{"--add", username, groupName},
	}
}

// RemoveFromGroup removes the user from a supplementary group.
func RemoveFromGroup(username, groupName string) Command {
	return Command{
		Program: gpasswdCmd,
		Args:    []string{"--delete", username, groupName},
	}
}

// VisudoCheck validates the syntax of a sudoers file without installing it.
func VisudoCheck(path string) Command {
	return Command{
		Program: visudoCmd,
		Args:    []string{"--check", "--file", path},
	}
}

// Restorecon repairs the SELinux context of a path tree.
func Restorecon(path string) Command {
	return Command{
		Program: RestoreconPath(),
		Args:    []string{"-R", path},
	}
}

// RestoreconPath returns the restorecon binary path, or an empty string
// when the platform has no context-repair tooling installed.
func RestoreconPath() string {
	for _, path := range restoreconPaths {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}

	return ""
}
