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

// Package system observes accounts, groups and file ownership, and wraps
// the privileged OS commands behind a Command value and an Executor so the
// engines can run them, record them, or render them for dry-run output.
package system

import (
	"fmt"
	"strconv"
	"strings"

	"go.qbee.io/doorkeep/app/utils"
)

// Paths to standard passwd, shadow and group files.
const (
	PasswdFilePath = "/etc/passwd"
	ShadowFilePath = "/etc/shadow"
	GroupFilePath  = "/etc/group"
)

// LockState of an account's password.
type LockState int

// Possible password lock states. Unknown means the shadow file was not
// readable (e.g. audit without privileges).
const (
	LockStateUnknown LockState = iota
	LockStateLocked
	LockStateUnlocked
)

// String returns a human-readable lock state.
func (s LockState) String() string {
	switch s {
	case LockStateLocked:
		return "locked"
	case LockStateUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// User is an observed local account. Never fabricated; absent accounts are
// represented by a nil *User.
type User struct {
	// Name - the string a user would type in when logging into the operating system.
	Name string

	// UID - user identifier number.
	UID int

	// GID - group identifier number, which identifies the primary group of the user.
	GID int

	// HomeDirectory - path to the user's home directory.
	HomeDirectory string

	// Shell - program that is started every time the user logs into the system.
	Shell string

	// PasswordLock - whether password-based login is disabled for the account.
	PasswordLock LockState
}

// LookupUser returns the account record for name, or nil when the account
// does not exist. A missing or unreadable shadow file is not an error; the
// returned lock state is Unknown in that case.
func LookupUser(passwdFilePath, shadowFilePath, name string) (*User, error) {
	var found *User

	err := utils.ForLinesInFile(passwdFilePath, func(line string) error {
		fields := strings.Split(line, ":")

		if len(fields) < 7 || fields[0] != name {
			return nil
		}

		uid, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("invalid UID")
		}

		gid, err := strconv.Atoi(fields[3])
		if err != nil {
			return fmt.Errorf("invalid GID")
		}

		found = &User{
			Name:          fields[0],
			UID:           uid,
			GID:           gid,
			HomeDirectory: fields[5],
			Shell:         fields[6],
			PasswordLock:  LockStateUnknown,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if found == nil {
		return nil, nil
	}

	found.PasswordLock = passwordLockState(shadowFilePath, name)

	return found, nil
}

// passwordLockState inspects the shadow entry of an account. A password
// field that is empty or starts with '!' or '*' permits no password login.
func passwordLockState(shadowFilePath, name string) LockState {
	state := LockStateUnknown

	err := utils.ForLinesInFile(shadowFilePath, func(line string) error {
		fields := strings.Split(line, ":")

		if len(fields) < 2 || fields[0] != name {
			return nil
		}

		password := fields[1]

		if password == "" || strings.HasPrefix(password, "!") || strings.HasPrefix(password, "*") {
			state = LockStateLocked
		} else {
			state = LockStateUnlocked
		}

		return nil
	})
	if err != nil {
		return LockStateUnknown
	}

	return state
}
