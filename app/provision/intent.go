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

// Intent is a fully resolved apply request. The engines never prompt; all
// interactive input collection happens before an Intent is built.
type Intent struct {
	// Username of the managed account.
	Username string

	// PublicKey to install, raw. Empty means no key step this run.
	PublicKey string

	// ReplaceKey truncates authorized_keys to the supplied key (after a
	// backup) instead of appending.
	ReplaceKey bool

	// GrantAdmin adds the account to the administrative group.
	GrantAdmin bool

	// GrantNopasswd installs the group's passwordless sudoers drop-in.
	GrantNopasswd bool

	// RequestedShell for account creation. Ignored for existing accounts.
	RequestedShell string

	// DryRun describes every action instead of performing it.
	DryRun bool
}

// CleanupIntent is a fully resolved cleanup request.
type CleanupIntent struct {
	// Username of the account to remove.
	Username string

	// RemoveHome deletes the home directory along with the account.
	RemoveHome bool

	// RemoveNopasswd deletes the group's passwordless sudoers drop-in.
	RemoveNopasswd bool

	// DryRun describes every action instead of performing it.
	DryRun bool
}

// Result of an apply run.
type Result struct {
	AccountCreated  bool
	KeyInstalled    bool
	KeyBackupPath   string
	AdminGranted    bool
	NopasswdWritten bool
}

// CleanupResult of a cleanup run.
type CleanupResult struct {
	AccountRemoved  bool
	AdminRevoked    bool
	NopasswdRemoved bool
}
