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

// Package policy holds the static mapping of managed filesystem artifacts
// to their required ownership and permission bits, the shell-family rc file
// mapping, and the administrative group binding derived from os-release.
package policy

import (
	"os"
	"path/filepath"
)

// ArtifactKind identifies a managed filesystem object.
type ArtifactKind string

// Managed artifact kinds.
const (
	KindHome           ArtifactKind = "home"
	KindSSHDir         ArtifactKind = "ssh-dir"
	KindAuthorizedKeys ArtifactKind = "authorized-keys"
	KindRCFile         ArtifactKind = "rc-file"
	KindConfigDir      ArtifactKind = "config-dir"
	KindSudoersDropIn  ArtifactKind = "sudoers-drop-in"
)

// Expected permission bits per artifact kind.
const (
	ModeHome           os.FileMode = 0750
	ModeHomeStrict     os.FileMode = 0700
	ModeSSHDir         os.FileMode = 0700
	ModeAuthorizedKeys os.FileMode = 0600
	ModeRCFile         os.FileMode = 0640
	ModeRCFileMax      os.FileMode = 0644
	ModeSudoersDropIn  os.FileMode = 0440
)

// Artifact describes one managed filesystem object and its expected state.
type Artifact struct {
	Kind ArtifactKind

	// Path of the artifact.
	Path string

	// Dir is true for directory artifacts.
	Dir bool

	// Mode is the mode applied when (re)creating the artifact.
	Mode os.FileMode

	// UserOwned is true when the artifact must be owned by the managed
	// user. Root-owned otherwise (sudoers drop-in, backups).
	UserOwned bool
}

// ModeOK reports whether an observed permission set is acceptable for the
// artifact. Exact-match kinds accept only their mandated mode; home
// directories accept 750 or 700; rc files tolerate anything within 644.
func (a Artifact) ModeOK(observed os.FileMode) bool {
	observed = observed.Perm()

	switch a.Kind {
	case KindHome, KindConfigDir:
		return observed == ModeHome || observed == ModeHomeStrict
	case KindRCFile:
		return observed&^ModeRCFileMax == 0
	default:
		return observed == a.Mode
	}
}

// ForUser returns the policy table for a user's home directory, given the
// user's shell family. The sudoers drop-in is group-scoped and therefore
// not part of the per-user table; see AdminGroupBinding.DropIn.
func ForUser(home string, shell Shell) []Artifact {
	artifacts := []Artifact{
		{Kind: KindHome, Path: home, Dir: true, Mode: ModeHome, UserOwned: true},
	}

	for _, dir := range shell.ConfigDirs() {
		artifacts = append(artifacts, Artifact{
			Kind:      KindConfigDir,
			Path:      filepath.Join(home, dir),
			Dir:       true,
			Mode:      ModeHome,
			UserOwned: true,
		})
	}

	for _, rc := range shell.RCFiles() {
		artifacts = append(artifacts, Artifact{
			Kind:      KindRCFile,
			Path:      filepath.Join(home, rc),
			Mode:      ModeRCFile,
			UserOwned: true,
		})
	}

	artifacts = append(artifacts,
		Artifact{Kind: KindSSHDir, Path: filepath.Join(home, ".ssh"), Dir: true, Mode: ModeSSHDir, UserOwned: true},
		Artifact{Kind: KindAuthorizedKeys, Path: filepath.Join(home, ".ssh", "authorized_keys"), Mode: ModeAuthorizedKeys, UserOwned: true},
	)

	return artifacts
}
