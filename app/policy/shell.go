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

package policy

import (
	"os/exec"
	"path/filepath"
)

// Shell identifies the family of a login shell.
type Shell int

// Supported shell families.
const (
	ShellUnknown Shell = iota
	ShellBash
	ShellZsh
	ShellPOSIX
	ShellFish
)

// ShellFromPath returns the shell family for a login shell path.
func ShellFromPath(path string) Shell {
	switch filepath.Base(path) {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	case "sh", "dash", "ksh":
		return ShellPOSIX
	case "fish":
		return ShellFish
	default:
		return ShellUnknown
	}
}

// String returns the shell family name.
func (s Shell) String() string {
	switch s {
	case ShellBash:
		return "bash"
	case ShellZsh:
		return "zsh"
	case ShellPOSIX:
		return "sh"
	case ShellFish:
		return "fish"
	default:
		return "unknown"
	}
}

// RCFiles returns the rc files managed for the shell family, relative to
// the user's home directory. Accounts with an unrecognized shell get the
// conservative bash/POSIX fallback set.
func (s Shell) RCFiles() []string {
	switch s {
	case ShellBash:
		return []string{".bashrc", ".bash_profile"}
	case ShellZsh:
		return []string{".zshrc"}
	case ShellPOSIX:
		return []string{".profile"}
	case ShellFish:
		return []string{filepath.Join(".config", "fish", "config.fish")}
	default:
		return []string{".bashrc", ".profile"}
	}
}

// ConfigDirs returns intermediate config directories (relative to home)
// that must exist before the shell's rc files can be created.
func (s Shell) ConfigDirs() []string {
	if s == ShellFish {
		return []string{".config", filepath.Join(".config", "fish")}
	}

	return nil
}

// supportedLoginShells in preference order, used when no shell is requested
// for a new account.
var supportedLoginShells = []string{"bash", "zsh", "sh"}

// ResolveLoginShell returns the login shell for a new account: the
// requested path when provided, otherwise the first supported shell found
// on the system, falling back to /bin/sh.
func ResolveLoginShell(requested string) string {
	if requested != "" {
		return requested
	}

	for _, shell := range supportedLoginShells {
		if shellPath, err := exec.LookPath(shell); err == nil {
			return shellPath
		}
	}

	return "/bin/sh"
}
