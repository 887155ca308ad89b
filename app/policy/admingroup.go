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
	"fmt"
	"path/filepath"
	"strings"

	"go.qbee.io/doorkeep/app/log"
	"go.qbee.io/doorkeep/app/utils"
)

// AdminGroupBinding is the administrative group used for sudo escalation on
// this host, derived once at startup and passed by value everywhere.
type AdminGroupBinding struct {
	// GroupName of the administrative group (wheel or sudo).
	GroupName string

	// SudoersFilePath of the group's passwordless-sudo drop-in.
	SudoersFilePath string
}

// DropIn returns the policy entry for the group's sudoers drop-in file.
func (b AdminGroupBinding) DropIn() Artifact {
	return Artifact{
		Kind: KindSudoersDropIn,
		Path: b.SudoersFilePath,
		Mode: ModeSudoersDropIn,
	}
}

// DropInContent returns the sudoers rule granting passwordless execution to
// the administrative group.
func (b AdminGroupBinding) DropInContent() []byte {
	return []byte(fmt.Sprintf("%%%s ALL=(ALL) NOPASSWD: ALL\n", b.GroupName))
}

// Default administrative group when the distribution cannot be identified.
const defaultAdminGroup = "wheel"

// os-release locations, in lookup order.
var osReleasePaths = []string{"/etc/os-release", "/usr/lib/os-release"}

// DetectAdminGroup returns the administrative group binding for this host.
// An explicit override skips distribution detection.
func DetectAdminGroup(override, sudoersDir string) AdminGroupBinding {
	groupName := override

	if groupName == "" {
		groupName = detectDistroAdminGroup()
	}

	return NewAdminGroupBinding(groupName, sudoersDir)
}

// NewAdminGroupBinding returns a binding for the provided group name.
func NewAdminGroupBinding(groupName, sudoersDir string) AdminGroupBinding {
	return AdminGroupBinding{
		GroupName:       groupName,
		SudoersFilePath: filepath.Join(sudoersDir, fmt.Sprintf("99-%s-nopasswd", groupName)),
	}
}

func detectDistroAdminGroup() string {
	for _, path := range osReleasePaths {
		data, err := utils.ParseEnvFile(path)
		if err != nil {
			continue
		}

		return AdminGroupForOSRelease(data)
	}

	log.Warnf("cannot read os-release, assuming administrative group '%s'", defaultAdminGroup)

	return defaultAdminGroup
}

// AdminGroupForOSRelease maps os-release identification data to the
// distribution's administrative group. ID is checked first, then the
// ID_LIKE ancestry list.
func AdminGroupForOSRelease(data map[string]string) string {
	ids := []string{strings.ToLower(data["ID"])}
	ids = append(ids, strings.Fields(strings.ToLower(data["ID_LIKE"]))...)

	for _, id := range ids {
		switch id {
		case "debian", "ubuntu":
			return "sudo"
		case "rhel", "fedora", "centos", "rocky", "almalinux", "suse", "opensuse", "sles":
			return "wheel"
		}
	}

	return defaultAdminGroup
}
