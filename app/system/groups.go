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
	"strings"

	"go.qbee.io/doorkeep/app/utils"
)

// GroupMembers returns the supplementary members of a group and whether the
// group exists at all.
func GroupMembers(groupFilePath, groupName string) ([]string, bool, error) {
	var members []string
	var exists bool

	err := utils.ForLinesInFile(groupFilePath, func(line string) error {
		fields := strings.Split(line, ":")

		if len(fields) < 4 || fields[0] != groupName {
			return nil
		}

		exists = true

		for _, member := range strings.Split(fields[3], ",") {
			if member != "" {
				members = append(members, member)
			}
		}

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return members, exists, nil
}

// IsGroupMember returns true when username is a supplementary member of the
// group.
func IsGroupMember(groupFilePath, groupName, username string) (bool, error) {
	members, _, err := GroupMembers(groupFilePath, groupName)
	if err != nil {
		return false, err
	}

	for _, member := range members {
		if member == username {
			return true, nil
		}
	}

	return false, nil
}
