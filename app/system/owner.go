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

	"golang.org/x/sys/unix"
)

// FileOwner returns the uid and gid owning the file at path.
func FileOwner(path string) (int, int, error) {
	var stat unix.Stat_t

	if err := unix.Stat(path, &stat); err != nil {
		return 0, 0, fmt.Errorf("error getting owner of %s: %w", path, err)
	}

	return int(stat.Uid), int(stat.Gid), nil
}

// EffectiveUID of the running process.
func EffectiveUID() int {
	return unix.Geteuid()
}
