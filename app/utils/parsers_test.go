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

package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.qbee.io/doorkeep/app/utils"
	"go.qbee.io/doorkeep/app/utils/assert"
)

func Test_ForLines(t *testing.T) {
	var lines []string

	err := utils.ForLines(strings.NewReader("a\nb\nc"), func(line string) error {
		lines = append(lines, line)
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, lines, []string{"a", "b", "c"})
}

func Test_ParseEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "os-release")

	content := `NAME="Rocky Linux"
ID="rocky"
ID_LIKE="rhel centos fedora"
# comment
VERSION_ID=9.3

invalid line
`

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := utils.ParseEnvFile(path)

	assert.NoError(t, err)
	assert.Equal(t, data, map[string]string{
		"NAME":       "Rocky Linux",
		"ID":         "rocky",
		"ID_LIKE":    "rhel centos fedora",
		"VERSION_ID": "9.3",
	})
}
