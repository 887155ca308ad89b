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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.qbee.io/doorkeep/app/config"
	"go.qbee.io/doorkeep/app/utils/assert"
)

func Test_Load_MissingConfigDirUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nonexistent"))

	assert.NoError(t, err)
	assert.Equal(t, cfg, config.Default())
	assert.Equal(t, cfg.SudoersDir, "/etc/sudoers.d")
	assert.Equal(t, cfg.BackupDir, "/var/backups/doorkeep")
}

func Test_Load_ConfigFile(t *testing.T) {
	configDir := t.TempDir()

	configYAML := "admin_group: admins\n" +
		"sudoers_dir: /opt/sudoers.d\n" +
		"backup_dir: /opt/backups\n"

	writeConfigFile(t, configDir, config.ConfigFileName, configYAML)

	cfg, err := config.Load(configDir)

	assert.NoError(t, err)
	assert.Equal(t, cfg.AdminGroup, "admins")
	assert.Equal(t, cfg.SudoersDir, "/opt/sudoers.d")
	assert.Equal(t, cfg.BackupDir, "/opt/backups")

	// unset keys keep their defaults
	assert.Equal(t, cfg.OperationLog, "/var/log/doorkeep.log")
	assert.Equal(t, cfg.SkeletonDir, "/etc/skel")
}

func Test_Load_InvalidConfigFile(t *testing.T) {
	configDir := t.TempDir()

	writeConfigFile(t, configDir, config.ConfigFileName, "admin_group: [broken\n")

	_, err := config.Load(configDir)

	assert.ErrorContains(t, err, "error parsing config file")
}

func Test_Load_EnvFileOverridesConfigFile(t *testing.T) {
	configDir := t.TempDir()

	writeConfigFile(t, configDir, config.ConfigFileName, "admin_group: admins\n")
	writeConfigFile(t, configDir, config.EnvFileName, "DOORKEEP_ADMIN_GROUP=operators\n")

	cfg, err := config.Load(configDir)

	assert.NoError(t, err)
	assert.Equal(t, cfg.AdminGroup, "operators")
}

func Test_Load_ProcessEnvironmentWins(t *testing.T) {
	configDir := t.TempDir()

	writeConfigFile(t, configDir, config.EnvFileName, "DOORKEEP_ADMIN_GROUP=operators\n")

	t.Setenv("DOORKEEP_ADMIN_GROUP", "superusers")
	t.Setenv("DOORKEEP_BACKUP_DIR", "/srv/backups")

	cfg, err := config.Load(configDir)

	assert.NoError(t, err)
	assert.Equal(t, cfg.AdminGroup, "superusers")
	assert.Equal(t, cfg.BackupDir, "/srv/backups")
}

func writeConfigFile(t *testing.T, configDir, name, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(configDir, name), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}
