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

// Package config loads the tool configuration from the config directory.
//
// Configuration is optional. A host without /etc/doorkeep runs entirely on
// defaults. When present, doorkeep.yml sets the base values and
// doorkeep.env (plus the process environment) overrides them.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default locations.
const (
	DefaultConfigDir = "/etc/doorkeep"

	ConfigFileName = "doorkeep.yml"
	EnvFileName    = "doorkeep.env"
)

// Config of the tool.
type Config struct {
	// AdminGroup overrides the distribution-detected administrative group.
	AdminGroup string `yaml:"admin_group"`

	// SudoersDir is where the nopasswd drop-in file is managed.
	SudoersDir string `yaml:"sudoers_dir"`

	// BackupDir receives authorized_keys backups before replacement.
	BackupDir string `yaml:"backup_dir"`

	// OperationLog is the append-only log file recording every action.
	OperationLog string `yaml:"operation_log"`

	// SkeletonDir provides default shell rc files for new accounts.
	SkeletonDir string `yaml:"skeleton_dir"`
}

// Environment override keys.
const (
	envAdminGroup   = "DOORKEEP_ADMIN_GROUP"
	envSudoersDir   = "DOORKEEP_SUDOERS_DIR"
	envBackupDir    = "DOORKEEP_BACKUP_DIR"
	envOperationLog = "DOORKEEP_OPERATION_LOG"
	envSkeletonDir  = "DOORKEEP_SKELETON_DIR"
)

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		SudoersDir:   "/etc/sudoers.d",
		BackupDir:    "/var/backups/doorkeep",
		OperationLog: "/var/log/doorkeep.log",
		SkeletonDir:  "/etc/skel",
	}
}

// Load reads configuration from the provided config directory.
// A missing config file is not an error.
func Load(configDir string) (*Config, error) {
	config := Default()

	configFilePath := filepath.Join(configDir, ConfigFileName)

	configBytes, err := os.ReadFile(configFilePath)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("error loading config from file %s: %w", configFilePath, err)
	default:
		if err = yaml.Unmarshal(configBytes, config); err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %w", configFilePath, err)
		}
	}

	overrides, err := loadOverrides(filepath.Join(configDir, EnvFileName))
	if err != nil {
		return nil, err
	}

	config.applyOverrides(overrides)

	return config, nil
}

// loadOverrides merges the env file (when present) with the process
// environment. Process environment wins.
func loadOverrides(envFilePath string) (map[string]string, error) {
	overrides := make(map[string]string)

	if _, err := os.Stat(envFilePath); err == nil {
		fileValues, err := godotenv.Read(envFilePath)
		if err != nil {
			return nil, fmt.Errorf("error parsing env file %s: %w", envFilePath, err)
		}

		for key, value := range fileValues {
			overrides[key] = value
		}
	}

	for _, key := range []string{envAdminGroup, envSudoersDir, envBackupDir, envOperationLog, envSkeletonDir} {
		if value, ok := os.LookupEnv(key); ok {
			overrides[key] = value
		}
	}

	return overrides, nil
}

func (config *Config) applyOverrides(overrides map[string]string) {
	if value := overrides[envAdminGroup]; value != "" {
		config.AdminGroup = value
	}

	if value := overrides[envSudoersDir]; value != "" {
		config.SudoersDir = value
	}

	if value := overrides[envBackupDir]; value != "" {
		config.BackupDir = value
	}

	if value := overrides[envOperationLog]; value != "" {
		config.OperationLog = value
	}

	if value := overrides[envSkeletonDir]; value != "" {
		config.SkeletonDir = value
	}
}
