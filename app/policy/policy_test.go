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

package policy_test

import (
	"os"
	"testing"

	"go.qbee.io/doorkeep/app/policy"
	"go.qbee.io/doorkeep/app/utils/assert"
)

func Test_ShellFromPath(t *testing.T) {
	testCases := []struct {
		path     string
		expected policy.Shell
	}{
		{"/bin/bash", policy.ShellBash},
		{"/usr/bin/bash", policy.ShellBash},
		{"/usr/bin/zsh", policy.ShellZsh},
		{"/bin/sh", policy.ShellPOSIX},
		{"/bin/dash", policy.ShellPOSIX},
		{"/bin/ksh", policy.ShellPOSIX},
		{"/usr/bin/fish", policy.ShellFish},
		{"/usr/sbin/nologin", policy.ShellUnknown},
		{"", policy.ShellUnknown},
	}

	for _, testCase := range testCases {
		assert.Equal(t, policy.ShellFromPath(testCase.path), testCase.expected)
	}
}

func Test_Shell_RCFiles(t *testing.T) {
	assert.Equal(t, policy.ShellBash.RCFiles(), []string{".bashrc", ".bash_profile"})
	assert.Equal(t, policy.ShellZsh.RCFiles(), []string{".zshrc"})
	assert.Equal(t, policy.ShellPOSIX.RCFiles(), []string{".profile"})
	assert.Equal(t, policy.ShellFish.RCFiles(), []string{".config/fish/config.fish"})
	assert.Equal(t, policy.ShellUnknown.RCFiles(), []string{".bashrc", ".profile"})
}

func Test_Artifact_ModeOK(t *testing.T) {
	testCases := []struct {
		name     string
		artifact policy.Artifact
		observed os.FileMode
		expected bool
	}{
		{"home 0750", policy.Artifact{Kind: policy.KindHome, Mode: policy.ModeHome}, 0750, true},
		{"home 0700", policy.Artifact{Kind: policy.KindHome, Mode: policy.ModeHome}, 0700, true},
		{"home 0755", policy.Artifact{Kind: policy.KindHome, Mode: policy.ModeHome}, 0755, false},
		{"rc 0640", policy.Artifact{Kind: policy.KindRCFile, Mode: policy.ModeRCFile}, 0640, true},
		{"rc 0644", policy.Artifact{Kind: policy.KindRCFile, Mode: policy.ModeRCFile}, 0644, true},
		{"rc 0600", policy.Artifact{Kind: policy.KindRCFile, Mode: policy.ModeRCFile}, 0600, true},
		{"rc group-writable", policy.Artifact{Kind: policy.KindRCFile, Mode: policy.ModeRCFile}, 0660, false},
		{"rc world-writable", policy.Artifact{Kind: policy.KindRCFile, Mode: policy.ModeRCFile}, 0666, false},
		{"ssh dir exact", policy.Artifact{Kind: policy.KindSSHDir, Mode: policy.ModeSSHDir}, 0700, true},
		{"ssh dir 0750", policy.Artifact{Kind: policy.KindSSHDir, Mode: policy.ModeSSHDir}, 0750, false},
		{"authorized keys exact", policy.Artifact{Kind: policy.KindAuthorizedKeys, Mode: policy.ModeAuthorizedKeys}, 0600, true},
		{"authorized keys 0644", policy.Artifact{Kind: policy.KindAuthorizedKeys, Mode: policy.ModeAuthorizedKeys}, 0644, false},
		{"sudoers exact", policy.Artifact{Kind: policy.KindSudoersDropIn, Mode: policy.ModeSudoersDropIn}, 0440, true},
		{"sudoers 0644", policy.Artifact{Kind: policy.KindSudoersDropIn, Mode: policy.ModeSudoersDropIn}, 0644, false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.artifact.ModeOK(testCase.observed), testCase.expected)
		})
	}
}

func Test_ForUser_Bash(t *testing.T) {
	artifacts := policy.ForUser("/home/alice", policy.ShellBash)

	paths := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		paths = append(paths, artifact.Path)
	}

	assert.Equal(t, paths, []string{
		"/home/alice",
		"/home/alice/.bashrc",
		"/home/alice/.bash_profile",
		"/home/alice/.ssh",
		"/home/alice/.ssh/authorized_keys",
	})

	for _, artifact := range artifacts {
		assert.True(t, artifact.UserOwned)
	}
}

func Test_ForUser_FishHasConfigDirs(t *testing.T) {
	artifacts := policy.ForUser("/home/alice", policy.ShellFish)

	paths := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		paths = append(paths, artifact.Path)
	}

	assert.Equal(t, paths, []string{
		"/home/alice",
		"/home/alice/.config",
		"/home/alice/.config/fish",
		"/home/alice/.config/fish/config.fish",
		"/home/alice/.ssh",
		"/home/alice/.ssh/authorized_keys",
	})
}

func Test_AdminGroupForOSRelease(t *testing.T) {
	testCases := []struct {
		name     string
		data     map[string]string
		expected string
	}{
		{"debian", map[string]string{"ID": "debian"}, "sudo"},
		{"ubuntu", map[string]string{"ID": "ubuntu"}, "sudo"},
		{"fedora", map[string]string{"ID": "fedora"}, "wheel"},
		{"rocky via ID", map[string]string{"ID": "rocky"}, "wheel"},
		{"mint via ID_LIKE", map[string]string{"ID": "linuxmint", "ID_LIKE": "ubuntu debian"}, "sudo"},
		{"alma via ID_LIKE", map[string]string{"ID": "almalinux", "ID_LIKE": "rhel centos fedora"}, "wheel"},
		{"case insensitive", map[string]string{"ID": "Ubuntu"}, "sudo"},
		{"unknown", map[string]string{"ID": "alpine"}, "wheel"},
		{"empty", map[string]string{}, "wheel"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, policy.AdminGroupForOSRelease(testCase.data), testCase.expected)
		})
	}
}

func Test_AdminGroupBinding(t *testing.T) {
	binding := policy.NewAdminGroupBinding("sudo", "/etc/sudoers.d")

	assert.Equal(t, binding.SudoersFilePath, "/etc/sudoers.d/99-sudo-nopasswd")
	assert.Equal(t, string(binding.DropInContent()), "%sudo ALL=(ALL) NOPASSWD: ALL\n")

	dropIn := binding.DropIn()
	assert.Equal(t, dropIn.Kind, policy.KindSudoersDropIn)
	assert.Equal(t, dropIn.Mode, os.FileMode(0440))
	assert.False(t, dropIn.UserOwned)
}

func Test_ResolveLoginShell_Requested(t *testing.T) {
	assert.Equal(t, policy.ResolveLoginShell("/usr/bin/fish"), "/usr/bin/fish")
}
