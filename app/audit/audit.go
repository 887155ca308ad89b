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

// Package audit inspects an account against the policy table without
// mutating anything. An unreadable or absent artifact is a finding, never
// an error; a crashed or partial apply shows up here on the next run.
package audit

import (
	"os"
	"path/filepath"

	"go.qbee.io/doorkeep/app/policy"
	"go.qbee.io/doorkeep/app/system"
)

// Severity of a finding.
type Severity string

// Finding severities.
const (
	SeverityOK      Severity = "ok"
	SeverityWarn    Severity = "warn"
	SeverityMissing Severity = "missing"
)

// Finding is the audit result for a single managed artifact.
type Finding struct {
	Artifact policy.Artifact
	Severity Severity

	// Note explains a warn finding.
	Note string

	ObservedMode os.FileMode
	ObservedUID  int
	ObservedGID  int
}

// Report is the full audit result for one account. Produced fresh per
// invocation, never persisted.
type Report struct {
	Username string

	// Exists is true when the account is present in passwd.
	Exists bool

	// User is nil when the account does not exist.
	User *system.User

	// AdminGroup detected for this host.
	AdminGroup string

	// AdminMember is true when the account is in the administrative group.
	AdminMember bool

	// NopasswdPresent is true when the group's sudoers drop-in exists.
	NopasswdPresent bool

	Findings []Finding

	// Keys present in authorized_keys, decorated for display.
	Keys []AuthorizedKey
}

// Engine performs read-only audits.
type Engine struct {
	Binding policy.AdminGroupBinding

	// System database paths, overridable in tests.
	PasswdFilePath string
	ShadowFilePath string
	GroupFilePath  string
}

// NewEngine returns an audit engine for the real system databases.
func NewEngine(binding policy.AdminGroupBinding) *Engine {
	return &Engine{
		Binding:        binding,
		PasswdFilePath: system.PasswdFilePath,
		ShadowFilePath: system.ShadowFilePath,
		GroupFilePath:  system.GroupFilePath,
	}
}

// Audit compares the account's current state with the policy table. For an
// absent account the planned home directory is audited, so findings show
// what an apply would have to create.
func (e *Engine) Audit(username string) (*Report, error) {
	report := &Report{
		Username:   username,
		AdminGroup: e.Binding.GroupName,
	}

	user, err := system.LookupUser(e.PasswdFilePath, e.ShadowFilePath, username)
	if err != nil {
		return nil, err
	}

	home := filepath.Join("/home", username)
	shell := policy.ShellUnknown

	if user != nil {
		report.Exists = true
		report.User = user
		home = user.HomeDirectory
		shell = policy.ShellFromPath(user.Shell)
	}

	for _, artifact := range policy.ForUser(home, shell) {
		report.Findings = append(report.Findings, e.inspect(user, artifact))
	}

	if member, err := system.IsGroupMember(e.GroupFilePath, e.Binding.GroupName, username); err == nil {
		report.AdminMember = member
	}

	if info, err := os.Stat(e.Binding.SudoersFilePath); err == nil && info.Mode().IsRegular() {
		report.NopasswdPresent = true
	}

	report.Keys = readAuthorizedKeys(filepath.Join(home, ".ssh", "authorized_keys"))

	return report, nil
}

// inspect produces the finding for a single artifact. Unreadable artifacts
// yield a missing finding instead of failing the audit.
func (e *Engine) inspect(user *system.User, artifact policy.Artifact) Finding {
	finding := Finding{Artifact: artifact}

	info, err := os.Lstat(artifact.Path)
	if err != nil {
		finding.Severity = SeverityMissing
		return finding
	}

	finding.Severity = SeverityOK
	finding.ObservedMode = info.Mode().Perm()

	if artifact.Dir != info.IsDir() {
		finding.Severity = SeverityWarn
		finding.Note = "unexpected artifact type"
		return finding
	}

	if !artifact.ModeOK(info.Mode()) {
		finding.Severity = SeverityWarn
		finding.Note = "mode out of policy"
	}

	if uid, gid, err := system.FileOwner(artifact.Path); err == nil {
		finding.ObservedUID = uid
		finding.ObservedGID = gid

		if artifact.UserOwned && user != nil && (uid != user.UID || gid != user.GID) {
			finding.Severity = SeverityWarn
			finding.Note = "owner mismatch"
		}
	}

	return finding
}
