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

package provision_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.qbee.io/doorkeep/app/config"
	"go.qbee.io/doorkeep/app/policy"
	"go.qbee.io/doorkeep/app/provision"
	"go.qbee.io/doorkeep/app/system"
)

// testEnv is a scratch system: its own passwd/shadow/group files, home
// root, sudoers and backup directories.
type testEnv struct {
	t *testing.T

	passwdPath string
	shadowPath string
	groupPath  string
	homeRoot   string

	cfg     *config.Config
	binding policy.AdminGroupBinding
}

func newTestEnv(t *testing.T) *testEnv {
	root := t.TempDir()

	env := &testEnv{
		t:          t,
		passwdPath: filepath.Join(root, "passwd"),
		shadowPath: filepath.Join(root, "shadow"),
		groupPath:  filepath.Join(root, "group"),
		homeRoot:   filepath.Join(root, "home"),
	}

	env.writeFile(env.passwdPath, "root:x:0:0:root:/root:/bin/bash\n")
	env.writeFile(env.shadowPath, "root:*:19000:0:99999:7:::\n")
	env.writeFile(env.groupPath, "wheel:x:10:\n")

	env.cfg = &config.Config{
		SudoersDir:   filepath.Join(root, "sudoers.d"),
		BackupDir:    filepath.Join(root, "backups"),
		OperationLog: filepath.Join(root, "doorkeep.log"),
		SkeletonDir:  filepath.Join(root, "skel"),
	}

	for _, dir := range []string{env.homeRoot, env.cfg.SudoersDir, env.cfg.SkeletonDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	env.binding = policy.NewAdminGroupBinding("wheel", env.cfg.SudoersDir)

	return env
}

// engine returns a provisioning engine bound to the scratch system.
func (env *testEnv) engine(exec system.Executor) *provision.Engine {
	engine := provision.NewEngine(env.cfg, env.binding, exec)

	engine.PasswdFilePath = env.passwdPath
	engine.ShadowFilePath = env.shadowPath
	engine.GroupFilePath = env.groupPath
	engine.Chown = func(string, int, int) error { return nil }
	engine.Now = func() time.Time { return time.Unix(1700000000, 0) }

	return engine
}

func (env *testEnv) writeFile(path, content string) {
	env.t.Helper()

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		env.t.Fatal(err)
	}
}

func (env *testEnv) readFile(path string) string {
	env.t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		env.t.Fatal(err)
	}

	return string(content)
}

func (env *testEnv) appendFile(path, line string) {
	env.writeFile(path, env.readFile(path)+line)
}

// seedUser places an existing account in the scratch system.
// A lockedPassword of false seeds a regular password hash.
func (env *testEnv) seedUser(name string, lockedPassword bool) *system.User {
	home := filepath.Join(env.homeRoot, name)

	env.appendFile(env.passwdPath, fmt.Sprintf("%s:x:1000:1000::%s:/bin/bash\n", name, home))

	password := "!"
	if !lockedPassword {
		password = "$6$seeded$hash"
	}

	env.appendFile(env.shadowPath, fmt.Sprintf("%s:%s:19000:0:99999:7:::\n", name, password))

	if err := os.MkdirAll(home, 0750); err != nil {
		env.t.Fatal(err)
	}

	return env.lookup(name)
}

func (env *testEnv) lookup(name string) *system.User {
	env.t.Helper()

	user, err := system.LookupUser(env.passwdPath, env.shadowPath, name)
	if err != nil {
		env.t.Fatal(err)
	}

	return user
}

func (env *testEnv) home(name string) string {
	return filepath.Join(env.homeRoot, name)
}

func (env *testEnv) authorizedKeysPath(name string) string {
	return filepath.Join(env.home(name), ".ssh", "authorized_keys")
}

func (env *testEnv) fileMode(path string) os.FileMode {
	env.t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		env.t.Fatal(err)
	}

	return info.Mode().Perm()
}

// fakeExec records commands and simulates their effect on the scratch
// system files.
type fakeExec struct {
	env      *testEnv
	commands []system.Command

	// fail returns an error for commands that should be simulated as
	// failing.
	fail func(cmd system.Command) error
}

func (f *fakeExec) Run(_ context.Context, cmd system.Command) ([]byte, error) {
	f.commands = append(f.commands, cmd)

	if f.fail != nil {
		if err := f.fail(cmd); err != nil {
			return nil, err
		}
	}

	args := cmd.Args

	switch filepath.Base(cmd.Program) {
	case "useradd":
		name := args[len(args)-1]
		shell := args[4]
		home := f.env.home(name)

		f.env.appendFile(f.env.passwdPath, fmt.Sprintf("%s:x:1000:1000::%s:%s\n", name, home, shell))
		f.env.appendFile(f.env.shadowPath, fmt.Sprintf("%s:!:19000:0:99999:7:::\n", name))

		if err := os.MkdirAll(home, 0755); err != nil {
			return nil, err
		}

	case "usermod": // --lock
		name := args[len(args)-1]
		f.env.replaceLine(f.env.shadowPath, name, func(fields []string) []string {
			if !strings.HasPrefix(fields[1], "!") {
				fields[1] = "!" + fields[1]
			}
			return fields
		})

	case "userdel":
		name := args[len(args)-1]
		f.env.removeLine(f.env.passwdPath, name)
		f.env.removeLine(f.env.shadowPath, name)

		if args[0] == "--remove" {
			if err := os.RemoveAll(f.env.home(name)); err != nil {
				return nil, err
			}
		}

	case "gpasswd": // --add/--delete user group
		action, name, group := args[0], args[1], args[2]
		f.env.replaceLine(f.env.groupPath, group, func(fields []string) []string {
			members := strings.Split(fields[3], ",")
			kept := make([]string, 0, len(members)+1)

			for _, member := range members {
				if member != "" && member != name {
					kept = append(kept, member)
				}
			}

			if action == "--add" {
				kept = append(kept, name)
			}

			fields[3] = strings.Join(kept, ",")
			return fields
		})
	}

	return nil, nil
}

// commandsFor returns recorded commands matching the program base name.
func (f *fakeExec) commandsFor(program string) []system.Command {
	var matched []system.Command

	for _, cmd := range f.commands {
		if filepath.Base(cmd.Program) == program {
			matched = append(matched, cmd)
		}
	}

	return matched
}

func (env *testEnv) replaceLine(path, key string, fn func(fields []string) []string) {
	env.t.Helper()

	lines := strings.Split(env.readFile(path), "\n")

	for i, line := range lines {
		if strings.HasPrefix(line, key+":") {
			lines[i] = strings.Join(fn(strings.Split(line, ":")), ":")
		}
	}

	env.writeFile(path, strings.Join(lines, "\n"))
}

func (env *testEnv) removeLine(path, key string) {
	env.t.Helper()

	lines := strings.Split(env.readFile(path), "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		if !strings.HasPrefix(line, key+":") {
			kept = append(kept, line)
		}
	}

	env.writeFile(path, strings.Join(kept, "\n"))
}

// reportTexts flattens reporter output for assertions.
func reportTexts(reporter *provision.Reporter) []string {
	var texts []string

	for _, report := range reporter.Reports() {
		texts = append(texts, report.Text)
	}

	return texts
}

// hasReport returns true when any report text contains the substring.
func hasReport(reporter *provision.Reporter, substring string) bool {
	for _, text := range reportTexts(reporter) {
		if strings.Contains(text, substring) {
			return true
		}
	}

	return false
}
