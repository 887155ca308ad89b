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

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"go.qbee.io/doorkeep/app/provision"
	"go.qbee.io/doorkeep/app/utils/flags"
)

var stdin = bufio.NewReader(os.Stdin)

// promptLine asks for a single line on stdin, blocking until one arrives.
func promptLine(label string) (string, error) {
	fmt.Printf("%s: ", label)

	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("error reading input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// resolveUsername takes the username from options or keeps prompting until
// a non-empty one is entered.
func resolveUsername(opts flags.Options) (string, error) {
	if username := opts[optionUsername]; username != "" {
		return username, nil
	}

	for {
		username, err := promptLine("Username")
		if err != nil {
			return "", err
		}

		if username != "" {
			return username, nil
		}

		fmt.Println("Username must not be empty.")
	}
}

// resolvePublicKey takes the key from options, or prompts for one. A blank
// answer skips the key step; an invalid answer is re-prompted. Keys passed
// as flags are validated by the engine instead.
func resolvePublicKey(opts flags.Options) (string, error) {
	if opts.IsSet(optionPubKey) {
		return opts[optionPubKey], nil
	}

	for {
		raw, err := promptLine("Public key (blank to skip)")
		if err != nil {
			return "", err
		}

		if raw == "" {
			return "", nil
		}

		if _, err = provision.ParsePublicKey(raw); err != nil {
			fmt.Printf("Invalid key: %v\n", err)
			continue
		}

		return raw, nil
	}
}

// promptConfirm asks a yes/no question. Anything but an explicit yes is a
// decline.
func promptConfirm(question string) bool {
	answer, err := promptLine(question + " [y/N]")
	if err != nil {
		return false
	}

	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}
