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

package audit

import (
	"strings"

	"golang.org/x/crypto/ssh"

	"go.qbee.io/doorkeep/app/utils"
)

// AuthorizedKey is a display record for one authorized_keys line. The
// fingerprint is decoration; policy decisions never depend on it.
type AuthorizedKey struct {
	// Type of the key (e.g. ssh-ed25519), or "unrecognized" for lines
	// which do not decode as a public key.
	Type string

	// Fingerprint in SHA256 form, empty for unrecognized lines.
	Fingerprint string

	// Comment trailing the key, if any.
	Comment string
}

// readAuthorizedKeys lists keys in the file at path, skipping blank lines
// and comments. An unreadable file yields no keys; the corresponding
// artifact finding already covers that case.
func readAuthorizedKeys(path string) []AuthorizedKey {
	var keys []AuthorizedKey

	_ = utils.ForLinesInFile(path, func(line string) error {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			return nil
		}

		parsed, comment, _, _, err := ssh.ParseAuthorizedKey([]byte(line))
		if err != nil {
			keys = append(keys, AuthorizedKey{Type: "unrecognized"})
			return nil
		}

		keys = append(keys, AuthorizedKey{
			Type:        parsed.Type(),
			Fingerprint: ssh.FingerprintSHA256(parsed),
			Comment:     comment,
		})

		return nil
	})

	return keys
}
