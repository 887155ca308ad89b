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

package provision

import (
	"strings"

	"golang.org/x/crypto/ssh"
)

// allowedKeyPrefixes is the allow-list deciding key validity. Validity is a
// pure function of the first field; the key body is deliberately not
// parsed for the accept/reject decision.
var allowedKeyPrefixes = []string{
	"ssh-rsa",
	"ssh-ed25519",
	"ssh-dss",
	"ecdsa-sha2-nistp256",
	"ecdsa-sha2-nistp384",
	"ecdsa-sha2-nistp521",
	"sk-ssh-ed25519@openssh.com",
	"sk-ecdsa-sha2-nistp256@openssh.com",
}

// PublicKey is a validated SSH public key line. Immutable once parsed.
type PublicKey struct {
	// Raw single-line key as it will appear in authorized_keys.
	Raw string

	// AlgorithmPrefix is the key's first field (e.g. ssh-ed25519).
	AlgorithmPrefix string
}

// ParsePublicKey validates a raw public key string against the prefix
// allow-list. Surrounding whitespace is trimmed; the line content is
// otherwise preserved verbatim, comment included.
func ParsePublicKey(raw string) (*PublicKey, error) {
	raw = strings.TrimSpace(raw)

	if raw == "" {
		return nil, NewValidationError("empty public key")
	}

	if strings.ContainsRune(raw, '\n') {
		return nil, NewValidationError("public key must be a single line")
	}

	fields := strings.Fields(raw)

	for _, prefix := range allowedKeyPrefixes {
		if fields[0] == prefix {
			return &PublicKey{Raw: raw, AlgorithmPrefix: prefix}, nil
		}
	}

	return nil, NewValidationError("unrecognized public key type '%s'", fields[0])
}

// Fingerprint returns the SHA256 fingerprint of the key, or an empty string
// when the key body does not decode. Used for display only; membership and
// de-duplication decisions are always made on the raw line.
func (k *PublicKey) Fingerprint() string {
	parsed, _, _, _, err := ssh.ParseAuthorizedKey([]byte(k.Raw))
	if err != nil {
		return ""
	}

	return ssh.FingerprintSHA256(parsed)
}
