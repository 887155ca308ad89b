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
	"fmt"
	"io"
	"text/tabwriter"
)

// Render writes a human-readable audit report.
func (report *Report) Render(out io.Writer) {
	if report.Exists {
		fmt.Fprintf(out, "Account: %s (uid %d, shell %s, password %s)\n",
			report.Username, report.User.UID, report.User.Shell, report.User.PasswordLock)
	} else {
		fmt.Fprintf(out, "Account: %s (not present)\n", report.Username)
	}

	fmt.Fprintf(out, "Admin group: %s (member: %s)\n", report.AdminGroup, yesNo(report.AdminMember))
	fmt.Fprintf(out, "Passwordless sudo drop-in: %s\n", presentAbsent(report.NopasswdPresent))

	fmt.Fprintln(out, "Artifacts:")

	writer := tabwriter.NewWriter(out, 0, 1, 2, ' ', 0)
	for _, finding := range report.Findings {
		line := fmt.Sprintf("  %s\t%s\t", finding.Severity, finding.Artifact.Path)

		if finding.Severity != SeverityMissing {
			line += fmt.Sprintf("mode %04o\t", finding.ObservedMode)
		}

		if finding.Note != "" {
			line += fmt.Sprintf("(%s, expected %04o)\t", finding.Note, finding.Artifact.Mode)
		}

		_, _ = fmt.Fprintln(writer, line)
	}
	_ = writer.Flush()

	if len(report.Keys) == 0 {
		return
	}

	fmt.Fprintln(out, "Authorized keys:")
	for _, key := range report.Keys {
		if key.Fingerprint == "" {
			fmt.Fprintf(out, "  %s\n", key.Type)
			continue
		}

		fmt.Fprintf(out, "  %s %s %s\n", key.Type, key.Fingerprint, key.Comment)
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func presentAbsent(value bool) string {
	if value {
		return "present"
	}
	return "absent"
}
