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

package assert

import (
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
)

// Equal asserts that a and b are equal.
func Equal(t *testing.T, got, expected interface{}) {
	if !reflect.DeepEqual(got, expected) {
		failTest(t, "expected:\n%#v\ngot:\n%#v", expected, got)
	}
}

// NotEqual asserts that a and b are not equal.
func NotEqual(t *testing.T, got, expected interface{}) {
	if reflect.DeepEqual(got, expected) {
		failTest(t, "expected not equal, got both with the same value:\n%#v", got)
	}
}

// HasPrefix asserts that value starts with prefix.
func HasPrefix(t *testing.T, value, prefix string) {
	if !strings.HasPrefix(value, prefix) {
		failTest(t, "missing prefix %s in %s", prefix, value)
	}
}

// Length asserts length of value (slice, string, etc.).
func Length(t *testing.T, value any, expectedLength int) {
	gotLength := reflect.ValueOf(value).Len()
	if gotLength != expectedLength {
		failTest(t, "expected length %d, got %d", expectedLength, gotLength)
	}
}

// False asserts that provided value is false.
func False(t *testing.T, value bool) {
	if value {
		failTest(t, "expected false, got true")
	}
}

// True asserts that provided value is true.
func True(t *testing.T, value bool) {
	if !value {
		failTest(t, "expected true, got false")
	}
}

// NoError asserts that provided error is nil.
func NoError(t *testing.T, err error) {
	if err != nil {
		failTest(t, "unexpected error: %v", err)
	}
}

// ErrorContains asserts that provided error is non-nil and its message
// contains the provided substring.
func ErrorContains(t *testing.T, err error, substring string) {
	if err == nil {
		failTest(t, "expected error containing %q, got nil", substring)
		return
	}

	if !strings.Contains(err.Error(), substring) {
		failTest(t, "expected error containing %q, got: %v", substring, err)
	}
}

// failTest prints out a formatted failure message and fails the test immediately.
func failTest(t *testing.T, msg string, args ...any) {
	logMsg := fmt.Sprintf(msg, args...)

	_, file, line, ok := runtime.Caller(2)

	prefix := "    "
	if ok {
		prefix = fmt.Sprintf("%s%s:%d: ", prefix, filepath.Base(file), line)
	}

	lines := strings.Split(logMsg, "\n")

	for i, line := range lines {
		fmt.Printf("%s%s\n", prefix, line)
		if i == 0 {
			prefix = strings.Repeat(" ", len(prefix))
		}
	}

	t.FailNow()
}
