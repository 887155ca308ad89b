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

package log

import (
	"fmt"
	"log"
	"os"
	"time"
)

// Supported logs severity levels.
const (
	ERROR = iota
	WARNING
	INFO
	DEBUG
)

var levelPrefix = map[int]string{
	ERROR:   "[ERROR] ",
	WARNING: "[WARNING] ",
	INFO:    "[INFO] ",
	DEBUG:   "[DEBUG] ",
}

var level = INFO

// operationLog is an append-only file receiving a copy of every emitted
// line, regardless of the console log level. Nil until opened.
var operationLog *os.File

func logf(msgLevel int, msg string, args ...any) {
	if operationLog != nil {
		line := fmt.Sprintf(msg, args...)
		_, _ = fmt.Fprintf(operationLog, "%s %s%s\n",
			time.Now().Format(time.RFC3339), levelPrefix[msgLevel], line)
	}

	if level < msgLevel {
		return
	}

	log.Printf(levelPrefix[msgLevel]+msg, args...)
}

// Debugf logs message with DEBUG severity.
func Debugf(msg string, args ...any) {
	logf(DEBUG, msg, args...)
}

// Infof logs message with INFO severity.
func Infof(msg string, args ...any) {
	logf(INFO, msg, args...)
}

// Warnf logs message with WARNING severity.
func Warnf(msg string, args ...any) {
	logf(WARNING, msg, args...)
}

// Errorf logs message with ERROR severity.
func Errorf(msg string, args ...any) {
	logf(ERROR, msg, args...)
}

// SetLevel sets current log level.
func SetLevel(newLevel int) {
	level = newLevel
}

// Operationf appends a line to the operation log only, bypassing the
// console logger. Used for report lines which are already echoed to stdout.
func Operationf(msg string, args ...any) {
	if operationLog == nil {
		return
	}

	_, _ = fmt.Fprintf(operationLog, "%s %s\n",
		time.Now().Format(time.RFC3339), fmt.Sprintf(msg, args...))
}

// OpenOperationLog starts appending all emitted log lines to the file at
// the provided path. The file is created root-readable only.
func OpenOperationLog(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("error opening operation log %s: %w", path, err)
	}

	operationLog = file

	return nil
}

// CloseOperationLog stops appending to the operation log file.
func CloseOperationLog() {
	if operationLog == nil {
		return
	}

	_ = operationLog.Close()
	operationLog = nil
}
