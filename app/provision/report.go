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
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go.qbee.io/doorkeep/app/log"
)

// Report is a single action record produced during apply or cleanup.
type Report struct {
	// RunID of the invocation that produced the report.
	RunID string

	// Severity of the report. Can be INFO, WARN or ERR.
	Severity string

	// Text summary of the report.
	Text string

	// Timestamp when the report was created.
	Timestamp int64
}

func (report Report) String() string {
	return fmt.Sprintf("[%s] %s", report.Severity, report.Text)
}

// Reporter collects action reports from a single invocation and forwards
// them to the console and the operation log.
type Reporter struct {
	runID           string
	reports         []Report
	reportToConsole bool
}

// NewReporter returns a new instance of Reporter with a fresh run ID.
func NewReporter(reportToConsole bool) *Reporter {
	return &Reporter{
		runID:           uuid.NewString(),
		reports:         make([]Report, 0),
		reportToConsole: reportToConsole,
	}
}

// RunID of this invocation.
func (reporter *Reporter) RunID() string {
	return reporter.runID
}

// Reports returns collected reports.
func (reporter *Reporter) Reports() []Report {
	return reporter.reports
}

type reporterContextKey struct{}

// Context returns a context with the reporter attached to it.
func (reporter *Reporter) Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, reporterContextKey{}, reporter)
}

const (
	severityInfo    = "INFO"
	severityWarning = "WARN"
	severityError   = "ERR"
)

// ReportInfo adds an info message to the reporter instance set in context.
func ReportInfo(ctx context.Context, extraLog any, msgFmt string, args ...any) {
	addReport(ctx, severityInfo, extraLog, msgFmt, args...)
}

// ReportWarning adds a warning message to the reporter instance set in context.
func ReportWarning(ctx context.Context, extraLog any, msgFmt string, args ...any) {
	addReport(ctx, severityWarning, extraLog, msgFmt, args...)
}

// ReportError adds an error message to the reporter instance set in context.
func ReportError(ctx context.Context, extraLog any, msgFmt string, args ...any) {
	addReport(ctx, severityError, extraLog, msgFmt, args...)
}

func addReport(ctx context.Context, severity string, extraLog any, msgFmt string, args ...any) {
	reporter, ok := ctx.Value(reporterContextKey{}).(*Reporter)
	if !ok {
		return
	}

	var extraLogText string

	switch extraLogValue := extraLog.(type) {
	case string:
		extraLogText = extraLogValue
	case []byte:
		extraLogText = string(extraLogValue)
	case error:
		extraLogText = extraLogValue.Error()
	}

	report := Report{
		RunID:     reporter.runID,
		Severity:  severity,
		Text:      fmt.Sprintf(msgFmt, args...),
		Timestamp: time.Now().Unix(),
	}

	if reporter.reportToConsole {
		fmt.Println(report)
	}

	log.Operationf("run=%s [%s] %s", reporter.runID, severity, report.Text)

	if extraLogText != "" {
		log.Operationf("run=%s [%s] output: %s", reporter.runID, severity, extraLogText)
	}

	reporter.reports = append(reporter.reports, report)
}
