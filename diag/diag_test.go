// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

package diag_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libfy/fy/diag"
	"github.com/libfy/fy/fyerr"
)

func TestCollectorRecordsAndFormats(t *testing.T) {
	var buf bytes.Buffer
	c := diag.NewCollector(&buf, diag.SeverityDebug, diag.FormatLogfmt)

	c.Report(diag.Record{Severity: diag.SeverityWarn, Op: "collection.Merge", Msg: "duplicate key dropped"})
	require.Len(t, c.Records(), 1)
	require.Contains(t, c.String(), "duplicate key dropped")
}

func TestCollectorReportErrorExtractsFyerr(t *testing.T) {
	var buf bytes.Buffer
	c := diag.NewCollector(&buf, diag.SeverityDebug, diag.FormatJSON)

	err := fyerr.New(fyerr.OutOfMemory, "alloc.Linear.Store", "arena exhausted")
	c.ReportError(err)

	require.Len(t, c.Records(), 1)
	require.Equal(t, "alloc.Linear.Store", c.Records()[0].Op)
}
