// Copyright 2025 The fy Project Contributors
// SPDX-License-Identifier: Apache-2.0

// Package diag implements the "optional diag collector attached to the
// builder" referenced by spec.md §4.3.1 and §7. spec.md §1 names "the
// diagnostics subsystem" as an external collaborator addressed solely
// through its interface; this package is that interface's minimal,
// in-module implementation — a thin structured-logging sink, not a
// full diagnostics engine.
package diag

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/libfy/fy/fyerr"
)

// Severity mirrors the slog levels the collector accepts, kept as its
// own type so callers don't need to import log/slog to use Collector.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) slogLevel() slog.Level {
	switch s {
	case SeverityDebug:
		return slog.LevelDebug
	case SeverityWarn:
		return slog.LevelWarn
	case SeverityError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Record is one collected diagnostic: an operation name, a message, the
// error kind if any, and optionally a source marker (file/line/column)
// rendered as a string by the caller (codec owns Marker decoding).
type Record struct {
	Severity Severity
	Op       string
	Msg      string
	Kind     fyerr.Kind
	Location string
}

// Collector gathers Records in order and forwards them to an slog
// logger, following the teacher's CreateHandler(w, level, format)
// convention for constructing the underlying handler.
type Collector struct {
	mu      sync.Mutex
	logger  *slog.Logger
	records []Record
}

// Format selects the slog handler shape, same two choices the teacher
// supports.
type Format string

const (
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
)

// NewCollector builds a Collector writing human/machine-readable logs
// to w in the given format, at minLevel and above.
func NewCollector(w io.Writer, minLevel Severity, format Format) *Collector {
	var h slog.Handler
	opts := &slog.HandlerOptions{AddSource: true, Level: minLevel.slogLevel()}
	switch format {
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return &Collector{logger: slog.New(h)}
}

// Report records and logs one diagnostic.
func (c *Collector) Report(r Record) {
	c.mu.Lock()
	c.records = append(c.records, r)
	c.mu.Unlock()

	c.logger.Log(context.Background(), r.Severity.slogLevel(), r.Msg,
		slog.String("op", r.Op),
		slog.String("kind", r.Kind.String()),
		slog.String("location", r.Location),
	)
}

// ReportError is a convenience wrapper building a Record from a
// *fyerr.Error's own fields.
func (c *Collector) ReportError(err error) {
	if err == nil {
		return
	}
	var msg string
	kind := fyerr.KindOf(err)
	op := ""
	if fe, ok := err.(*fyerr.Error); ok {
		op = fe.Op
		msg = fe.Msg
	} else {
		msg = err.Error()
	}
	c.Report(Record{Severity: SeverityError, Op: op, Msg: msg, Kind: kind})
}

// Records returns every Record collected so far, in order.
func (c *Collector) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// String renders every collected record as CLI-facing text, per
// spec.md §7's "print the collected diagnostics to stderr".
func (c *Collector) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := ""
	for _, r := range c.records {
		s += fmt.Sprintf("%s: %s: %s\n", r.Op, r.Kind, r.Msg)
	}
	return s
}
