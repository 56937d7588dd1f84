/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package inject splices fixed blocks into a document at literal markers.
package inject

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/friendsincode/d4events/internal/telemetry"
	"github.com/friendsincode/d4events/internal/widget"
)

// ErrMarkerNotFound is returned when an injection's marker is absent.
var ErrMarkerNotFound = errors.New("marker not found")

// Placement says on which side of the marker a block lands.
type Placement int

const (
	Before Placement = iota
	After
)

func (p Placement) String() string {
	if p == After {
		return "after"
	}
	return "before"
}

// Injection is one block and the marker it is anchored to.
type Injection struct {
	Name      string
	Marker    string
	Block     string
	Placement Placement
	// Fallbacks are tried in order when Marker is absent.
	Fallbacks []string
	// Signature detects an earlier run. Defaults to Block.
	Signature string
}

// locate returns the first marker present in doc and its offset.
func (in Injection) locate(doc string) (string, int) {
	for _, m := range append([]string{in.Marker}, in.Fallbacks...) {
		if m == "" {
			continue
		}
		if idx := strings.Index(doc, m); idx >= 0 {
			return m, idx
		}
	}
	return "", -1
}

func (in Injection) signature() string {
	if in.Signature != "" {
		return in.Signature
	}
	return in.Block
}

// Result values recorded per injection.
const (
	ResultInserted = "inserted"
	ResultSkipped  = "skipped"
	ResultMissing  = "missing_marker"
)

// Outcome is what happened to a single injection.
type Outcome struct {
	Name   string `json:"name"`
	Result string `json:"result"`
	Offset int    `json:"offset,omitempty"`
}

// Report lists outcomes in the order the injections were applied.
type Report struct {
	Outcomes []Outcome `json:"outcomes"`
}

// Changed reports whether any block was inserted.
func (r Report) Changed() bool {
	for _, o := range r.Outcomes {
		if o.Result == ResultInserted {
			return true
		}
	}
	return false
}

// Splice applies the injections in order. Each block goes next to the first
// occurrence of its marker in the document as modified so far. A block
// whose signature is already present is skipped. The first missing marker
// stops the run and the original document is returned with the error.
func Splice(doc string, injections ...Injection) (string, Report, error) {
	var report Report
	out := doc

	for _, in := range injections {
		if strings.Contains(out, in.signature()) {
			report.Outcomes = append(report.Outcomes, Outcome{Name: in.Name, Result: ResultSkipped})
			telemetry.InjectionsTotal.WithLabelValues(in.Name, ResultSkipped).Inc()
			continue
		}

		marker, idx := in.locate(out)
		if idx < 0 {
			report.Outcomes = append(report.Outcomes, Outcome{Name: in.Name, Result: ResultMissing})
			telemetry.InjectionsTotal.WithLabelValues(in.Name, ResultMissing).Inc()
			return doc, report, fmt.Errorf("%s: %w: %q", in.Name, ErrMarkerNotFound, in.Marker)
		}

		at := idx
		if in.Placement == After {
			at = idx + len(marker)
		}
		out = out[:at] + in.Block + out[at:]

		report.Outcomes = append(report.Outcomes, Outcome{Name: in.Name, Result: ResultInserted, Offset: at})
		telemetry.InjectionsTotal.WithLabelValues(in.Name, ResultInserted).Inc()
	}

	return out, report, nil
}

// Options controls File.
type Options struct {
	DryRun bool
}

// File splices the injections into the file at path and writes it back with
// its original permissions. Nothing is written on error, on a dry run, or
// when every block was already present.
func File(ctx context.Context, path string, opts Options, injections ...Injection) (Report, error) {
	_, span := telemetry.StartSpan(ctx, "inject.File",
		attribute.String("path", path),
		attribute.Bool("dry_run", opts.DryRun),
	)
	defer span.End()

	info, err := os.Stat(path)
	if err != nil {
		telemetry.RecordError(span, err)
		return Report{}, fmt.Errorf("stat %s: %w", path, err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		telemetry.RecordError(span, err)
		return Report{}, fmt.Errorf("read %s: %w", path, err)
	}

	out, report, err := Splice(string(raw), injections...)
	if err != nil {
		telemetry.RecordError(span, err)
		return report, err
	}
	if opts.DryRun || !report.Changed() {
		return report, nil
	}

	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		telemetry.RecordError(span, err)
		return report, fmt.Errorf("write %s: %w", path, err)
	}
	return report, nil
}

// Markers the tracker widget is anchored to.
const (
	MarkerResponsive = "/* Responsive */"
	MarkerStyleClose = "</style>"
	MarkerBodyOpen   = "<body>"
	MarkerNavClose   = "</nav>"
	MarkerBodyClose  = "</body>"
)

// TrackerPlan places the widget blocks: styles ahead of the responsive rules
// (or at the end of the first stylesheet), gradient defs at the top of the body, markup after the
// navigation bar, and the script at the end of the body.
func TrackerPlan(b widget.Blocks) []Injection {
	return []Injection{
		{
			Name:      "css",
			Marker:    MarkerResponsive,
			Fallbacks: []string{MarkerStyleClose},
			Block:     b.CSS,
			Placement: Before,
			Signature: widget.SignatureCSS,
		},
		{Name: "svg_defs", Marker: MarkerBodyOpen, Block: b.Defs, Placement: After, Signature: widget.SignatureDefs},
		{Name: "markup", Marker: MarkerNavClose, Block: b.Markup, Placement: After, Signature: widget.SignatureMarkup},
		{Name: "script", Marker: MarkerBodyClose, Block: b.Script, Placement: Before, Signature: widget.SignatureScript},
	}
}
