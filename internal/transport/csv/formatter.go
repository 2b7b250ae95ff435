// Package csv renders ranked relays as comma separated lines:
//
//	distance,identifier,nickname,ports,os,bandwidth
//
// No header row is written.
package csv

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/kailas-cloud/relaynn/internal/domain/candidate"
	"github.com/kailas-cloud/relaynn/internal/domain/distance"
	"github.com/kailas-cloud/relaynn/internal/domain/fingerprint"
)

// Sep is the column separator.
const Sep = ","

// Option tunes rendering.
type Option func(*formatter)

// WithEmphasis sets how differing characters are rendered when highlighting.
func WithEmphasis(fn func(string) string) Option {
	return func(f *formatter) { f.emphasis = fn }
}

// WithShortID truncates identifiers to their first n characters. n <= 0 keeps them whole.
func WithShortID(n int) Option {
	return func(f *formatter) { f.shortID = n }
}

type formatter struct {
	highlight bool
	emphasis  func(string) string
	shortID   int
}

// Lines returns the rendered rows of results. The sequence is lazy and can be
// ranged over any number of times. Lines carry no trailing newline.
//
// With highlight set, characters of the nickname, ports, os and bandwidth
// columns that the alignment tags as anything other than a match are passed
// through the emphasis function. Candidates without an alignment render plain.
func Lines(results []candidate.Candidate, highlight bool, opts ...Option) iter.Seq[string] {
	f := &formatter{highlight: highlight, emphasis: defaultEmphasis()}
	for _, opt := range opts {
		opt(f)
	}

	return func(yield func(string) bool) {
		for i := range results {
			if !yield(f.line(&results[i])) {
				return
			}
		}
	}
}

// Write writes each line followed by a newline and returns the number of lines written.
func Write(w io.Writer, lines iter.Seq[string]) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			return n, fmt.Errorf("write row: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return n, fmt.Errorf("write row: %w", err)
		}
		n++
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flush rows: %w", err)
	}
	return n, nil
}

func (f *formatter) line(c *candidate.Candidate) string {
	r := c.Relay()
	fields := fingerprint.Fields(r)

	id := r.ID()
	if f.shortID > 0 && len(id) > f.shortID {
		id = id[:f.shortID]
	}

	cols := make([]string, 0, 2+fingerprint.NumFields)
	cols = append(cols, strconv.Itoa(c.Distance()), id)

	if f.highlight && c.HasAlignment() {
		if marked, ok := f.mark(fields, c.Alignment()); ok {
			return strings.Join(append(cols, marked[:]...), Sep)
		}
	}
	return strings.Join(append(cols, fields[:]...), Sep)
}

// mark renders every field with its non-matching runs emphasised. It reports
// false when the alignment does not describe this fingerprint.
func (f *formatter) mark(
	fields [fingerprint.NumFields]string, alignment distance.Alignment,
) ([fingerprint.NumFields]string, bool) {
	var out [fingerprint.NumFields]string
	kinds := alignment.TargetKinds()

	k := 0
	for i, field := range fields {
		if i > 0 {
			k++ // FieldSep
		}
		var b, run strings.Builder
		for _, ch := range field {
			if k >= len(kinds) {
				return out, false
			}
			if kinds[k] == distance.Match {
				if run.Len() > 0 {
					b.WriteString(f.emphasis(run.String()))
					run.Reset()
				}
				b.WriteRune(ch)
			} else {
				run.WriteRune(ch)
			}
			k++
		}
		if run.Len() > 0 {
			b.WriteString(f.emphasis(run.String()))
		}
		out[i] = b.String()
	}
	return out, k == len(kinds)
}

func defaultEmphasis() func(string) string {
	c := color.New(color.FgRed, color.Bold)
	c.EnableColor()
	return func(s string) string { return c.Sprint(s) }
}
