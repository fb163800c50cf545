package dumper

import (
	"fmt"
	"io"
)

// Kind identifies a reported event.
type Kind int

const (
	KindSkippedLarge Kind = iota
	KindOversized
	KindSkipComplete
	KindDump
	KindDumped
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindSkippedLarge:
		return "skipped_large"
	case KindOversized:
		return "abort_oversized"
	case KindSkipComplete:
		return "skip_complete"
	case KindDump:
		return "dump"
	case KindDumped:
		return "dumped"
	case KindFailed:
		return "failed"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is a decision or outcome for a single partition. Existing is set for
// KindOversized, Written for KindDumped and KindFailed, Err for KindFailed.
type Event struct {
	Kind     Kind
	Entry    Entry
	Existing int64
	Written  int64
	Err      error
}

// Reporter receives every decision the dumper takes, before the matching
// I/O happens.
type Reporter interface {
	Report(ev Event)
	Progress(e Entry, written, total int64)
	Finish()
}

// BatchReporter prints machine readable lines. Decisions are prefixed with
// '#', progress lines are percent:doneK:totalK.
type BatchReporter struct {
	W io.Writer
}

func NewBatchReporter(w io.Writer) *BatchReporter {
	return &BatchReporter{W: w}
}

func (r *BatchReporter) Report(ev Event) {
	e := ev.Entry
	switch ev.Kind {
	case KindSkippedLarge:
		fmt.Fprintf(r.W, "#Ignoring large partition %s (%s) of size %dK\n", e.Label, e.Partition.Name, e.Length/1024)
	case KindOversized:
		fmt.Fprintf(r.W, "#%s: unexpected size %dK, larger than %dK\n", e.Path, ev.Existing/1024, e.Length/1024)
	case KindSkipComplete:
		fmt.Fprintf(r.W, "#Skipping already existing partition %s (%s)\n", e.Label, e.Partition.Name)
	case KindDump:
		fmt.Fprintf(r.W, "#%s (%s)\n", e.Label, e.Partition.Name)
	case KindFailed:
		fmt.Fprintf(r.W, "#Failed partition %s (%s) after %dK: %v\n", e.Label, e.Partition.Name, ev.Written/1024, ev.Err)
	}
}

func (r *BatchReporter) Progress(_ Entry, written, total int64) {
	pct := int64(100)
	if total > 0 {
		pct = written * 100 / total
	}
	fmt.Fprintf(r.W, "%d:%d:%d\n", pct, written/1024, total/1024)
}

func (r *BatchReporter) Finish() {
	fmt.Fprintln(r.W, "#All finished")
}
