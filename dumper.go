// Package dumper dumps the partitions of a device to image files, resuming
// interrupted runs by skipping partitions whose image is already complete.
package dumper

import (
	"context"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lafdump/partition-dumper/device"
	"github.com/lafdump/partition-dumper/table"
)

const Version = "1.0.0"

// Dumper walks a partition table in order and dumps every partition that
// fits the ceiling and is not already complete in OutDir.
type Dumper struct {
	Channel   device.Channel
	Reporter  Reporter
	Log       logrus.FieldLogger
	OutDir    string
	BlockSize int64
	Ceiling   Ceiling
	ChunkSize int64
	// Only restricts the run to partitions matching a number or name.
	Only []string
	// KeepGoing continues with the next partition after a failed dump.
	KeepGoing bool
}

// Summary lists partition names by outcome.
type Summary struct {
	Dumped       []string
	SkippedLarge []string
	Complete     []string
	Oversized    []string
	Failed       []string
}

func (d *Dumper) logger() logrus.FieldLogger {
	if d.Log != nil {
		return d.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Run processes parts in order. The table is validated as a whole before
// the first partition is touched.
func (d *Dumper) Run(ctx context.Context, parts []table.Descriptor) (*Summary, error) {
	if d.Channel == nil || d.Reporter == nil {
		return nil, errors.New("dumper needs a channel and a reporter")
	}
	for _, p := range parts {
		if err := Validate(p, d.BlockSize); err != nil {
			return nil, err
		}
	}
	selected, err := d.selected(parts)
	if err != nil {
		return nil, err
	}

	log := d.logger()
	exec := &Executor{Channel: d.Channel, ChunkSize: d.ChunkSize}
	summary := &Summary{}
	failed := &PartitionsFailedError{}

	for _, p := range parts {
		if !selected[p.Index] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		entry, err := Plan(p, d.BlockSize, d.OutDir)
		if err != nil {
			return summary, err
		}
		if err := d.process(entry, exec, log, summary); err != nil {
			summary.Failed = append(summary.Failed, p.Name)
			if !d.KeepGoing {
				return summary, err
			}
			failed.add(p.Name, err)
		}
	}

	d.Reporter.Finish()
	if len(failed.order) > 0 {
		return summary, failed
	}
	return summary, nil
}

func (d *Dumper) process(e Entry, exec *Executor, log logrus.FieldLogger, summary *Summary) error {
	name := e.Partition.Name
	if d.Ceiling.Exceeds(e.Length) {
		d.Reporter.Report(Event{Kind: KindSkippedLarge, Entry: e})
		summary.SkippedLarge = append(summary.SkippedLarge, name)
		return nil
	}

	decision, err := Reconcile(e.Path, e.Length)
	if err != nil {
		d.Reporter.Report(Event{Kind: KindFailed, Entry: e, Err: err})
		return errors.Wrapf(err, "partition %s", name)
	}
	switch decision.Action {
	case ActionAbortOversized:
		existing, _ := decision.Existing.Get()
		d.Reporter.Report(Event{Kind: KindOversized, Entry: e, Existing: existing})
		summary.Oversized = append(summary.Oversized, name)
		return nil
	case ActionSkipComplete:
		d.Reporter.Report(Event{Kind: KindSkipComplete, Entry: e})
		summary.Complete = append(summary.Complete, name)
		return nil
	}

	d.Reporter.Report(Event{Kind: KindDump, Entry: e})
	log.Debugf("Will read %d bytes at disk offset %d", e.Length, e.Offset)
	written, err := exec.Execute(e.Offset, e.Length, e.Path, func(written, total int64) {
		d.Reporter.Progress(e, written, total)
	})
	if err != nil {
		d.Reporter.Report(Event{Kind: KindFailed, Entry: e, Written: written, Err: err})
		return errors.Wrapf(err, "partition %s", name)
	}
	d.Reporter.Report(Event{Kind: KindDumped, Entry: e, Written: written})
	summary.Dumped = append(summary.Dumped, name)
	return nil
}

// selected returns the indices of the partitions to process.
func (d *Dumper) selected(parts []table.Descriptor) (map[int]bool, error) {
	sel := make(map[int]bool, len(parts))
	if len(d.Only) == 0 {
		for _, p := range parts {
			sel[p.Index] = true
		}
		return sel, nil
	}
	for _, q := range d.Only {
		found := false
		n, err := strconv.Atoi(q)
		for _, p := range parts {
			if (err == nil && p.Index == n) || p.Name == q {
				sel[p.Index] = true
				found = true
			}
		}
		if !found {
			return nil, table.NewPartitionNotFoundError(q)
		}
	}
	return sel, nil
}
