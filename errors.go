package dumper

import (
	"fmt"
	"strings"

	"github.com/lafdump/partition-dumper/table"
)

// InvalidDescriptorError means the partition table is inconsistent.
type InvalidDescriptorError struct {
	Partition table.Descriptor
	reason    string
}

func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid partition %d (%s): %s", e.Partition.Index, e.Partition.Name, e.reason)
}

func NewInvalidDescriptorError(d table.Descriptor, reason string) *InvalidDescriptorError {
	return &InvalidDescriptorError{
		Partition: d,
		reason:    reason,
	}
}

type ShortReadError struct {
	Offset int64
	Want   int64
	Got    int64
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("unexpected bytes read at disk offset %d (%d != %d)", e.Offset, e.Got, e.Want)
}

func NewShortReadError(offset, want, got int64) *ShortReadError {
	return &ShortReadError{
		Offset: offset,
		Want:   want,
		Got:    got,
	}
}

// PartitionsFailedError collects the partitions that failed in a run that
// kept going past errors.
type PartitionsFailedError struct {
	Failed map[string]error
	order  []string
}

func (e *PartitionsFailedError) Error() string {
	msgs := make([]string, 0, len(e.order))
	for _, name := range e.order {
		msgs = append(msgs, fmt.Sprintf("%s: %v", name, e.Failed[name]))
	}
	return fmt.Sprintf("%d partition(s) failed: %s", len(e.order), strings.Join(msgs, "; "))
}

func (e *PartitionsFailedError) add(name string, err error) {
	if e.Failed == nil {
		e.Failed = make(map[string]error)
	}
	e.Failed[name] = err
	e.order = append(e.order, name)
}
