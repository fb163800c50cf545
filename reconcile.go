package dumper

import (
	"io/fs"
	"os"

	"github.com/pkg/errors"
)

// FileSize is the size of an output file, which may not exist.
type FileSize struct {
	n       int64
	present bool
}

func Present(n int64) FileSize {
	return FileSize{n: n, present: true}
}

func Absent() FileSize {
	return FileSize{}
}

// Get returns the size and whether the file exists.
func (s FileSize) Get() (int64, bool) {
	return s.n, s.present
}

// ProbeFile stats path. Only a missing file is reported as Absent, any other
// failure is returned.
func ProbeFile(path string) (FileSize, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Absent(), nil
	}
	if err != nil {
		return FileSize{}, errors.Wrapf(err, "failed to stat %s", path)
	}
	if !info.Mode().IsRegular() {
		return FileSize{}, errors.Errorf("%s exists and is not a regular file", path)
	}
	return Present(info.Size()), nil
}

// Action is what to do with a planned partition.
type Action int

const (
	ActionDump Action = iota
	ActionSkipComplete
	ActionAbortOversized
)

func (a Action) String() string {
	switch a {
	case ActionSkipComplete:
		return "skip-complete"
	case ActionAbortOversized:
		return "abort-oversized"
	default:
		return "dump"
	}
}

// Decision is the outcome of reconciling an output file.
type Decision struct {
	Action   Action
	Existing FileSize
}

// Decide compares an existing file against the partition length. Resuming
// is per file: anything short of complete is dumped again from scratch.
func Decide(existing FileSize, length int64) Action {
	n, _ := existing.Get()
	switch {
	case n > length:
		return ActionAbortOversized
	case n == length:
		return ActionSkipComplete
	default:
		return ActionDump
	}
}

// Reconcile probes path and decides what to do with it.
func Reconcile(path string, length int64) (Decision, error) {
	existing, err := ProbeFile(path)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Action:   Decide(existing, length),
		Existing: existing,
	}, nil
}
