package dumper

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/lafdump/partition-dumper/device"
)

const DefaultChunkSize = 1024 * 1024

// ProgressFunc is called after every chunk written.
type ProgressFunc func(written, total int64)

// File is the destination of a dump.
type File interface {
	io.Writer
	Sync() error
	Close() error
}

// Executor copies byte ranges from a device channel into files.
type Executor struct {
	Channel   device.Channel
	ChunkSize int64
	// Create opens a truncated destination. Nil means os.OpenFile.
	Create func(path string) (File, error)
}

func createFile(path string) (File, error) {
	return os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0o644)
}

// Execute writes length bytes read at offset to a truncated file at dst.
// The file is written front to back, so an interrupted dump always leaves a
// file shorter than length.
func (e *Executor) Execute(offset, length int64, dst string, progress ProgressFunc) (written int64, err error) {
	chunk := e.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	create := e.Create
	if create == nil {
		create = createFile
	}
	out, err := create(dst)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create %s", dst)
	}
	defer func() {
		if out != nil {
			_ = out.Close()
		}
	}()

	for written < length {
		n := length - written
		if n > chunk {
			n = chunk
		}
		data, err := e.Channel.ReadRange(offset+written, n)
		if err != nil {
			return written, errors.Wrapf(err, "read at disk offset %d", offset+written)
		}
		if int64(len(data)) != n {
			return written, NewShortReadError(offset+written, n, int64(len(data)))
		}
		m, err := out.Write(data)
		written += int64(m)
		if err != nil {
			return written, errors.Wrapf(err, "failed to write %s", dst)
		}
		if progress != nil {
			progress(written, length)
		}
	}

	// A full-length file counts as complete on the next run, so it must not
	// survive a failed sync or close.
	if err := out.Sync(); err != nil {
		return 0, discard(dst, errors.Wrapf(err, "failed to sync %s", dst))
	}
	f := out
	out = nil
	if err := f.Close(); err != nil {
		return 0, discard(dst, errors.Wrapf(err, "failed to close %s", dst))
	}
	return written, nil
}

func discard(dst string, err error) error {
	if terr := os.Truncate(dst, 0); terr != nil {
		return errors.Wrapf(err, "truncate %s: %v", dst, terr)
	}
	return err
}
