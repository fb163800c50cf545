package device

import (
	"io"
	"os"

	"github.com/diskfs/go-diskfs/backend"
	"github.com/diskfs/go-diskfs/backend/file"
	"github.com/pkg/errors"
)

// Image is a Channel over a raw disk image or a local block device.
type Image struct {
	Path    string
	storage backend.Storage
	size    int64
}

// OpenImage opens path read-only.
func OpenImage(path string) (*Image, error) {
	storage, err := file.OpenFromPath(path, true)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	// block devices report a zero size through stat, seeking does not
	size, err := storage.Seek(0, io.SeekEnd)
	if err != nil {
		_ = storage.Close()
		return nil, errors.Wrapf(err, "failed to determine size of %s", path)
	}
	return &Image{
		Path:    path,
		storage: storage,
		size:    size,
	}, nil
}

// Size returns the size of the image in bytes.
func (i *Image) Size() int64 {
	return i.size
}

func (i *Image) ReadRange(offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 || offset > i.size || length > i.size-offset {
		return nil, NewOutOfRangeError(offset, length, i.size)
	}
	buf := make([]byte, length)
	n, err := i.storage.ReadAt(buf, offset)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == length) {
		return nil, errors.Wrapf(err, "read %d bytes at offset %d", length, offset)
	}
	if int64(n) != length {
		return nil, NewLengthMismatchError(offset, length, int64(n))
	}
	return buf, nil
}

// device returns the underlying file when it is a device node.
func (i *Image) device() (*os.File, bool) {
	f, err := i.storage.Sys()
	if err != nil {
		return nil, false
	}
	info, err := f.Stat()
	if err != nil || info.Mode()&os.ModeDevice == 0 {
		return nil, false
	}
	return f, true
}

// IsDevice reports whether the image is a block device rather than a file.
func (i *Image) IsDevice() bool {
	_, ok := i.device()
	return ok
}

// LogicalBlockSize returns the logical sector size the kernel reports for a
// block device, or 0 for regular files and on platforms without the ioctl.
func (i *Image) LogicalBlockSize() int {
	f, ok := i.device()
	if !ok {
		return 0
	}
	return logicalSectorSize(f)
}

func (i *Image) Close() error {
	return i.storage.Close()
}
