// Package device provides the channels partitions are read through.
//
// A Channel is the only capability the dumper needs from a device: read an
// exact byte range at an absolute offset. Opening, handshaking and framing
// are the business of whoever constructs the Channel.
package device

import (
	"fmt"
	"io"
)

// Channel reads raw bytes from an already opened device.
type Channel interface {
	// ReadRange returns exactly length bytes starting at offset, or an error.
	ReadRange(offset, length int64) ([]byte, error)
}

// Close closes ch if it holds resources.
func Close(ch Channel) error {
	if c, ok := ch.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// OutOfRangeError is returned for reads past the end of the device.
type OutOfRangeError struct {
	Offset int64
	Length int64
	Size   int64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("read of %d bytes at offset %d exceeds device size %d", e.Length, e.Offset, e.Size)
}

func NewOutOfRangeError(offset, length, size int64) *OutOfRangeError {
	return &OutOfRangeError{
		Offset: offset,
		Length: length,
		Size:   size,
	}
}

// LengthMismatchError is returned when a transfer delivers a different
// number of bytes than requested.
type LengthMismatchError struct {
	Offset int64
	Want   int64
	Got    int64
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("read length mismatch at offset %d: %d != %d", e.Offset, e.Got, e.Want)
}

func NewLengthMismatchError(offset, want, got int64) *LengthMismatchError {
	return &LengthMismatchError{
		Offset: offset,
		Want:   want,
		Got:    got,
	}
}
