package device

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// one bulk read returns at most 16 KiB, part of which is the response header
	maxBulkRead = 16 * 1024

	DefaultAttempts = 3
)

// MaxTransfer returns the largest block-aligned transfer that fits a single
// bulk read with room left for the header.
func MaxTransfer(blockSize int64) int64 {
	if blockSize <= 0 || blockSize >= maxBulkRead {
		return maxBulkRead
	}
	return (maxBulkRead - blockSize) / blockSize * blockSize
}

// Chunked splits reads into bounded transfers and retries failed transfers.
type Chunked struct {
	Channel  Channel
	MaxChunk int64
	Attempts int
	Log      logrus.FieldLogger
}

func NewChunked(ch Channel, blockSize int64, log logrus.FieldLogger) *Chunked {
	return &Chunked{
		Channel:  ch,
		MaxChunk: MaxTransfer(blockSize),
		Attempts: DefaultAttempts,
		Log:      log,
	}
}

func (c *Chunked) ReadRange(offset, length int64) ([]byte, error) {
	if length < 0 {
		return nil, errors.Errorf("invalid read length %d", length)
	}
	chunk := c.MaxChunk
	if chunk <= 0 {
		chunk = length
	}
	out := make([]byte, 0, length)
	for done := int64(0); done < length; {
		n := length - done
		if n > chunk {
			n = chunk
		}
		data, err := c.transfer(offset+done, n)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
		done += n
	}
	return out, nil
}

func (c *Chunked) transfer(offset, length int64) ([]byte, error) {
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := c.Channel.ReadRange(offset, length)
		if err == nil && int64(len(data)) != length {
			err = NewLengthMismatchError(offset, length, int64(len(data)))
		}
		if err == nil {
			return data, nil
		}
		var oor *OutOfRangeError
		if errors.As(err, &oor) {
			return nil, err
		}
		lastErr = err
		if c.Log != nil {
			c.Log.WithFields(logrus.Fields{
				"offset":  offset,
				"length":  length,
				"attempt": attempt,
			}).Debugf("read failed: %v", err)
		}
	}
	return nil, errors.Wrapf(lastErr, "read %d bytes at offset %d failed after %d attempts", length, offset, attempts)
}

func (c *Chunked) Close() error {
	return Close(c.Channel)
}
