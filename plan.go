package dumper

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/lafdump/partition-dumper/table"
)

// Ceiling is the largest partition eligible for dumping.
type Ceiling struct {
	limit   int64
	limited bool
}

// Unlimited dumps partitions of any size.
func Unlimited() Ceiling {
	return Ceiling{}
}

// CeilingBytes limits partitions to n bytes.
func CeilingBytes(n int64) Ceiling {
	return Ceiling{limit: n, limited: true}
}

// CeilingKiB converts the command line form, where 0 means unlimited.
// Values too large to express in bytes are unlimited as well.
func CeilingKiB(k int64) Ceiling {
	if k == 0 || k > math.MaxInt64/1024 {
		return Unlimited()
	}
	return CeilingBytes(k * 1024)
}

// Limit returns the ceiling in bytes and whether there is one.
func (c Ceiling) Limit() (int64, bool) {
	return c.limit, c.limited
}

// Exceeds reports whether a partition of length bytes is too large.
func (c Ceiling) Exceeds(length int64) bool {
	return c.limited && length > c.limit
}

func (c Ceiling) String() string {
	if !c.limited {
		return "unlimited"
	}
	return fmt.Sprintf("%dK", c.limit/1024)
}

// Entry is a partition planned for dumping.
type Entry struct {
	Partition table.Descriptor
	Label     string
	Offset    int64
	Length    int64
	Path      string
}

// OutputPath is where the image of the named partition is written.
func OutputPath(outDir, name string) string {
	return filepath.Join(outDir, name+".bin")
}

// Validate checks a descriptor for inconsistencies that mean the table was
// corrupted or misread.
func Validate(d table.Descriptor, blockSize int64) error {
	switch {
	case blockSize <= 0:
		return NewInvalidDescriptorError(d, fmt.Sprintf("invalid block size %d", blockSize))
	case d.Name == "":
		// would be written as a hidden ".bin" shared by every unnamed entry
		return NewInvalidDescriptorError(d, "empty name")
	case filepath.Base(d.Name) != d.Name || d.Name == "." || d.Name == "..":
		return NewInvalidDescriptorError(d, "name is not a plain file name")
	case d.LastLBA < d.FirstLBA:
		return NewInvalidDescriptorError(d, fmt.Sprintf("last LBA %d before first LBA %d", d.LastLBA, d.FirstLBA))
	}
	limit := uint64(math.MaxInt64 / blockSize)
	if d.LastLBA >= limit || d.Blocks() > limit {
		return NewInvalidDescriptorError(d, "byte range overflows")
	}
	return nil
}

// Plan computes the byte range and output path of a partition.
func Plan(d table.Descriptor, blockSize int64, outDir string) (Entry, error) {
	if err := Validate(d, blockSize); err != nil {
		return Entry{}, err
	}
	return Entry{
		Partition: d,
		Label:     d.Label(),
		Offset:    int64(d.FirstLBA) * blockSize,
		Length:    int64(d.Blocks()) * blockSize,
		Path:      OutputPath(outDir, d.Name),
	}, nil
}
