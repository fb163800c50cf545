// Package testhelper builds disk images for tests.
package testhelper

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/google/uuid"
)

const DiskGUID = "43E51892-3273-42F7-BCDA-B43B80CDFC48"

// Part is a partition entry of a generated GPT. LBAs are inclusive.
type Part struct {
	Name        string
	First, Last uint64
	GUID        uuid.UUID
}

// Pattern is the byte stored at offset i of every generated partition.
func Pattern(i int64, blockSize int) byte {
	return byte(i*13 + i/int64(blockSize))
}

// BuildGPT returns a disk image of size bytes partitioned with a GPT for the
// given logical block size. Partition contents are filled with Pattern so
// dumped partitions can be compared against the image.
func BuildGPT(t testing.TB, blockSize int, size int64, parts []Part) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gpt.img")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("unable to create %s: %v", path, err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("unable to size %s: %v", path, err)
	}

	table := &gpt.Table{
		LogicalSectorSize:  blockSize,
		PhysicalSectorSize: blockSize,
		ProtectiveMBR:      true,
		GUID:               DiskGUID,
	}
	for i, p := range parts {
		table.Partitions = append(table.Partitions, &gpt.Partition{
			Index: i + 1,
			Start: p.First,
			End:   p.Last,
			Type:  gpt.LinuxFilesystem,
			Name:  p.Name,
			GUID:  strings.ToUpper(p.GUID.String()),
		})
	}
	if err := table.Write(f, size); err != nil {
		t.Fatalf("unable to write partition table: %v", err)
	}

	for _, p := range parts {
		start := int64(p.First) * int64(blockSize)
		b := make([]byte, int64(p.Last-p.First+1)*int64(blockSize))
		for i := range b {
			b[i] = Pattern(start+int64(i), blockSize)
		}
		if _, err := f.WriteAt(b, start); err != nil {
			t.Fatalf("unable to fill partition %s: %v", p.Name, err)
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unable to read back %s: %v", path, err)
	}
	return b
}
