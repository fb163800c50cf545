package table

import (
	"bytes"
	"io/fs"
	"strings"
	"time"

	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lafdump/partition-dumper/device"
)

// DevType selects the block size of the device.
type DevType int

const (
	Auto DevType = iota
	UFS
	EMMC
)

func (t DevType) String() string {
	switch t {
	case UFS:
		return "ufs"
	case EMMC:
		return "emmc"
	default:
		return "auto"
	}
}

func ParseDevType(s string) (DevType, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Auto, nil
	case "ufs":
		return UFS, nil
	case "emmc":
		return EMMC, nil
	}
	return Auto, errors.Errorf("unknown device type %q, expected auto, ufs or emmc", s)
}

func (t DevType) candidates(hint int) []int64 {
	switch t {
	case UFS:
		return []int64{BlockSizeUFS}
	case EMMC:
		return []int64{BlockSizeEMMC}
	}
	sizes := []int64{BlockSizeUFS, BlockSizeEMMC}
	if hint == BlockSizeEMMC {
		sizes = []int64{BlockSizeEMMC, BlockSizeUFS}
	}
	return sizes
}

// Read reads the primary GPT assuming the given logical block size.
func Read(ch device.Channel, blockSize int64) (*Table, error) {
	// protective MBR, header, entry array
	n := entryArraySize + 2*blockSize
	b, err := ch.ReadRange(0, n)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read partition table")
	}
	g, err := gpt.Read(newMemFile(b), int(blockSize), int(blockSize))
	if err != nil {
		return nil, errors.Wrapf(err, "no GPT for block size %d", blockSize)
	}
	return FromGPT(g, blockSize)
}

// Detect finds the block size the GPT was written with. hint is the block
// size the host reported for the device, 0 if unknown.
func Detect(ch device.Channel, devType DevType, hint int, log logrus.FieldLogger) (*Table, error) {
	var tried []int64
	for _, bs := range devType.candidates(hint) {
		tried = append(tried, bs)
		t, err := Read(ch, bs)
		if err != nil {
			if log != nil {
				log.Debugf("no GPT header found for block size %d: %v", bs, err)
			}
			continue
		}
		if log != nil {
			log.Debugf("GPT header found for block size %d (%d partitions)", bs, len(t.parts))
		}
		return t, nil
	}
	return nil, NewNoPartitionTableError(devType, tried)
}

// memFile serves the table bytes to the gpt reader.
type memFile struct {
	*bytes.Reader
	size int64
}

func newMemFile(b []byte) *memFile {
	return &memFile{Reader: bytes.NewReader(b), size: int64(len(b))}
}

func (m *memFile) Stat() (fs.FileInfo, error) {
	return memInfo{size: m.size}, nil
}

func (m *memFile) Close() error {
	return nil
}

func (m *memFile) WriteAt(_ []byte, _ int64) (int, error) {
	return 0, errors.New("partition table is read-only")
}

type memInfo struct {
	size int64
}

func (i memInfo) Name() string       { return "gpt" }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return 0o444 }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return false }
func (i memInfo) Sys() any           { return nil }

var _ fs.FileInfo = memInfo{}
