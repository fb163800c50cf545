// Package table reads the GPT partition table of a device through a
// device.Channel and exposes it as an ordered, read-only list of descriptors.
package table

import (
	"fmt"
	"strconv"

	"github.com/diskfs/go-diskfs/partition/gpt"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	BlockSizeEMMC = 512
	BlockSizeUFS  = 4096

	// 128 entries of 128 bytes each
	entryArraySize = 128 * 128

	labelPrefix = "/dev/mmcblk0p"
)

// Descriptor describes a single partition. LBAs are inclusive.
type Descriptor struct {
	Index    int
	Name     string
	FirstLBA uint64
	LastLBA  uint64
	GUID     uuid.UUID
}

// Label is the device node the partition shows up as on the device.
func (d Descriptor) Label() string {
	return fmt.Sprintf("%s%d", labelPrefix, d.Index)
}

// Blocks returns the number of blocks, or 0 when the bounds are inverted.
func (d Descriptor) Blocks() uint64 {
	if d.LastLBA < d.FirstLBA {
		return 0
	}
	return d.LastLBA + 1 - d.FirstLBA
}

// Table is an immutable snapshot of a partition table.
type Table struct {
	blockSize int64
	parts     []Descriptor
}

func New(blockSize int64, parts []Descriptor) *Table {
	cp := make([]Descriptor, len(parts))
	copy(cp, parts)
	return &Table{
		blockSize: blockSize,
		parts:     cp,
	}
}

// FromGPT converts a parsed GPT, keeping entry order.
func FromGPT(g *gpt.Table, blockSize int64) (*Table, error) {
	parts := make([]Descriptor, 0, len(g.Partitions))
	for i, p := range g.Partitions {
		index := p.Index
		if index == 0 {
			index = i + 1
		}
		d := Descriptor{
			Index:    index,
			Name:     p.Name,
			FirstLBA: p.Start,
			LastLBA:  p.End,
		}
		if p.GUID != "" {
			id, err := uuid.Parse(p.GUID)
			if err != nil {
				return nil, errors.Wrapf(err, "partition %d (%s) has an invalid GUID", index, p.Name)
			}
			d.GUID = id
		}
		parts = append(parts, d)
	}
	return New(blockSize, parts), nil
}

func (t *Table) BlockSize() int64 {
	return t.blockSize
}

// Partitions returns the descriptors in table order.
func (t *Table) Partitions() []Descriptor {
	cp := make([]Descriptor, len(t.parts))
	copy(cp, t.parts)
	return cp
}

// Find looks a partition up by number or by name.
func (t *Table) Find(query string) (Descriptor, error) {
	index, err := strconv.Atoi(query)
	isIndex := err == nil
	for _, d := range t.parts {
		if (isIndex && d.Index == index) || d.Name == query {
			return d, nil
		}
	}
	return Descriptor{}, NewPartitionNotFoundError(query)
}
