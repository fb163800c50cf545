// Package config holds the command line options of partition_dumper.
package config

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	dumper "github.com/lafdump/partition-dumper"
	"github.com/lafdump/partition-dumper/table"
)

const (
	// userdata, system and cache are far larger than this on most devices
	DefaultMaxSizeKiB   = 65535
	DefaultChunkSizeKiB = 1024

	maxKiB = math.MaxInt64 / 1024
)

type Options struct {
	Source       string
	DevType      string
	Batch        bool
	Debug        bool
	OutDir       string
	MaxSizeKiB   int64
	ChunkSizeKiB int64
	KeepGoing    bool
	Partitions   []string
}

func Default() Options {
	return Options{
		DevType:      table.Auto.String(),
		OutDir:       ".",
		MaxSizeKiB:   DefaultMaxSizeKiB,
		ChunkSizeKiB: DefaultChunkSizeKiB,
	}
}

// Validate checks the options and normalizes paths and names.
func (o *Options) Validate() error {
	o.Source = strings.TrimSpace(o.Source)
	if o.Source == "" {
		return errors.New("a source device or image is required (--source)")
	}
	if _, err := table.ParseDevType(o.DevType); err != nil {
		return err
	}
	if o.MaxSizeKiB < 0 || o.MaxSizeKiB > maxKiB {
		return errors.Errorf("--max-size must be between 0 and %d, got %d", int64(maxKiB), o.MaxSizeKiB)
	}
	if o.ChunkSizeKiB <= 0 || o.ChunkSizeKiB > maxKiB {
		return errors.Errorf("--chunk-size must be between 1 and %d, got %d", int64(maxKiB), o.ChunkSizeKiB)
	}
	if o.OutDir == "" {
		o.OutDir = "."
	}
	o.OutDir = filepath.Clean(o.OutDir)
	parts := o.Partitions[:0]
	for _, p := range o.Partitions {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	o.Partitions = parts
	return nil
}

// Ceiling returns the size ceiling; --max-size 0 dumps everything.
func (o Options) Ceiling() dumper.Ceiling {
	return dumper.CeilingKiB(o.MaxSizeKiB)
}

func (o Options) ChunkSize() int64 {
	return o.ChunkSizeKiB * 1024
}

func (o Options) Type() table.DevType {
	t, _ := table.ParseDevType(o.DevType)
	return t
}
