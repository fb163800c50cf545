package device_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lafdump/partition-dumper/device"
)

func writeImage(t *testing.T, size int) (string, []byte) {
	t.Helper()
	b := make([]byte, size)
	for i := range b {
		b[i] = byte(i % 251)
	}
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path, b
}

func TestOpenImage(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := device.OpenImage(filepath.Join(t.TempDir(), "nope.img"))
		require.Error(t, err)
	})
	t.Run("size and block size", func(t *testing.T) {
		path, _ := writeImage(t, 8192)
		img, err := device.OpenImage(path)
		require.NoError(t, err)
		defer img.Close()
		assert.Equal(t, int64(8192), img.Size())
		assert.Equal(t, 0, img.LogicalBlockSize(), "regular files have no logical block size")
		assert.False(t, img.IsDevice())
	})
}

func TestImageReadRange(t *testing.T) {
	path, b := writeImage(t, 4096)
	img, err := device.OpenImage(path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, device.Close(img))
	}()

	tests := []struct {
		name   string
		offset int64
		length int64
		err    bool
	}{
		{"start", 0, 512, false},
		{"unaligned", 100, 333, false},
		{"to the end", 3000, 1096, false},
		{"empty", 4096, 0, false},
		{"past the end", 4000, 100, true},
		{"negative offset", -1, 10, true},
		{"beyond size", 5000, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := img.ReadRange(tt.offset, tt.length)
			if tt.err {
				var oor *device.OutOfRangeError
				require.ErrorAs(t, err, &oor)
				assert.Equal(t, int64(4096), oor.Size)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, b[tt.offset:tt.offset+tt.length], data)
		})
	}
}
