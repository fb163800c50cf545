package dumper_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dumper "github.com/lafdump/partition-dumper"
)

func TestProbeFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("absent", func(t *testing.T) {
		s, err := dumper.ProbeFile(filepath.Join(dir, "missing.bin"))
		require.NoError(t, err)
		_, ok := s.Get()
		assert.False(t, ok)
		assert.Equal(t, dumper.Absent(), s)
	})
	t.Run("empty file is present", func(t *testing.T) {
		path := filepath.Join(dir, "empty.bin")
		writeFile(t, path, 0)
		s, err := dumper.ProbeFile(path)
		require.NoError(t, err)
		assert.Equal(t, dumper.Present(0), s)
	})
	t.Run("present", func(t *testing.T) {
		path := filepath.Join(dir, "some.bin")
		writeFile(t, path, 1234)
		s, err := dumper.ProbeFile(path)
		require.NoError(t, err)
		n, ok := s.Get()
		assert.True(t, ok)
		assert.Equal(t, int64(1234), n)
	})
	t.Run("directory", func(t *testing.T) {
		_, err := dumper.ProbeFile(dir)
		require.Error(t, err)
	})
	t.Run("other errors are not absence", func(t *testing.T) {
		file := filepath.Join(dir, "plain")
		writeFile(t, file, 1)
		_, err := dumper.ProbeFile(filepath.Join(file, "child.bin"))
		require.Error(t, err)
	})
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		existing dumper.FileSize
		want     dumper.Action
	}{
		{"absent", dumper.Absent(), dumper.ActionDump},
		{"empty", dumper.Present(0), dumper.ActionDump},
		{"partial", dumper.Present(51199), dumper.ActionDump},
		{"complete", dumper.Present(51200), dumper.ActionSkipComplete},
		{"larger", dumper.Present(60000), dumper.ActionAbortOversized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dumper.Decide(tt.existing, 51200))
		})
	}
}

func TestReconcile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recovery.bin")

	d, err := dumper.Reconcile(path, 51200)
	require.NoError(t, err)
	assert.Equal(t, dumper.ActionDump, d.Action)
	assert.Equal(t, dumper.Absent(), d.Existing)

	writeFile(t, path, 60000)
	d, err = dumper.Reconcile(path, 51200)
	require.NoError(t, err)
	assert.Equal(t, dumper.ActionAbortOversized, d.Action)
	assert.Equal(t, "abort-oversized", d.Action.String())
	assert.Equal(t, dumper.Present(60000), d.Existing)
}
