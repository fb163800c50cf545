package dumper_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	dumper "github.com/lafdump/partition-dumper"
	"github.com/lafdump/partition-dumper/device"
)

var errDisconnected = errors.New("device disconnected")

// fakeDevice is an in-memory disk. It counts reads and can be told to fail
// once a number of bytes have been served.
type fakeDevice struct {
	data      []byte
	reads     int
	served    int64
	failAfter int64
}

func newFakeDevice(size int) *fakeDevice {
	b := make([]byte, size)
	for i := range b {
		b[i] = byte(i*31 + i/512)
	}
	return &fakeDevice{data: b, failAfter: -1}
}

func (f *fakeDevice) ReadRange(offset, length int64) ([]byte, error) {
	f.reads++
	if f.failAfter >= 0 && f.served+length > f.failAfter {
		return nil, errDisconnected
	}
	if offset < 0 || offset+length > int64(len(f.data)) {
		return nil, device.NewOutOfRangeError(offset, length, int64(len(f.data)))
	}
	f.served += length
	out := make([]byte, length)
	copy(out, f.data[offset:offset+length])
	return out, nil
}

type recorded struct {
	Kind     dumper.Kind
	Name     string
	Existing int64
	Written  int64
}

// recorder keeps every event it is given.
type recorder struct {
	events   []recorded
	progress int
	finished int
}

func (r *recorder) Report(ev dumper.Event) {
	r.events = append(r.events, recorded{
		Kind:     ev.Kind,
		Name:     ev.Entry.Partition.Name,
		Existing: ev.Existing,
		Written:  ev.Written,
	})
}

func (r *recorder) Progress(_ dumper.Entry, _, _ int64) {
	r.progress++
}

func (r *recorder) Finish() {
	r.finished++
}

func (r *recorder) kinds() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = fmt.Sprintf("%s:%s", e.Kind, e.Name)
	}
	return out
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	b := make([]byte, size)
	for i := range b {
		b[i] = 0xa5
	}
	require.NoError(t, os.WriteFile(path, b, 0o644))
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}
