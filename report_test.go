package dumper_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dumper "github.com/lafdump/partition-dumper"
	"github.com/lafdump/partition-dumper/table"
)

func recoveryEntry(t *testing.T) dumper.Entry {
	t.Helper()
	e, err := dumper.Plan(table.Descriptor{Index: 21, Name: "recovery", FirstLBA: 100, LastLBA: 199}, 512, "out")
	require.NoError(t, err)
	return e
}

func TestBatchReporter(t *testing.T) {
	e := recoveryEntry(t)
	path := filepath.Join("out", "recovery.bin")
	tests := []struct {
		name string
		ev   dumper.Event
		want string
	}{
		{"skipped large", dumper.Event{Kind: dumper.KindSkippedLarge, Entry: e}, "#Ignoring large partition /dev/mmcblk0p21 (recovery) of size 50K\n"},
		{"oversized", dumper.Event{Kind: dumper.KindOversized, Entry: e, Existing: 60000}, "#" + path + ": unexpected size 58K, larger than 50K\n"},
		{"complete", dumper.Event{Kind: dumper.KindSkipComplete, Entry: e}, "#Skipping already existing partition /dev/mmcblk0p21 (recovery)\n"},
		{"dump", dumper.Event{Kind: dumper.KindDump, Entry: e}, "#/dev/mmcblk0p21 (recovery)\n"},
		{"dumped", dumper.Event{Kind: dumper.KindDumped, Entry: e, Written: 51200}, ""},
		{"failed", dumper.Event{Kind: dumper.KindFailed, Entry: e, Written: 8192, Err: errors.New("timeout")}, "#Failed partition /dev/mmcblk0p21 (recovery) after 8K: timeout\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			dumper.NewBatchReporter(&buf).Report(tt.ev)
			assert.Equal(t, tt.want, buf.String())
		})
	}

	var buf bytes.Buffer
	r := dumper.NewBatchReporter(&buf)
	r.Progress(e, 25600, 51200)
	r.Progress(e, 51200, 51200)
	r.Finish()
	assert.Equal(t, "50:25:50\n100:50:50\n#All finished\n", buf.String())
}

func TestBatchRun(t *testing.T) {
	dev := newFakeDevice(1 << 20)
	out := t.TempDir()
	var buf bytes.Buffer

	d := newDumper(dev, dumper.NewBatchReporter(&buf), out)
	d.ChunkSize = 25600
	_, err := d.Run(context.Background(), []table.Descriptor{recovery})
	require.NoError(t, err)
	assert.Equal(t, "#/dev/mmcblk0p1 (recovery)\n50:25:50\n100:50:50\n#All finished\n", buf.String())
}

func TestInteractiveReporter(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	r := dumper.NewInteractiveReporter(logger, nil)
	e := recoveryEntry(t)

	r.Report(dumper.Event{Kind: dumper.KindOversized, Entry: e, Existing: 60000})
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "recovery", entry.Data["name"])
	assert.Contains(t, entry.Message, "unexpected size 58K, larger than 50K")

	r.Report(dumper.Event{Kind: dumper.KindSkipComplete, Entry: e})
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "already found at")

	r.Report(dumper.Event{Kind: dumper.KindFailed, Entry: e, Err: errors.New("timeout")})
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "timeout", hook.LastEntry().Data[logrus.ErrorKey].(error).Error())

	r.Finish()
	assert.Equal(t, "All finished!", hook.LastEntry().Message)
}

func TestInteractiveRunWithProgressBar(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	dev := newFakeDevice(1 << 20)
	out := t.TempDir()

	d := newDumper(dev, dumper.NewInteractiveReporter(logger, io.Discard), out)
	_, err := d.Run(context.Background(), []table.Descriptor{recovery})
	require.NoError(t, err)

	var msgs []string
	for _, e := range hook.AllEntries() {
		msgs = append(msgs, e.Message)
	}
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0], "Dumping partition /dev/mmcblk0p1 (recovery)")
	assert.Equal(t, "Wrote 51200 bytes to "+filepath.Join(out, "recovery.bin"), msgs[1])
	assert.Equal(t, "All finished!", msgs[2])
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "skipped_large", dumper.KindSkippedLarge.String())
	assert.Equal(t, "abort_oversized", dumper.KindOversized.String())
	assert.Equal(t, "skip_complete", dumper.KindSkipComplete.String())
	assert.Equal(t, "kind(42)", dumper.Kind(42).String())
}
