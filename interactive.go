package dumper

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

// InteractiveReporter logs decisions and draws a progress bar for the
// partition being dumped. With a nil Output no bar is drawn.
type InteractiveReporter struct {
	Log    logrus.FieldLogger
	Output io.Writer

	progress *mpb.Progress
	bar      *mpb.Bar
}

func NewInteractiveReporter(log logrus.FieldLogger, output io.Writer) *InteractiveReporter {
	return &InteractiveReporter{
		Log:    log,
		Output: output,
	}
}

func (r *InteractiveReporter) fields(e Entry) logrus.FieldLogger {
	return r.Log.WithFields(logrus.Fields{
		"partition": e.Label,
		"name":      e.Partition.Name,
	})
}

func (r *InteractiveReporter) Report(ev Event) {
	e := ev.Entry
	log := r.fields(e)
	switch ev.Kind {
	case KindSkippedLarge:
		log.Infof("Ignoring large partition %s (%s) of size %dK", e.Label, e.Partition.Name, e.Length/1024)
	case KindOversized:
		log.Warnf("%s: unexpected size %dK, larger than %dK", e.Path, ev.Existing/1024, e.Length/1024)
	case KindSkipComplete:
		log.Infof("Skipping partition %s (%s), already found at %s", e.Label, e.Partition.Name, e.Path)
	case KindDump:
		log.Infof("Dumping partition %s (%s) to %s (%d bytes)", e.Label, e.Partition.Name, e.Path, e.Length)
		r.startBar(e)
	case KindDumped:
		r.stopBar(ev.Written)
		log.Infof("Wrote %d bytes to %s", ev.Written, e.Path)
	case KindFailed:
		r.stopBar(-1)
		log.WithError(ev.Err).Errorf("Failed to dump partition %s (%s) after %s", e.Label, e.Partition.Name, humanize.IBytes(uint64(ev.Written)))
	}
}

func (r *InteractiveReporter) startBar(e Entry) {
	if r.Output == nil {
		return
	}
	r.stopBar(-1)
	r.progress = mpb.New(mpb.WithOutput(r.Output), mpb.WithWidth(48))
	name := fmt.Sprintf("%s (%s)", e.Partition.Name, humanize.IBytes(uint64(e.Length)))
	r.bar = r.progress.AddBar(e.Length,
		mpb.PrependDecorators(
			decor.Name(name, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
			decor.Percentage(decor.WCSyncSpace),
		),
	)
}

// stopBar completes the bar at total, or aborts it when total is negative.
func (r *InteractiveReporter) stopBar(total int64) {
	if r.bar == nil {
		return
	}
	if total >= 0 {
		r.bar.SetTotal(total, true)
	} else {
		r.bar.Abort(false)
	}
	r.progress.Wait()
	r.bar = nil
	r.progress = nil
}

func (r *InteractiveReporter) Progress(e Entry, written, total int64) {
	if r.bar != nil {
		r.bar.SetCurrent(written)
		return
	}
	r.fields(e).Debugf("written: %d, part_size: %d", written, total)
}

func (r *InteractiveReporter) Finish() {
	r.stopBar(-1)
	r.Log.Info("All finished!")
}
