package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	dumper "github.com/lafdump/partition-dumper"
	"github.com/lafdump/partition-dumper/device"
	"github.com/lafdump/partition-dumper/internal/config"
	"github.com/lafdump/partition-dumper/table"
)

type app struct {
	opts config.Options
	log  *logrus.Logger
}

func newApp() *app {
	return &app{
		opts: config.Default(),
		log:  logrus.New(),
	}
}

func (a *app) command() *cobra.Command {
	root := &cobra.Command{
		Use:           "partition_dumper [flags] [partition...]",
		Short:         "Dump the partitions of a disk image or block device",
		Long:          "Dump every GPT partition of a disk image or block device to <outdir>/<name>.bin.\nPartitions whose image is already complete are skipped, so an interrupted run can simply be restarted.",
		Version:       dumper.Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.setupLogger(cmd.ErrOrStderr())
			return a.opts.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a.opts.Partitions = append(a.opts.Partitions, args...)
			if err := a.opts.Validate(); err != nil {
				return err
			}
			return a.dump(cmd.Context(), cmd.OutOrStdout())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.opts.Source, "source", "s", "", "disk image or block device to read")
	pf.StringVar(&a.opts.DevType, "devtype", a.opts.DevType, "device type: auto, ufs (4096 byte blocks) or emmc (512 byte blocks)")
	pf.BoolVar(&a.opts.Batch, "batch", false, "print machine readable output")
	pf.BoolVar(&a.opts.Debug, "debug", false, "enable debug logging")

	f := root.Flags()
	f.StringVarP(&a.opts.OutDir, "outdir", "d", a.opts.OutDir, "directory to write partition images to")
	f.Int64Var(&a.opts.MaxSizeKiB, "max-size", a.opts.MaxSizeKiB, "skip partitions larger than this many KiB (0 = no limit)")
	f.Int64Var(&a.opts.ChunkSizeKiB, "chunk-size", a.opts.ChunkSizeKiB, "KiB read from the device per write")
	f.BoolVar(&a.opts.KeepGoing, "keep-going", false, "continue with the next partition after a failure")

	root.AddCommand(&cobra.Command{
		Use:   "list [partition...]",
		Short: "List the partitions of a disk image or block device",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.opts.Partitions = append(a.opts.Partitions, args...)
			if err := a.opts.Validate(); err != nil {
				return err
			}
			return a.list(cmd.OutOrStdout())
		},
	})
	return root
}

func (a *app) setupLogger(w io.Writer) {
	a.log.SetOutput(w)
	a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if a.opts.Debug {
		a.log.SetLevel(logrus.DebugLevel)
	} else {
		a.log.SetLevel(logrus.InfoLevel)
	}
}

// open opens the source and reads its partition table.
func (a *app) open() (device.Channel, *table.Table, error) {
	img, err := device.OpenImage(a.opts.Source)
	if err != nil {
		return nil, nil, err
	}
	a.log.WithField("size", img.Size()).Debugf("Opened %s", img.Path)

	tbl, err := table.Detect(img, a.opts.Type(), img.LogicalBlockSize(), a.log)
	if err != nil {
		_ = img.Close()
		return nil, nil, err
	}
	a.log.Debugf("Found %d partitions with block size %d", len(tbl.Partitions()), tbl.BlockSize())
	return channelFor(img, tbl.BlockSize(), a.log), tbl, nil
}

// channelFor bounds and retries transfers on block devices, which may sit
// behind a USB bridge. Image files are read in whole executor windows.
func channelFor(img *device.Image, blockSize int64, log logrus.FieldLogger) device.Channel {
	if !img.IsDevice() {
		return img
	}
	return device.NewChunked(img, blockSize, log)
}

func (a *app) list(out io.Writer) error {
	ch, tbl, err := a.open()
	if err != nil {
		return err
	}
	defer device.Close(ch)

	parts := tbl.Partitions()
	if len(a.opts.Partitions) > 0 {
		parts = parts[:0]
		for _, q := range a.opts.Partitions {
			d, err := tbl.Find(q)
			if err != nil {
				return err
			}
			parts = append(parts, d)
		}
	}
	return tbl.Print(out, parts, a.opts.Batch)
}

func (a *app) reporter(out io.Writer) dumper.Reporter {
	if a.opts.Batch {
		return dumper.NewBatchReporter(out)
	}
	var bar io.Writer
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bar = f
	}
	return dumper.NewInteractiveReporter(a.log, bar)
}

func (a *app) dump(ctx context.Context, out io.Writer) error {
	ch, tbl, err := a.open()
	if err != nil {
		return err
	}
	defer device.Close(ch)

	if err := os.MkdirAll(a.opts.OutDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", a.opts.OutDir)
	}

	d := &dumper.Dumper{
		Channel:   ch,
		Reporter:  a.reporter(out),
		Log:       a.log,
		OutDir:    a.opts.OutDir,
		BlockSize: tbl.BlockSize(),
		Ceiling:   a.opts.Ceiling(),
		ChunkSize: a.opts.ChunkSize(),
		Only:      a.opts.Partitions,
		KeepGoing: a.opts.KeepGoing,
	}

	done := make(chan struct{})
	var summary *dumper.Summary
	g := new(errgroup.Group)
	g.Go(func() error {
		defer close(done)
		var err error
		summary, err = d.Run(ctx, tbl.Partitions())
		return err
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
			a.log.Warn("Interrupted, stopping after the current partition")
		case <-done:
		}
		return nil
	})
	err = g.Wait()

	if summary != nil {
		a.log.WithFields(logrus.Fields{
			"dumped":   len(summary.Dumped),
			"complete": len(summary.Complete),
			"large":    len(summary.SkippedLarge),
			"oversize": len(summary.Oversized),
			"failed":   len(summary.Failed),
		}).Debug("Summary")
		for _, name := range summary.Oversized {
			a.log.Warnf("%s was not dumped, remove %s and run again", name, dumper.OutputPath(a.opts.OutDir, name))
		}
	}
	return err
}

// execute runs cmd and logs a failure through the configured logger.
func (a *app) execute(ctx context.Context, cmd *cobra.Command) int {
	if err := cmd.ExecuteContext(ctx); err != nil {
		a.log.Error(err)
		return 1
	}
	return 0
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	return a.execute(ctx, a.command())
}

func main() {
	os.Exit(run())
}
