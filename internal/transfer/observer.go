package transfer

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Progress reports how far a single file copy has come.
type Progress struct {
	File    string
	Percent int
	Bytes   int64
	Total   int64
}

// Observer receives progress for one copy at a time.
type Observer interface {
	Start(file string, total int64)
	Update(p Progress)
	Finish(ok bool)
}

// NopObserver discards progress.
type NopObserver struct{}

func (NopObserver) Start(string, int64) {}
func (NopObserver) Update(Progress)     {}
func (NopObserver) Finish(bool)         {}

const barWidth = 30

// logStep is the percentage step between progress log lines when no
// terminal is attached.
const logStep = 25

// ConsoleObserver draws a fixed-width bar on a terminal and falls back to
// sampled log lines otherwise.
type ConsoleObserver struct {
	w      io.Writer
	tty    bool
	logger *slog.Logger

	bar      *progressbar.ProgressBar
	file     string
	nextStep int
}

// NewConsoleObserver creates an observer writing to f.
func NewConsoleObserver(f *os.File, logger *slog.Logger) *ConsoleObserver {
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return newConsoleObserver(f, tty, logger)
}

func newConsoleObserver(w io.Writer, tty bool, logger *slog.Logger) *ConsoleObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleObserver{w: w, tty: tty, logger: logger}
}

func (o *ConsoleObserver) Start(file string, total int64) {
	o.file = file
	o.nextStep = logStep
	if !o.tty {
		return
	}
	o.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(o.w),
		progressbar.OptionSetWidth(barWidth),
		progressbar.OptionSetDescription(file),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerPadding: "-",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(o.w)
		}),
	)
}

func (o *ConsoleObserver) Update(p Progress) {
	if o.bar != nil {
		_ = o.bar.Set64(p.Bytes)
		return
	}
	if p.Percent < o.nextStep {
		return
	}
	o.logger.Info("transfer progress", "file", p.File, "percent", p.Percent)
	for o.nextStep <= p.Percent {
		o.nextStep += logStep
	}
}

func (o *ConsoleObserver) Finish(ok bool) {
	if o.bar == nil {
		return
	}
	if ok {
		_ = o.bar.Finish()
	} else {
		_ = o.bar.Exit()
	}
	o.bar = nil
}
