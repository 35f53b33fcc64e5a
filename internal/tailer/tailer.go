// Package tailer follows a JSON Lines file of raw errors as it grows.
package tailer

import (
	"context"
	"fmt"
	"sync"

	"github.com/nxadm/tail"

	"github.com/ccollicutt/stackreport/pkg/source"
)

// errBuffer is the buffer size for the error channel.
const errBuffer = 16

// Tailer wraps nxadm/tail and decodes each appended line into a Record.
type Tailer struct {
	t      *tail.Tail
	path   string
	ctx    context.Context
	cancel context.CancelFunc
	recs   chan *source.Record
	errs   chan error
	doneCh chan struct{}

	mu      sync.Mutex
	stopped bool
}

// Config holds configuration for tailing.
type Config struct {
	// Follow continues reading as the file grows (tail -f).
	Follow bool

	// ReOpen reopens the file when it's truncated or recreated (tail -F).
	// Ignored unless Follow is set.
	ReOpen bool

	// Poll uses polling instead of inotify.
	Poll bool

	// MustExist requires the file to exist before starting.
	MustExist bool

	// FromStart reads from the beginning of the file instead of the end.
	FromStart bool
}

// DefaultConfig follows new errors appended to an existing file.
func DefaultConfig() Config {
	return Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
	}
}

// New starts tailing path. The provided context controls the tailer's lifecycle.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	location := &tail.SeekInfo{Offset: 0, Whence: 2}
	if cfg.FromStart {
		location = &tail.SeekInfo{Offset: 0, Whence: 0}
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    cfg.Follow,
		ReOpen:    cfg.ReOpen && cfg.Follow, // nxadm/tail exits on ReOpen without Follow
		Poll:      cfg.Poll,
		MustExist: cfg.MustExist,
		Location:  location,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening tail: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	tailer := &Tailer{
		t:      t,
		path:   path,
		ctx:    ctx,
		cancel: cancel,
		recs:   make(chan *source.Record),
		errs:   make(chan error, errBuffer),
		doneCh: make(chan struct{}),
	}

	go tailer.run()

	return tailer, nil
}

// Records returns a channel that receives decoded raw errors.
// It is closed when tailing ends.
func (t *Tailer) Records() <-chan *source.Record {
	return t.recs
}

// Errors returns a channel that receives read and decode errors.
// Errors are dropped when the buffer is full.
func (t *Tailer) Errors() <-chan error {
	return t.errs
}

// Done is closed once the tailer has stopped producing records.
func (t *Tailer) Done() <-chan struct{} {
	return t.doneCh
}

// Stop stops tailing and closes all channels.
// Safe to call multiple times.
func (t *Tailer) Stop() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	t.mu.Unlock()

	t.cancel()
	<-t.doneCh
	return t.t.Stop()
}

func (t *Tailer) run() {
	defer close(t.doneCh)
	defer close(t.recs)
	defer close(t.errs)

	lineNum := 0
	for {
		select {
		case <-t.ctx.Done():
			return
		case line, ok := <-t.t.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				t.sendErr(fmt.Errorf("tail: %w", line.Err))
				continue
			}
			lineNum++

			raw, ok, err := source.DecodeLine(line.Text)
			if err != nil {
				t.sendErr(fmt.Errorf("%s:%d: %w", t.path, lineNum, err))
				continue
			}
			if !ok {
				continue
			}

			select {
			case t.recs <- &source.Record{Raw: raw, Source: t.path, LineNum: lineNum}:
			case <-t.ctx.Done():
				return
			}
		}
	}
}

func (t *Tailer) sendErr(err error) {
	select {
	case t.errs <- err:
	default:
	}
}
