package droidlink

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/starbots/droidlink/observability"
	"github.com/starbots/droidlink/transport"
)

type writeJob struct {
	ctx    context.Context
	frame  []byte
	result chan error
}

// writer is the single outbound goroutine. Every frame passes through
// it, which is what enforces inter-command pacing and per-chunk sizing
// no matter how many goroutines send.
type writer struct {
	tr  transport.Transport
	cfg Config
	log zerolog.Logger

	jobs chan writeJob
	stop chan struct{}
	done chan struct{}
}

func newWriter(tr transport.Transport, cfg Config, log zerolog.Logger) *writer {
	w := &writer{
		tr:   tr,
		cfg:  cfg,
		log:  log,
		jobs: make(chan writeJob),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue hands a frame to the writer goroutine and blocks until the
// frame is on the wire or the context/connection gives up first.
func (w *writer) enqueue(ctx context.Context, frame []byte) error {
	job := writeJob{ctx: ctx, frame: frame, result: make(chan error, 1)}
	select {
	case w.jobs <- job:
	case <-w.stop:
		return ErrConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-job.result:
		return err
	case <-w.stop:
		return ErrConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *writer) close() {
	close(w.stop)
	<-w.done
}

func (w *writer) run() {
	defer close(w.done)
	var lastSend time.Time
	for {
		select {
		case <-w.stop:
			return
		case job := <-w.jobs:
			if !w.pace(job.ctx, lastSend, w.cfg.CommandInterval) {
				job.result <- job.ctx.Err()
				continue
			}
			job.result <- w.send(job.ctx, job.frame)
			lastSend = time.Now()
		}
	}
}

// pace sleeps out the remainder of the interval since the previous
// send. Returns false when the job's context expired while waiting.
func (w *writer) pace(ctx context.Context, last time.Time, interval time.Duration) bool {
	if last.IsZero() || interval <= 0 {
		return true
	}
	wait := interval - time.Since(last)
	if wait <= 0 {
		return true
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-w.stop:
		return false
	}
}

func (w *writer) send(ctx context.Context, frame []byte) error {
	for off := 0; off < len(frame); off += w.cfg.ChunkSize {
		end := off + w.cfg.ChunkSize
		if end > len(frame) {
			end = len(frame)
		}
		if off > 0 && w.cfg.ChunkInterval > 0 {
			timer := time.NewTimer(w.cfg.ChunkInterval)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-w.stop:
				timer.Stop()
				return ErrConnClosed
			}
		}
		if err := w.tr.Write(ctx, frame[off:end]); err != nil {
			w.log.Warn().Err(err).Int("offset", off).Msg("chunk write failed")
			return err
		}
		observability.RecordChunkWritten()
	}
	return nil
}
