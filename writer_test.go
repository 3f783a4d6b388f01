package droidlink

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/starbots/droidlink/internal/logging"
	"github.com/starbots/droidlink/internal/testutil/testlog"
)

func TestWriterChunksFrame(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{}
	cfg := Config{ChunkSize: 4, Timeout: time.Second}
	w := newWriter(ft, cfg, logging.New("test"))
	defer w.close()

	frame := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	if err := w.enqueue(context.Background(), frame); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	chunks := ft.chunks()
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	var joined []byte
	for i, c := range chunks {
		if i < 2 && len(c) != 4 {
			t.Fatalf("chunk %d has %d bytes, want 4", i, len(c))
		}
		joined = append(joined, c...)
	}
	if !bytes.Equal(joined, frame) {
		t.Fatalf("reassembled % X, want % X", joined, frame)
	}
}

func TestWriterCommandPacing(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{}
	cfg := Config{ChunkSize: 64, CommandInterval: 60 * time.Millisecond, Timeout: time.Second}
	w := newWriter(ft, cfg, logging.New("test"))
	defer w.close()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := w.enqueue(context.Background(), []byte{byte(i)}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 120*time.Millisecond {
		t.Fatalf("three frames took %s, want at least 120ms of pacing", elapsed)
	}
	if got := len(ft.chunks()); got != 3 {
		t.Fatalf("got %d chunks, want 3", got)
	}
}

func TestWriterChunkPacing(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{}
	cfg := Config{ChunkSize: 2, ChunkInterval: 40 * time.Millisecond, Timeout: time.Second}
	w := newWriter(ft, cfg, logging.New("test"))
	defer w.close()

	start := time.Now()
	if err := w.enqueue(context.Background(), []byte{0, 1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	// Three chunks: two inter-chunk gaps of 40ms each.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Fatalf("frame took %s, want at least 80ms of inter-chunk pacing", elapsed)
	}
	if got := len(ft.chunks()); got != 3 {
		t.Fatalf("got %d chunks, want 3", got)
	}
}

func TestWriterEnqueueAfterClose(t *testing.T) {
	testlog.Start(t)

	ft := &fakeTransport{}
	w := newWriter(ft, Config{ChunkSize: 64, Timeout: time.Second}, logging.New("test"))
	w.close()

	if err := w.enqueue(context.Background(), []byte{0x01}); err != ErrConnClosed {
		t.Fatalf("got %v, want ErrConnClosed", err)
	}
}
