package protocol

import (
	"sync"
	"testing"

	"github.com/starbots/droidlink/internal/testutil/testlog"
)

func TestSequenceCycle(t *testing.T) {
	testlog.Start(t)
	a := NewSequenceAllocator()
	seen := make(map[uint8]int)
	for i := 0; i < 255; i++ {
		seq := a.Next()
		if seq == NotificationSeq {
			t.Fatalf("allocator produced notification sentinel")
		}
		seen[seq]++
	}
	if len(seen) != 255 {
		t.Fatalf("expected 255 distinct values, got %d", len(seen))
	}
	for seq, n := range seen {
		if n != 1 {
			t.Fatalf("seq %d allocated %d times", seq, n)
		}
	}
	// 256th allocation wraps back to 0.
	if seq := a.Next(); seq != 0 {
		t.Fatalf("expected wrap to 0, got %d", seq)
	}
}

func TestSequenceConcurrent(t *testing.T) {
	testlog.Start(t)
	a := NewSequenceAllocator()
	const workers = 5
	const perWorker = 51

	var mu sync.Mutex
	counts := make(map[uint8]int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				seq := a.Next()
				mu.Lock()
				counts[seq]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(counts) != workers*perWorker {
		t.Fatalf("expected %d distinct values, got %d", workers*perWorker, len(counts))
	}
	if _, ok := counts[NotificationSeq]; ok {
		t.Fatalf("allocator produced notification sentinel under concurrency")
	}
}
