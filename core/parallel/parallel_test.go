package parallel

import (
	"sync/atomic"
	"testing"
)

func TestParallelizeCoversEveryItemOnce(t *testing.T) {
	const items = 1000
	counts := make([]int32, items)

	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&counts[i], 1)
		}
	})

	for i, c := range counts {
		if c != 1 {
			t.Fatalf("item %d visited %d times", i, c)
		}
	}
}

func TestParallelizeZeroItems(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) { called = true })
	if called {
		t.Fatal("fn called with no items")
	}
}

func TestParallelizeWithThresholdRunsSequentially(t *testing.T) {
	var ranges [][2]int
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		ranges = append(ranges, [2]int{start, end})
	})
	if len(ranges) != 1 || ranges[0] != [2]int{0, 10} {
		t.Fatalf("expected one sequential range, got %v", ranges)
	}
}

func TestForEachWritesOwnSlot(t *testing.T) {
	const items = 500
	out := make([]int, items)

	ForEach(items, func(i int) {
		out[i] = i * i
	})

	for i, v := range out {
		if v != i*i {
			t.Fatalf("slot %d holds %d, want %d", i, v, i*i)
		}
	}
}
