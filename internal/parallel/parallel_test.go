package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.NumWorkers = 4
	cfg.MinWork = 1

	n := 1000
	hits := make([]int32, n)
	For(n, 1, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	}, cfg)

	for i, h := range hits {
		assert.Equal(t, int32(1), h, "index %d", i)
	}
}

func TestFor_UnevenChunks(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinWork: 1}

	for _, n := range []int{1, 2, 3, 7, 10} {
		var counter int64
		For(n, 1, func(_ int) {
			atomic.AddInt64(&counter, 1)
		}, cfg)
		assert.Equal(t, int64(n), counter, "n=%d", n)
	}
}

func TestFor_Sequential(t *testing.T) {
	var order []int
	For(5, 1<<20, func(i int) {
		order = append(order, i)
	}, Sequential())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestFor_SmallWork(t *testing.T) {
	// Work below the threshold runs in order on the calling goroutine.
	cfg := Config{Enabled: true, NumWorkers: 8, MinWork: 100}

	var order []int
	For(9, 10, func(i int) {
		order = append(order, i)
	}, cfg)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, order)
}

func TestFor_Empty(t *testing.T) {
	For(0, 1, func(_ int) {
		t.Fatal("f called for n=0")
	}, DefaultConfig())
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, 64, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, 64, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, Sequential())
		}
	})
}
