package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUReplacer(t *testing.T) {
	lruReplacer := NewLRUReplacer(5)

	t.Run("test lru replacer", func(t *testing.T) {
		lruReplacer.Unpin(1)
		lruReplacer.Unpin(2)
		lruReplacer.Unpin(3)
		lruReplacer.Unpin(4)
		lruReplacer.Unpin(5)

		var evictedFrameID int
		lruReplacer.Victim(&evictedFrameID)
		assert.Equal(t, 1, evictedFrameID)
		lruReplacer.Victim(&evictedFrameID)
		assert.Equal(t, 2, evictedFrameID)
		lruReplacer.Victim(&evictedFrameID)
		assert.Equal(t, 3, evictedFrameID)

		lruReplacer.Pin(4) // hapus 4 dari lru (yang di evict selanjutnya adalah 5)
		lruReplacer.Victim(&evictedFrameID)
		assert.Equal(t, 5, evictedFrameID)

		lruReplacer.Unpin(7)
		lruReplacer.Unpin(8)
		lruReplacer.Unpin(9)

		lruReplacer.Pin(5)

		lruReplacer.Victim(&evictedFrameID)
		assert.Equal(t, 7, evictedFrameID)
		lruReplacer.Victim(&evictedFrameID)
		assert.Equal(t, 8, evictedFrameID)
		lruReplacer.Victim(&evictedFrameID)
		assert.Equal(t, 9, evictedFrameID)

		assert.False(t, lruReplacer.Victim(&evictedFrameID))
	})

	t.Run("access moves frame to most recently used end", func(t *testing.T) {
		lru := NewLRUReplacer(5)
		lru.Unpin(1)
		lru.Unpin(2)
		lru.Unpin(3)

		lru.Access(1) // 1 jadi most recently used

		var evictedFrameID int
		lru.Victim(&evictedFrameID)
		assert.Equal(t, 2, evictedFrameID)
		lru.Victim(&evictedFrameID)
		assert.Equal(t, 3, evictedFrameID)
		lru.Victim(&evictedFrameID)
		assert.Equal(t, 1, evictedFrameID)
	})

	t.Run("unpin at capacity evicts oldest entry", func(t *testing.T) {
		lru := NewLRUReplacer(3)
		lru.Unpin(1)
		lru.Unpin(2)
		lru.Unpin(3)
		lru.Unpin(4) // penuh: 1 (paling lama) di evict

		assert.Equal(t, 3, lru.Size())

		var evictedFrameID int
		lru.Victim(&evictedFrameID)
		assert.Equal(t, 2, evictedFrameID)
		lru.Victim(&evictedFrameID)
		assert.Equal(t, 3, evictedFrameID)
		lru.Victim(&evictedFrameID)
		assert.Equal(t, 4, evictedFrameID)
	})

	t.Run("unpin of known frame is no-op", func(t *testing.T) {
		lru := NewLRUReplacer(3)
		lru.Unpin(1)
		lru.Unpin(2)
		lru.Unpin(1) // sudah ada, posisi gak berubah

		var evictedFrameID int
		lru.Victim(&evictedFrameID)
		assert.Equal(t, 1, evictedFrameID)
	})

	t.Run("remove", func(t *testing.T) {
		lru := NewLRUReplacer(3)
		lru.Unpin(1)
		lru.Unpin(2)
		lru.Remove(1)

		assert.Equal(t, 1, lru.Size())
		var evictedFrameID int
		assert.True(t, lru.Victim(&evictedFrameID))
		assert.Equal(t, 2, evictedFrameID)
	})
}
