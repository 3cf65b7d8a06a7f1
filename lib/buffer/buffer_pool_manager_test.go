package buffer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/lintang-b-s/godb/lib"
	"github.com/lintang-b-s/godb/lib/disk"
	"github.com/stretchr/testify/assert"
)

func TestBufferPoolManager(t *testing.T) {

	t.Run("basic fill and hit", func(t *testing.T) {
		dm := disk.NewMemoryDiskManager(lib.PAGE_SIZE)
		bpm := NewBufferPoolManager(3, 2, dm, nil)

		var p0, p1, p2 disk.PageID
		f0, err := bpm.NewPage(&p0)
		assert.NoError(t, err)
		assert.Equal(t, 1, f0.PinCount())
		f1, err := bpm.NewPage(&p1)
		assert.NoError(t, err)
		assert.Equal(t, 1, f1.PinCount())
		f2, err := bpm.NewPage(&p2)
		assert.NoError(t, err)
		assert.Equal(t, 1, f2.PinCount())

		assert.True(t, bpm.UnpinPage(p0, false))

		fetched, err := bpm.FetchPage(p0)
		assert.NoError(t, err)
		assert.Same(t, f0, fetched)
		assert.Equal(t, 1, fetched.PinCount())

		// hit: tidak ada disk I/O sama sekali
		assert.Equal(t, uint64(0), dm.NumReads())
		assert.Equal(t, uint64(0), dm.NumWrites())
		assert.NoError(t, bpm.AuditPool())
	})

	t.Run("eviction with write back", func(t *testing.T) {
		dm := disk.NewMemoryDiskManager(lib.PAGE_SIZE)
		bpm := NewBufferPoolManager(1, 2, dm, nil)

		var p0, p1 disk.PageID
		f0, err := bpm.NewPage(&p0)
		assert.NoError(t, err)
		_, err = f0.Page().PutString(0, "godb-page-0")
		assert.NoError(t, err)
		assert.True(t, bpm.UnpinPage(p0, true))

		// pool cuma 1 frame: NewPage kedua evict p0 & write back karena dirty
		_, err = bpm.NewPage(&p1)
		assert.NoError(t, err)
		assert.Equal(t, uint64(1), dm.NumWrites())

		assert.True(t, bpm.UnpinPage(p1, false))

		// p0 sudah gak resident, fetch read dari disk
		fetched, err := bpm.FetchPage(p0)
		assert.NoError(t, err)
		assert.Equal(t, uint64(1), dm.NumReads())
		assert.Equal(t, "godb-page-0", fetched.Page().GetString(0))
		assert.NoError(t, bpm.AuditPool())
	})

	t.Run("pool exhaustion", func(t *testing.T) {
		dm := disk.NewMemoryDiskManager(lib.PAGE_SIZE)
		bpm := NewBufferPoolManager(2, 2, dm, nil)

		var p0, p1, p2 disk.PageID
		_, err := bpm.NewPage(&p0)
		assert.NoError(t, err)
		_, err = bpm.NewPage(&p1)
		assert.NoError(t, err)

		// semua frame pinned
		_, err = bpm.NewPage(&p2)
		assert.ErrorIs(t, err, ErrNoAvailableFrame)
		_, err = bpm.FetchPage(disk.PageID(99))
		assert.ErrorIs(t, err, ErrNoAvailableFrame)

		// setelah unpin, NewPage jalan lagi
		assert.True(t, bpm.UnpinPage(p0, false))
		_, err = bpm.NewPage(&p2)
		assert.NoError(t, err)
		assert.NoError(t, bpm.AuditPool())
	})

	t.Run("delete of pinned page fails", func(t *testing.T) {
		dm := disk.NewMemoryDiskManager(lib.PAGE_SIZE)
		bpm := NewBufferPoolManager(3, 2, dm, nil)

		var p0 disk.PageID
		_, err := bpm.NewPage(&p0)
		assert.NoError(t, err)

		assert.False(t, bpm.DeletePage(p0))

		assert.True(t, bpm.UnpinPage(p0, false))
		assert.True(t, bpm.DeletePage(p0))

		// page tidak resident lagi; delete kedua kali sukses juga
		assert.True(t, bpm.DeletePage(p0))
		assert.NoError(t, bpm.AuditPool())

		// frame balik ke free list: 3 NewPage berikutnya sukses tanpa eviction
		var pid disk.PageID
		for i := 0; i < 3; i++ {
			_, err := bpm.NewPage(&pid)
			assert.NoError(t, err)
		}
		assert.Equal(t, uint64(0), dm.NumWrites())
	})

	t.Run("delete discards dirty data without write back", func(t *testing.T) {
		dm := disk.NewMemoryDiskManager(lib.PAGE_SIZE)
		bpm := NewBufferPoolManager(2, 2, dm, nil)

		var p0 disk.PageID
		f0, err := bpm.NewPage(&p0)
		assert.NoError(t, err)
		_, err = f0.Page().PutString(0, "discarded")
		assert.NoError(t, err)
		assert.True(t, bpm.UnpinPage(p0, true))

		assert.True(t, bpm.DeletePage(p0))
		assert.Equal(t, uint64(0), dm.NumWrites())
	})

	t.Run("unpin dirty flag is sticky", func(t *testing.T) {
		dm := disk.NewMemoryDiskManager(lib.PAGE_SIZE)
		bpm := NewBufferPoolManager(2, 2, dm, nil)

		var p0 disk.PageID
		f0, err := bpm.NewPage(&p0)
		assert.NoError(t, err)
		_, err = f0.Page().PutString(0, "sticky-dirty")
		assert.NoError(t, err)
		assert.True(t, bpm.UnpinPage(p0, true))
		assert.True(t, f0.IsDirty())

		// unpin bersih TIDAK boleh clear dirty flag yang sudah keset
		_, err = bpm.FetchPage(p0)
		assert.NoError(t, err)
		assert.True(t, bpm.UnpinPage(p0, false))
		assert.True(t, f0.IsDirty())

		// eviction tetap write back
		var p1, p2 disk.PageID
		_, err = bpm.NewPage(&p1)
		assert.NoError(t, err)
		_, err = bpm.NewPage(&p2)
		assert.NoError(t, err)
		assert.Equal(t, uint64(1), dm.NumWrites())

		bpm.UnpinPage(p1, false)
		fetched, err := bpm.FetchPage(p0)
		assert.NoError(t, err)
		assert.Equal(t, "sticky-dirty", fetched.Page().GetString(0))
	})

	t.Run("unpin of unknown or unpinned page fails", func(t *testing.T) {
		dm := disk.NewMemoryDiskManager(lib.PAGE_SIZE)
		bpm := NewBufferPoolManager(2, 2, dm, nil)

		assert.False(t, bpm.UnpinPage(disk.PageID(42), false))

		var p0 disk.PageID
		_, err := bpm.NewPage(&p0)
		assert.NoError(t, err)
		assert.True(t, bpm.UnpinPage(p0, false))
		assert.False(t, bpm.UnpinPage(p0, false))
	})

	t.Run("flush page and flush all", func(t *testing.T) {
		dm := disk.NewMemoryDiskManager(lib.PAGE_SIZE)
		bpm := NewBufferPoolManager(4, 2, dm, nil)

		assert.False(t, bpm.FlushPage(disk.PageID(42)))

		pageIDs := make([]disk.PageID, 3)
		for i := 0; i < 3; i++ {
			frame, err := bpm.NewPage(&pageIDs[i])
			assert.NoError(t, err)
			_, err = frame.Page().PutString(0, fmt.Sprintf("godb%d", i))
			assert.NoError(t, err)
			assert.True(t, bpm.UnpinPage(pageIDs[i], true))
			assert.True(t, frame.IsDirty())
		}

		// flush satu page: write unconditional & clear dirty
		assert.True(t, bpm.FlushPage(pageIDs[0]))
		assert.Equal(t, uint64(1), dm.NumWrites())

		bpm.FlushAllPages()
		assert.Equal(t, uint64(4), dm.NumWrites())
		for i := 0; i < 3; i++ {
			fetched, err := bpm.FetchPage(pageIDs[i])
			assert.NoError(t, err)
			assert.False(t, fetched.IsDirty())
			assert.Equal(t, fmt.Sprintf("godb%d", i), fetched.Page().GetString(0))
			bpm.UnpinPage(pageIDs[i], false)
		}
		assert.NoError(t, bpm.AuditPool())
	})

	t.Run("create and fetch 10000 pages", func(t *testing.T) {
		dm := disk.NewMemoryDiskManager(lib.PAGE_SIZE)
		bpm := NewBufferPoolManager(10, 2, dm, nil)

		blocks := make([]disk.PageID, 10000)
		for i := 0; i < 10000; i++ {
			if i >= 10 {
				bpm.UnpinPage(blocks[i-10], true)
			}
			frame, err := bpm.NewPage(&blocks[i])
			if err != nil {
				t.Errorf("Error creating page: %s", err)
			}
			_, err = frame.Page().PutString(0, fmt.Sprintf("godb%d", i))
			assert.NoError(t, err)
		}
		for i := 9990; i < 10000; i++ {
			bpm.UnpinPage(blocks[i], true)
		}

		// fetch balik semua page dan cek isinya
		for i := 0; i < 10000; i++ {
			if i >= 10 {
				bpm.UnpinPage(blocks[i-10], false)
			}
			frame, err := bpm.FetchPage(blocks[i])
			if err != nil {
				t.Errorf("Error fetching page: %s", err)
			}
			assert.Equal(t, fmt.Sprintf("godb%d", i), frame.Page().GetString(0))
		}
		for i := 9990; i < 10000; i++ {
			bpm.UnpinPage(blocks[i], false)
		}

		assert.NoError(t, bpm.AuditPool())
	})

	t.Run("concurrent fetch unpin", func(t *testing.T) {
		dm := disk.NewMemoryDiskManager(lib.PAGE_SIZE)
		bpm := NewBufferPoolManager(8, 2, dm, nil)

		pageIDs := make([]disk.PageID, 8)
		for i := 0; i < 8; i++ {
			_, err := bpm.NewPage(&pageIDs[i])
			assert.NoError(t, err)
			assert.True(t, bpm.UnpinPage(pageIDs[i], false))
		}

		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					pageID := pageIDs[(w+i)%len(pageIDs)]
					if _, err := bpm.FetchPage(pageID); err != nil {
						continue
					}
					bpm.UnpinPage(pageID, false)
				}
			}(w)
		}
		wg.Wait()

		assert.NoError(t, bpm.AuditPool())
	})
}
