package disk

import (
	"io"
	"sync"

	"github.com/dsnet/golib/memfile"
	"github.com/pkg/errors"
)

// MemoryDiskManager. in-memory DiskManager di atas memfile. buat unit test &
// workload sementara yang gak butuh durability.
type MemoryDiskManager struct {
	db        *memfile.File
	pageSize  int
	size      int64
	numReads  uint64
	numWrites uint64
	latch     sync.Mutex
}

func NewMemoryDiskManager(pageSize int) *MemoryDiskManager {
	return &MemoryDiskManager{
		db:       memfile.New(make([]byte, 0)),
		pageSize: pageSize,
	}
}

// ReadPage. read satu page dari memfile. page yang belum pernah diwrite diisi nol.
func (dm *MemoryDiskManager) ReadPage(pageID PageID, data []byte) error {
	dm.latch.Lock()
	defer dm.latch.Unlock()

	offset := int64(pageID) * int64(dm.pageSize)
	dm.numReads++

	for i := range data {
		data[i] = 0
	}
	if offset >= dm.size {
		return nil
	}

	if _, err := dm.db.ReadAt(data, offset); err != nil && err != io.EOF {
		// io.EOF berarti page terakhir cuma partially written, sisanya sudah nol
		return errors.Wrapf(err, "read page %d", pageID)
	}
	return nil
}

func (dm *MemoryDiskManager) WritePage(pageID PageID, data []byte) error {
	dm.latch.Lock()
	defer dm.latch.Unlock()

	offset := int64(pageID) * int64(dm.pageSize)
	if _, err := dm.db.WriteAt(data, offset); err != nil {
		return errors.Wrapf(err, "write page %d", pageID)
	}

	if offset+int64(len(data)) > dm.size {
		dm.size = offset + int64(len(data))
	}
	dm.numWrites++
	return nil
}

func (dm *MemoryDiskManager) PageSize() int {
	return dm.pageSize
}

func (dm *MemoryDiskManager) Size() int64 {
	dm.latch.Lock()
	defer dm.latch.Unlock()
	return dm.size
}

func (dm *MemoryDiskManager) NumReads() uint64 {
	dm.latch.Lock()
	defer dm.latch.Unlock()
	return dm.numReads
}

func (dm *MemoryDiskManager) NumWrites() uint64 {
	dm.latch.Lock()
	defer dm.latch.Unlock()
	return dm.numWrites
}

func (dm *MemoryDiskManager) ShutDown() error {
	return nil
}
