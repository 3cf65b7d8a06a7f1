package disk

import (
	"io"
	"os"
	"sync"

	"github.com/ncw/directio"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DiskManager. read & write satu page (berukuran pageSize) dari/ke database file.
// Read untuk pageID yang belum pernah diwrite mengembalikan page berisi nol.
type DiskManager interface {
	ReadPage(pageID PageID, data []byte) error
	WritePage(pageID PageID, data []byte) error
	PageSize() int
	Size() int64
	NumReads() uint64
	NumWrites() uint64
	ShutDown() error
}

// FileDiskManager. file-backed DiskManager. satu file untuk semua page,
// offset page pada file = pageID * pageSize. pakai O_DIRECT (directio) biar
// write nya gak lewat OS page cache.
type FileDiskManager struct {
	db        *os.File
	fileName  string
	pageSize  int
	size      int64
	numReads  uint64
	numWrites uint64
	latch     sync.Mutex
}

func NewFileDiskManager(fileName string, pageSize int) (*FileDiskManager, error) {
	if pageSize != directio.BlockSize {
		return nil, errors.Errorf("page size %d must equal directio block size %d", pageSize, directio.BlockSize)
	}

	file, err := directio.OpenFile(fileName, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open db file %s", fileName)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrap(err, "file info error")
	}

	logrus.WithFields(logrus.Fields{
		"file":     fileName,
		"pageSize": pageSize,
		"size":     fileInfo.Size(),
	}).Debug("opened db file")

	return &FileDiskManager{
		db:       file,
		fileName: fileName,
		pageSize: pageSize,
		size:     fileInfo.Size(),
	}, nil
}

// ReadPage. read satu page dari file ke data. page yang belum pernah diwrite diisi nol.
func (dm *FileDiskManager) ReadPage(pageID PageID, data []byte) error {
	dm.latch.Lock()
	defer dm.latch.Unlock()

	offset := int64(pageID) * int64(dm.pageSize)
	dm.numReads++

	for i := range data {
		data[i] = 0
	}
	if offset >= dm.size {
		// belum pernah diwrite
		return nil
	}

	if _, err := dm.db.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrapf(err, "seek page %d", pageID)
	}

	block := directio.AlignedBlock(dm.pageSize)
	if _, err := io.ReadFull(dm.db, block); err != nil && err != io.ErrUnexpectedEOF {
		return errors.Wrapf(err, "read page %d", pageID)
	}
	copy(data, block)
	return nil
}

// WritePage. write satu page ke file pada offset pageID * pageSize.
func (dm *FileDiskManager) WritePage(pageID PageID, data []byte) error {
	dm.latch.Lock()
	defer dm.latch.Unlock()

	offset := int64(pageID) * int64(dm.pageSize)
	if _, err := dm.db.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrapf(err, "seek page %d", pageID)
	}

	block := directio.AlignedBlock(dm.pageSize)
	copy(block, data)

	bytesWritten, err := dm.db.Write(block)
	if err != nil {
		return errors.Wrapf(err, "write page %d", pageID)
	}
	if bytesWritten != dm.pageSize {
		return errors.Errorf("bytes written %d not equals page size %d", bytesWritten, dm.pageSize)
	}

	if offset+int64(bytesWritten) > dm.size {
		dm.size = offset + int64(bytesWritten)
	}
	dm.numWrites++
	return nil
}

func (dm *FileDiskManager) PageSize() int {
	return dm.pageSize
}

func (dm *FileDiskManager) Size() int64 {
	dm.latch.Lock()
	defer dm.latch.Unlock()
	return dm.size
}

func (dm *FileDiskManager) NumReads() uint64 {
	dm.latch.Lock()
	defer dm.latch.Unlock()
	return dm.numReads
}

func (dm *FileDiskManager) NumWrites() uint64 {
	dm.latch.Lock()
	defer dm.latch.Unlock()
	return dm.numWrites
}

func (dm *FileDiskManager) ShutDown() error {
	dm.latch.Lock()
	defer dm.latch.Unlock()

	if err := dm.db.Close(); err != nil {
		return errors.Wrapf(err, "close db file %s", dm.fileName)
	}
	return nil
}
