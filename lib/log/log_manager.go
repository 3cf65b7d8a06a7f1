package log

import (
	"sync"

	"github.com/lintang-b-s/godb/lib/disk"
	"github.com/pkg/errors"
)

// DiskManager. collaborator buat persist log page. biasanya DiskManager
// terpisah dari database file (log punya file sendiri).
type DiskManager interface {
	ReadPage(pageID disk.PageID, data []byte) error
	WritePage(pageID disk.PageID, data []byte) error
	PageSize() int
	Size() int64
}

// buat write & read log records ke log file.
//
// log record ditulis dari kanan ke kiri di dalam satu page; offset 0 page
// menyimpan posisi record yang ditulis paling akhir. iterate per page dari
// kiri ke kanan menghasilkan urutan dari log terakhir ke yang terdahulu.
type LogManager struct {
	mu            sync.Mutex
	diskManager   DiskManager
	logPage       *disk.Page
	currentPageID disk.PageID // page id dari lsn terakhir
	nextPageID    disk.PageID
	latestLSN     int // LSN terakhir di memori
	lastSavedLSN  int // LSN terakhir yang sudah diwrite ke disk
}

func NewLogManager(diskManager DiskManager) (*LogManager, error) {
	logPage := disk.NewPageFromByteSlice(make([]byte, diskManager.PageSize()))
	numPages := diskManager.Size() / int64(diskManager.PageSize())

	lm := &LogManager{
		diskManager: diskManager,
		logPage:     logPage,
		nextPageID:  disk.PageID(numPages),
	}

	if numPages == 0 {
		// log file kosong, mulai dari page baru
		var err error
		lm.currentPageID, err = lm.appendNewPage()
		if err != nil {
			return nil, err
		}
	} else {
		// read page log terakhir dari disk
		lm.currentPageID = disk.PageID(numPages - 1)
		if err := diskManager.ReadPage(lm.currentPageID, logPage.Contents()); err != nil {
			return nil, errors.Wrap(err, "read last log page")
		}
	}

	return lm, nil
}

// Flush. flush log buffer ke disk kalau lsn belum ke-persist.
func (lm *LogManager) Flush(lsn int) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if lsn > lm.lastSavedLSN {
		return lm.flushAll()
	}
	return nil
}

// FlushAll. flush log buffer ke disk, write offset = currentPageID * pageSize.
func (lm *LogManager) FlushAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return lm.flushAll()
}

func (lm *LogManager) flushAll() error {
	if err := lm.diskManager.WritePage(lm.currentPageID, lm.logPage.Contents()); err != nil {
		return errors.Wrap(err, "flush log page")
	}
	lm.lastSavedLSN = lm.latestLSN
	return nil
}

// appendNewPage. mulai page log baru kosong & write ke disk. caller harus hold
// lm.mu (atau dipanggil dari constructor).
func (lm *LogManager) appendNewPage() (disk.PageID, error) {
	pageID := lm.nextPageID
	lm.nextPageID++

	for i := range lm.logPage.Contents() {
		lm.logPage.Contents()[i] = 0
	}
	lm.logPage.PutInt(0, int32(lm.diskManager.PageSize())) // boundary: belum ada record
	if err := lm.diskManager.WritePage(pageID, lm.logPage.Contents()); err != nil {
		return disk.InvalidPageID, errors.Wrap(err, "append new log page")
	}
	return pageID, nil
}

/*
Append. append log record ke log buffer & return LSN nya. record ditulis dari
kanan ke kiri pada log buffer per page; kalau page sekarang gak muat, page di
flush dulu & record masuk page baru.
*/
func (lm *LogManager) Append(logRecord []byte) (int, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	boundary := lm.logPage.GetInt(0)
	bytesNeeded := int32(len(logRecord) + 4) // +4 bytes buat simpan recordSize
	if bytesNeeded+4 > int32(lm.diskManager.PageSize()) {
		return 0, errors.Errorf("log record too large: %d bytes", len(logRecord))
	}

	if bytesNeeded+4 > boundary {
		// gak muat di page sekarang: flush & pindah ke page baru
		if err := lm.flushAll(); err != nil {
			return 0, err
		}
		var err error
		lm.currentPageID, err = lm.appendNewPage()
		if err != nil {
			return 0, err
		}
		boundary = lm.logPage.GetInt(0)
	}

	recordPosition := boundary - bytesNeeded
	if _, err := lm.logPage.PutBytes(recordPosition, logRecord); err != nil {
		return 0, errors.Wrap(err, "append log record")
	}
	lm.logPage.PutInt(0, recordPosition) // update boundary
	lm.latestLSN++
	return lm.latestLSN, nil
}

// Iterator. return iterator log record dari yang terbaru ke yang terdahulu.
// log buffer di flush dulu biar iterator lihat semua record.
func (lm *LogManager) Iterator() (*LogIterator, error) {
	if err := lm.FlushAll(); err != nil {
		return nil, err
	}
	lm.mu.Lock()
	currentPageID := lm.currentPageID
	lm.mu.Unlock()
	return NewLogIterator(lm.diskManager, currentPageID)
}
