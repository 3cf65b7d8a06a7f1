package log

import (
	"iter"

	"github.com/lintang-b-s/godb/lib/disk"
)

// LogIterator. buat iterate log record yang udah ditulis di log file.
// iteratenya dari yang terakhir ditulis ke yang terdahulu.
type LogIterator struct {
	diskManager DiskManager
	pageID      disk.PageID
	page        *disk.Page
	currentPos  int
	err         error
}

func NewLogIterator(diskManager DiskManager, pageID disk.PageID) (*LogIterator, error) {
	lit := &LogIterator{
		diskManager: diskManager,
		pageID:      pageID,
		page:        disk.NewPageFromByteSlice(make([]byte, diskManager.PageSize())),
	}
	if err := lit.moveToPage(pageID); err != nil {
		return nil, err
	}
	return lit, nil
}

// moveToPage. move iterator ke pageID & set posisi ke record paling akhir.
func (lit *LogIterator) moveToPage(pageID disk.PageID) error {
	if err := lit.diskManager.ReadPage(pageID, lit.page.Contents()); err != nil {
		return err
	}
	lit.pageID = pageID
	lit.currentPos = int(lit.page.GetInt(0))
	return nil
}

/*
IterateLog. iterate log record dari yang terkini ke yang terdahulu. record di
dalam satu page dibaca kiri ke kanan (= terbaru ke terlama); kalau page habis,
pindah ke page sebelumnya.
*/
func (lit *LogIterator) IterateLog() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for lit.pageID >= 0 {

			if lit.currentPos >= lit.diskManager.PageSize() {
				// page habis, pindah ke page sebelumnya
				prev := lit.pageID - 1
				if prev < 0 {
					break
				}
				if err := lit.moveToPage(prev); err != nil {
					lit.err = err
					break
				}
			}

			record := lit.page.GetBytes(int32(lit.currentPos))
			lit.currentPos += 4 + len(record)

			if !yield(record) {
				return
			}
		}
	}
}

func (lit *LogIterator) GetError() error {
	return lit.err
}
